package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// ComponentFields 描述单个组分及其 thermodb 来源。
func ComponentFields(name, source string) logrus.Fields {
	return logrus.Fields{
		"component": name,
		"source":    source,
	}
}

// BuildFields 汇总一次构建的规模与未解析数量。
func BuildFields(components, data, equations, unresolved int) logrus.Fields {
	return logrus.Fields{
		"components": components,
		"data":       data,
		"equations":  equations,
		"unresolved": unresolved,
	}
}

// RequestFields 供诊断 HTTP 接口记录访问日志。
func RequestFields(method, path, requestID string, status int) logrus.Fields {
	return logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
		"status":     status,
	}
}
