package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thermolink/thermolink/internal/ruleformat"
)

// Validate 针对语义级别做进一步校验，防止非法配置进入加载流程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "仅支持 trace/debug/info/warn/error/fatal/panic")
	}
	if g.LogMaxSize < 0 || g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxSize/LogMaxBackups", "不能为负数")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if g.CacheTTL.DurationValue() <= 0 {
		return newFieldError("Global.CacheTTL", "必须大于 0")
	}
	if g.ReloadDebounce.DurationValue() <= 0 {
		return newFieldError("Global.ReloadDebounce", "必须大于 0")
	}
	if g.LoadWorkers <= 0 {
		return newFieldError("Global.LoadWorkers", "必须大于 0")
	}
	if g.RuleFile == "" {
		return newFieldError("Global.RuleFile", "不能为空")
	}
	ext := strings.ToLower(filepath.Ext(g.RuleFile))
	if _, ok := ruleformat.ResolveExtension(ext); !ok {
		return newFieldError("Global.RuleFile", "不支持的规则文件格式: "+ext)
	}
	if len(g.Selector().List()) == 0 && !g.Selector().IsAll() {
		return newFieldError("Global.RuleSelect", "不能为空，使用 [\"*\"] 表示全部组分")
	}

	if len(c.Components) == 0 {
		return errors.New("至少需要配置一个 Component")
	}

	seen := map[string]struct{}{}
	for _, comp := range c.Components {
		if comp.Name == "" {
			return newFieldError("Component[].Name", "不能为空")
		}
		if _, exists := seen[comp.Name]; exists {
			return newFieldError(componentField(comp.Name, "Name"), "重复")
		}
		seen[comp.Name] = struct{}{}
		if comp.Source == "" {
			return newFieldError(componentField(comp.Name, "Source"), "不能为空")
		}
	}

	return nil
}
