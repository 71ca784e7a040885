package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/thermolink/thermolink/internal/config"
	"github.com/thermolink/thermolink/internal/hub"
	"github.com/thermolink/thermolink/internal/logging"
	"github.com/thermolink/thermolink/internal/ruleformat"
	"github.com/thermolink/thermolink/internal/thermodb"
)

// ruleParser 按扩展名选择规则格式。
var ruleParser = ruleformat.Parser{}

// environment 是各子命令共享的启动结果。
type environment struct {
	cfg       *config.Config
	logger    *logrus.Logger
	hub       *hub.Hub
	installed []string
}

// bootstrap 按“配置 → 日志 → thermodb 文档 → Hub → 规则文件”的顺序装配，
// 失败时返回 nil 与退出码，错误已写入 stdErr。
func bootstrap(configPath string) (*environment, int) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return nil, 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return nil, 1
	}

	loader := thermodb.NewLoader(cfg.Global.CacheTTL.DurationValue(), cfg.Global.LoadWorkers)
	refs, err := loader.LoadAll(context.Background(), cfg.Sources())
	if err != nil {
		fmt.Fprintf(stdErr, "加载 thermodb 文档失败: %v\n", err)
		return nil, 1
	}

	logger.WithFields(logrus.Fields{
		"action":    "load_thermodb",
		"documents": len(refs),
		"cached":    loader.Cached(),
	}).Info("thermodb 文档加载完成")

	h := hub.New(hub.WithLogger(logger), hub.WithFallbackRule(cfg.Global.FallbackRule))
	for i, comp := range cfg.Components {
		if err := h.AddComponent(comp.Name, refs[i]); err != nil {
			fmt.Fprintf(stdErr, "注册组分失败: %v\n", err)
			return nil, 1
		}
		entry := logger.WithFields(logging.ComponentFields(comp.Name, refs[i].Origin()))
		if declared := refs[i].Name(); declared != "" && declared != comp.Name {
			entry.WithField("declared", declared).Warn("文档声明的组分名与配置不一致")
			continue
		}
		entry.Debug("组分已注册")
	}

	installed, err := h.ConfigureRulesFromFile(ruleParser, cfg.Global.RuleFile, cfg.Global.Selector())
	if err != nil {
		fmt.Fprintf(stdErr, "加载规则文件失败: %v\n", err)
		return nil, 1
	}

	return &environment{cfg: cfg, logger: logger, hub: h, installed: installed}, 0
}
