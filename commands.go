package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/thermolink/thermolink/internal/logging"
	"github.com/thermolink/thermolink/internal/report"
	"github.com/thermolink/thermolink/internal/server"
	"github.com/thermolink/thermolink/internal/server/routes"
	"github.com/thermolink/thermolink/internal/version"
)

func runCheck(env *environment) int {
	fields := logging.BaseFields("check_config", env.cfg.Path)
	fields["components"] = len(env.cfg.Components)
	fields["rules"] = len(env.installed)
	fields["selector"] = env.cfg.Global.Selector().String()

	if err := env.hub.Validate(); err != nil {
		fields["result"] = "failed"
		env.logger.WithFields(fields).WithError(err).Error("规则校验失败")
		fmt.Fprintf(stdErr, "规则校验失败: %v\n", err)
		return 1
	}
	fields["result"] = "ok"
	env.logger.WithFields(fields).Info("配置校验通过")
	return 0
}

// runBuild 输出完整报告；存在冲突或未解析符号时仍输出报告，但返回 1。
func runBuild(env *environment, opts cliOptions) int {
	ctx := context.Background()
	r := report.FromBuild(env.hub.Build(ctx))
	env.logger.WithFields(reportFields(r)).Info("构建报告已生成")

	if opts.saveName != "" {
		store, err := report.NewStore(env.cfg.Global.StoragePath)
		if err != nil {
			fmt.Fprintf(stdErr, "初始化报告目录失败: %v\n", err)
			return 1
		}
		entry, err := store.Save(ctx, opts.saveName, r)
		if err != nil {
			fmt.Fprintf(stdErr, "保存报告失败: %v\n", err)
			return 1
		}
		env.logger.WithFields(logrus.Fields{
			"action": "report_save",
			"name":   entry.Name,
			"path":   entry.FilePath,
			"bytes":  entry.SizeBytes,
		}).Info("报告已保存")
	}

	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		fmt.Fprintf(stdErr, "序列化报告失败: %v\n", err)
		return 1
	}
	payload = append(payload, '\n')
	if opts.outPath != "" {
		if err := os.WriteFile(opts.outPath, payload, 0o644); err != nil {
			fmt.Fprintf(stdErr, "写入报告失败: %v\n", err)
			return 1
		}
	} else if _, err := stdOut.Write(payload); err != nil {
		return 1
	}

	if !r.OK() {
		fmt.Fprintf(stdErr, "构建未完全成功: %s\n", r.Error)
		return 1
	}
	return 0
}

// reportFields 汇总报告规模，字段与 hub 构建日志保持一致。
func reportFields(r report.Report) logrus.Fields {
	data, equations := 0, 0
	for _, comp := range r.Components {
		data += len(comp.Data)
		equations += len(comp.Equations)
	}
	fields := logging.BuildFields(len(r.Components), data, equations, len(r.Unresolved))
	fields["action"] = "report"
	fields["status"] = string(r.Status)
	return fields
}

// runServe 启动诊断服务与规则热加载，收到 SIGINT/SIGTERM 后退出。
func runServe(env *environment) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, env); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, env *environment) error {
	guard, err := server.NewGuard(env.hub)
	if err != nil {
		return err
	}
	store, err := report.NewStore(env.cfg.Global.StoragePath)
	if err != nil {
		return err
	}

	port := env.cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{Logger: env.logger, Guard: guard, ListenPort: port})
	if err != nil {
		return err
	}
	routes.RegisterDiagnosticRoutes(app, guard, store)

	watcher, err := server.NewWatcher(server.WatcherOptions{
		Guard:    guard,
		Parser:   ruleParser,
		Path:     env.cfg.Global.RuleFile,
		Selector: env.cfg.Global.Selector(),
		Debounce: env.cfg.Global.ReloadDebounce.DurationValue(),
		Logger:   env.logger,
	})
	if err != nil {
		return err
	}

	fields := logging.BaseFields("startup", env.cfg.Path)
	fields["components"] = len(env.cfg.Components)
	fields["rules"] = len(env.installed)
	fields["listen_port"] = port
	fields["version"] = version.Full()
	env.logger.WithFields(fields).Info("配置加载完成")

	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(ctx) }()

	listenErr := make(chan error, 1)
	go func() {
		env.logger.WithFields(logrus.Fields{"action": "listen", "port": port}).Info("Fiber 服务启动")
		listenErr <- app.Listen(fmt.Sprintf(":%d", port))
	}()

	return superviseServe(ctx, env.logger, listenErr, watchErr, app.Shutdown)
}

// superviseServe 等待监听失败、监听器异常或退出信号。监听器正常结束后继续等待，
// 避免遗漏之后的监听错误。
func superviseServe(ctx context.Context, logger logrus.FieldLogger, listenErr, watchErr <-chan error, shutdown func() error) error {
	for {
		select {
		case err := <-listenErr:
			return err
		case err := <-watchErr:
			if err != nil {
				_ = shutdown()
				return err
			}
			logger.WithField("action", "rule_watch").Warn("规则文件监听已停止，热加载不可用")
			watchErr = nil
		case <-ctx.Done():
			logger.WithField("action", "shutdown").Info("收到退出信号，停止服务")
			if err := shutdown(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}
	}
}
