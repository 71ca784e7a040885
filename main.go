package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thermolink/thermolink/internal/config"
)

const (
	cmdCheck   = "check"
	cmdBuild   = "build"
	cmdServe   = "serve"
	cmdVersion = "version"
)

// cliOptions 汇总命令行解析结果，便于在测试中直接构造。
type cliOptions struct {
	command    string
	configPath string
	saveName   string
	outPath    string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLI(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据子命令执行业务流程并返回退出码。
func run(opts cliOptions) int {
	switch opts.command {
	case "":
		return 0
	case cmdVersion:
		printVersion()
		return 0
	}

	env, code := bootstrap(opts.configPath)
	if env == nil {
		return code
	}

	switch opts.command {
	case cmdCheck:
		return runCheck(env)
	case cmdBuild:
		return runBuild(env, opts)
	case cmdServe:
		return runServe(env)
	default:
		fmt.Fprintf(stdErr, "未知命令: %s\n", opts.command)
		return 2
	}
}

// parseCLI 借助 cobra 解析子命令与标志，但不直接执行业务逻辑。
// 只打印帮助时返回的 command 为空。
func parseCLI(args []string) (cliOptions, error) {
	var (
		opts       cliOptions
		configFlag string
	)
	pick := func(name string) func(*cobra.Command, []string) {
		return func(*cobra.Command, []string) { opts.command = name }
	}

	root := &cobra.Command{
		Use:           "thermolink",
		Short:         "为 thermodb 组分数据与方程建立统一的符号映射",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"配置文件路径（默认 ./config.toml，可被 THERMOLINK_CONFIG 覆盖）")

	check := &cobra.Command{
		Use:   cmdCheck,
		Short: "加载配置、组分与规则并校验重命名冲突",
		Args:  cobra.NoArgs,
		Run:   pick(cmdCheck),
	}
	build := &cobra.Command{
		Use:   cmdBuild,
		Short: "构建映射结果并输出 JSON 报告",
		Args:  cobra.NoArgs,
		Run:   pick(cmdBuild),
	}
	build.Flags().StringVar(&opts.saveName, "save", "", "同时以该名称保存报告到 StoragePath")
	build.Flags().StringVar(&opts.outPath, "out", "", "报告写入文件而非标准输出")
	serve := &cobra.Command{
		Use:   cmdServe,
		Short: "启动诊断 HTTP 服务并监听规则文件变化",
		Args:  cobra.NoArgs,
		Run:   pick(cmdServe),
	}
	ver := &cobra.Command{
		Use:   cmdVersion,
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		Run:   pick(cmdVersion),
	}
	root.AddCommand(check, build, serve, ver)

	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)
	if err := root.Execute(); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	opts.configPath = config.ResolvePath(configFlag)
	return opts, nil
}
