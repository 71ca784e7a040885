package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/thermolink/thermolink/internal/hub"
)

// Duration 兼容纯秒整数与 Go Duration 字符串两种写法。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别 "500ms"、"10m" 或纯数字秒值。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述进程级参数：日志、诊断端口、thermodb 加载与规则文件。
type GlobalConfig struct {
	ListenPort    int      `mapstructure:"ListenPort"`
	LogLevel      string   `mapstructure:"LogLevel"`
	LogFilePath   string   `mapstructure:"LogFilePath"`
	LogMaxSize    int      `mapstructure:"LogMaxSize"`
	LogMaxBackups int      `mapstructure:"LogMaxBackups"`
	LogCompress   bool     `mapstructure:"LogCompress"`
	StoragePath   string   `mapstructure:"StoragePath"`
	CacheTTL      Duration `mapstructure:"CacheTTL"`
	LoadWorkers   int      `mapstructure:"LoadWorkers"`
	// RuleFile 为规则文件路径，扩展名决定解析格式。
	RuleFile string `mapstructure:"RuleFile"`
	// RuleSelect 为 ["*"] 时加载全部组分规则，否则只加载列出的组分。
	RuleSelect []string `mapstructure:"RuleSelect"`
	// FallbackRule 为空表示禁用回退规则。
	FallbackRule   string   `mapstructure:"FallbackRule"`
	ReloadDebounce Duration `mapstructure:"ReloadDebounce"`
}

// ComponentConfig 声明一个组分及其 thermodb 文档路径。
type ComponentConfig struct {
	Name   string `mapstructure:"Name"`
	Source string `mapstructure:"Source"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global     GlobalConfig      `mapstructure:",squash"`
	Components []ComponentConfig `mapstructure:"Component"`
	// Path 记录配置文件的绝对路径，用于日志与热加载。
	Path string `mapstructure:"-"`
}

// Selector 将 RuleSelect 转换为 hub.Selector。
func (g GlobalConfig) Selector() hub.Selector {
	return hub.ParseSelector(g.RuleSelect)
}

// ComponentNames 按配置顺序返回组分名。
func (c *Config) ComponentNames() []string {
	if c == nil || len(c.Components) == 0 {
		return nil
	}
	names := make([]string, len(c.Components))
	for i, comp := range c.Components {
		names[i] = comp.Name
	}
	return names
}

// Sources 按配置顺序返回 thermodb 文档路径，与 ComponentNames 一一对应。
func (c *Config) Sources() []string {
	if c == nil || len(c.Components) == 0 {
		return nil
	}
	paths := make([]string, len(c.Components))
	for i, comp := range c.Components {
		paths[i] = comp.Source
	}
	return paths
}
