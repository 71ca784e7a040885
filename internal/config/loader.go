package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvConfigPath 指定配置文件路径的环境变量。
const EnvConfigPath = "THERMOLINK_CONFIG"

// DefaultConfigPath 是未指定时使用的配置文件。
const DefaultConfigPath = "config.toml"

// ResolvePath 按 flag → 环境变量 → 默认值的顺序确定配置文件路径。
func ResolvePath(flagValue string) string {
	if path := strings.TrimSpace(flagValue); path != "" {
		return path
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}
	return DefaultConfigPath
}

// Load 读取并解析 TOML 配置文件，注入默认值、解析相对路径并完成校验。
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("无法解析配置路径: %w", err)
	}
	cfg.Path = absPath

	applyGlobalDefaults(&cfg.Global)
	resolvePaths(&cfg, filepath.Dir(absPath))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析存储目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("CacheTTL", "10m")
	v.SetDefault("LoadWorkers", 4)
	v.SetDefault("RuleSelect", []string{"*"})
	v.SetDefault("FallbackRule", "ALL")
	v.SetDefault("ReloadDebounce", "500ms")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if g.CacheTTL.DurationValue() == 0 {
		g.CacheTTL = Duration(10 * time.Minute)
	}
	if g.ReloadDebounce.DurationValue() == 0 {
		g.ReloadDebounce = Duration(500 * time.Millisecond)
	}
	if g.LoadWorkers == 0 {
		g.LoadWorkers = 4
	}
	g.LogLevel = strings.ToLower(strings.TrimSpace(g.LogLevel))
	g.FallbackRule = strings.TrimSpace(g.FallbackRule)
}

// resolvePaths 将规则文件与组分文档的相对路径解析为相对于配置文件所在目录。
func resolvePaths(cfg *Config, baseDir string) {
	cfg.Global.RuleFile = resolveRelative(baseDir, cfg.Global.RuleFile)
	for i := range cfg.Components {
		cfg.Components[i].Name = strings.TrimSpace(cfg.Components[i].Name)
		cfg.Components[i].Source = resolveRelative(baseDir, cfg.Components[i].Source)
	}
}

func resolveRelative(baseDir, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
