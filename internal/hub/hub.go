package hub

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/thermolink/thermolink/internal/thermodb"
)

// RuleParser 从规则文件解析 RuleSet；names 非空时只保留对应组分。
type RuleParser interface {
	ParseFile(path string, names ...string) (RuleSet, error)
}

// RuleParserFunc 允许普通函数实现 RuleParser。
type RuleParserFunc func(path string, names ...string) (RuleSet, error)

func (f RuleParserFunc) ParseFile(path string, names ...string) (RuleSet, error) {
	return f(path, names...)
}

// Option 配置 Hub。
type Option func(*Hub)

// WithLogger 注入日志记录器，默认丢弃所有日志。
func WithLogger(logger logrus.FieldLogger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithFallbackRule 指定回退规则键：没有专属规则的组分在构建时使用该键下的规则。
func WithFallbackRule(key string) Option {
	return func(h *Hub) { h.opts.FallbackRule = key }
}

// Hub 组合注册表与规则存储，对外提供完整的配置与构建入口。
type Hub struct {
	registry *Registry
	rules    *RuleStore
	opts     BuildOptions
	logger   logrus.FieldLogger
}

// New 创建空 Hub。
func New(options ...Option) *Hub {
	h := &Hub{
		registry: NewRegistry(),
		rules:    NewRuleStore(),
		logger:   discardLogger(),
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// FallbackRule 返回当前回退规则键，未启用时为空。
func (h *Hub) FallbackRule() string { return h.opts.FallbackRule }

// AddComponent 注册组分，同名时替换 Reference。
func (h *Hub) AddComponent(name string, ref thermodb.Reference) error {
	if err := h.registry.Register(name, ref); err != nil {
		return err
	}
	h.logger.WithFields(logrus.Fields{"action": "add_component", "component": name}).Debug("组分已注册")
	return nil
}

// AddComponentWithRule 注册组分并同时安装其规则。
func (h *Hub) AddComponentWithRule(name string, ref thermodb.Reference, rule Rule) error {
	if err := h.AddComponent(name, ref); err != nil {
		return err
	}
	return h.AddRule(name, rule)
}

// RemoveComponent 删除组分；其规则保留在存储中。
func (h *Hub) RemoveComponent(name string) error {
	if err := h.registry.Remove(name); err != nil {
		return err
	}
	h.logger.WithFields(logrus.Fields{"action": "remove_component", "component": name}).Debug("组分已移除")
	return nil
}

// Component 返回已注册组分的 Reference。
func (h *Hub) Component(name string) (thermodb.Reference, error) {
	return h.registry.Get(name)
}

// ListComponents 按注册顺序返回组分名。
func (h *Hub) ListComponents() []string {
	return h.registry.List()
}

// ConfigureRules 按选择器安装已解析的规则。
func (h *Hub) ConfigureRules(parsed RuleSet, sel Selector) ([]string, error) {
	installed, err := h.rules.Ingest(parsed, sel)
	if err != nil {
		return nil, err
	}
	h.logger.WithFields(logrus.Fields{
		"action":    "configure_rules",
		"selector":  sel.String(),
		"installed": installed,
	}).Info("规则已加载")
	return installed, nil
}

// ConfigureRulesFromFile 解析规则文件后按选择器安装，解析错误原样返回。
func (h *Hub) ConfigureRulesFromFile(parser RuleParser, path string, sel Selector) ([]string, error) {
	if parser == nil {
		return nil, errors.New("rule parser is nil")
	}
	parsed, err := parser.ParseFile(path, sel.List()...)
	if err != nil {
		return nil, err
	}
	return h.ConfigureRules(parsed, sel)
}

// AddRule 安装或整体替换某组分的规则。
func (h *Hub) AddRule(name string, rule Rule) error {
	if err := h.rules.Set(name, rule); err != nil {
		return err
	}
	h.logger.WithFields(logrus.Fields{
		"action":    "set_rule",
		"component": name,
		"data":      len(rule.Data),
		"equations": len(rule.Equations),
	}).Debug("规则已更新")
	return nil
}

// UpdateRule 与 AddRule 语义相同：整体替换，不做合并。
func (h *Hub) UpdateRule(name string, rule Rule) error {
	return h.AddRule(name, rule)
}

// DeleteRule 删除规则，不存在时为空操作。
func (h *Hub) DeleteRule(name string) {
	h.rules.Delete(name)
}

// Rule 返回组分自身的规则，不考虑回退键。
func (h *Hub) Rule(name string) (Rule, bool) {
	return h.rules.Get(name)
}

// RuleNames 返回已存储规则的键（已排序）。
func (h *Hub) RuleNames() []string {
	return h.rules.Names()
}

// Build 生成数据源与方程源，参见包级 Build。
func (h *Hub) Build(ctx context.Context) (*DataSource, *EquationSource, error) {
	data, equations, err := Build(ctx, h.registry, h.rules, h.opts)
	fields := logrus.Fields{
		"action":     "build",
		"components": data.Len(),
		"data":       data.Count(),
		"equations":  equations.Count(),
	}
	var buildErr *BuildError
	switch {
	case err == nil:
		h.logger.WithFields(fields).Info("构建完成")
	case errors.As(err, &buildErr):
		fields["unresolved"] = len(buildErr.Unresolved)
		h.logger.WithFields(fields).WithError(err).Warn("构建完成，存在未解析符号")
	default:
		h.logger.WithFields(fields).WithError(err).Error("构建失败")
	}
	return data, equations, err
}

// Validate 只检查重命名冲突，不访问 Reference；孤立规则与空规则以日志提示。
func (h *Hub) Validate() error {
	orphans, err := Validate(h.registry, h.rules, h.opts)
	if len(orphans) > 0 {
		h.logger.WithFields(logrus.Fields{"action": "validate", "orphans": orphans}).Warn("存在未注册组分的规则")
	}
	if empty := h.emptyRuleComponents(); len(empty) > 0 {
		h.logger.WithFields(logrus.Fields{"action": "validate", "empty": empty}).Warn("组分规则为空，构建结果不含任何符号")
	}
	return err
}

// emptyRuleComponents 按注册顺序返回生效规则为空的组分。
func (h *Hub) emptyRuleComponents() []string {
	var empty []string
	for _, name := range h.registry.List() {
		if rule, _, ok := effectiveRule(h.rules, name, h.opts); ok && rule.IsEmpty() {
			empty = append(empty, name)
		}
	}
	return empty
}

// RuleOrigin 描述组分规则的来源。
type RuleOrigin string

const (
	RuleOwn      RuleOrigin = "own"
	RuleFallback RuleOrigin = "fallback"
	RuleNone     RuleOrigin = "none"
)

// ComponentSummary 是单个组分的配置概览。
type ComponentSummary struct {
	Name      string     `json:"name"`
	Rule      RuleOrigin `json:"rule"`
	Data      []string   `json:"data,omitempty"`
	Equations []string   `json:"equations,omitempty"`
}

// HasRule 表示该组分会出现在构建输出中。
func (s ComponentSummary) HasRule() bool { return s.Rule != RuleNone }

// Summary 按注册顺序返回每个组分的规则来源及对外符号。
func (h *Hub) Summary() []ComponentSummary {
	names := h.registry.List()
	out := make([]ComponentSummary, 0, len(names))
	for _, name := range names {
		summary := ComponentSummary{Name: name, Rule: RuleNone}
		rule, fallback, ok := effectiveRule(h.rules, name, h.opts)
		if ok {
			summary.Rule = RuleOwn
			if fallback {
				summary.Rule = RuleFallback
			}
			summary.Data = rule.Targets(CategoryData)
			summary.Equations = rule.Targets(CategoryEquation)
		}
		out = append(out, summary)
	}
	return out
}

// Inventory 列出 Reference 自身声明的原始符号。
type Inventory struct {
	Component string   `json:"component"`
	Data      []string `json:"data"`
	Equations []string `json:"equations"`
}

// ErrNotListable 表示 Reference 未实现 thermodb.Lister。
var ErrNotListable = errors.New("reference does not list its symbols")

// Inspect 返回组分 Reference 提供的全部原始符号。
func (h *Hub) Inspect(name string) (Inventory, error) {
	ref, err := h.registry.Get(name)
	if err != nil {
		return Inventory{}, err
	}
	lister, ok := ref.(thermodb.Lister)
	if !ok {
		return Inventory{}, fmt.Errorf("component %s: %w", name, ErrNotListable)
	}
	return Inventory{
		Component: name,
		Data:      lister.DataSymbols(),
		Equations: lister.EquationSymbols(),
	}, nil
}
