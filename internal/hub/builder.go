package hub

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thermolink/thermolink/internal/thermodb"
)

// BuildOptions 调整构建行为。
type BuildOptions struct {
	// FallbackRule 非空时，没有专属规则的组分使用该键下的规则。
	FallbackRule string
}

// plannedComponent 是参与构建的一个组分：注册表与规则的交集。
type plannedComponent struct {
	name     string
	ref      thermodb.Reference
	rule     Rule
	fallback bool
}

// effectiveRule 返回组分实际使用的规则以及是否来自回退键。
func effectiveRule(store *RuleStore, name string, opts BuildOptions) (Rule, bool, bool) {
	if rule, ok := store.Get(name); ok {
		return rule, false, true
	}
	if opts.FallbackRule != "" {
		if rule, ok := store.Get(opts.FallbackRule); ok {
			return rule, true, true
		}
	}
	return Rule{}, false, false
}

func plan(reg *Registry, store *RuleStore, opts BuildOptions) []plannedComponent {
	names := reg.List()
	out := make([]plannedComponent, 0, len(names))
	for _, name := range names {
		rule, fallback, ok := effectiveRule(store, name, opts)
		if !ok {
			continue
		}
		ref, _ := reg.Get(name)
		out = append(out, plannedComponent{name: name, ref: ref, rule: rule, fallback: fallback})
	}
	return out
}

func collisions(planned []plannedComponent) error {
	var found []Collision
	for _, p := range planned {
		found = append(found, p.rule.Collisions(p.name)...)
	}
	if len(found) == 0 {
		return nil
	}
	return &CollisionError{Collisions: found}
}

// Build 将注册表与规则合并为数据源与方程源。
//
// 任一组分存在重命名冲突时直接返回 *CollisionError 且不产生输出；
// 未解析的符号会被跳过并累计到 *BuildError，此时部分结果仍然返回。
func Build(ctx context.Context, reg *Registry, store *RuleStore, opts BuildOptions) (*DataSource, *EquationSource, error) {
	ctx, span := tracer.Start(ctx, "hub.Build", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	started := time.Now()

	planned := plan(reg, store, opts)
	span.SetAttributes(
		attribute.Int("hub.registered", reg.Len()),
		attribute.Int("hub.planned", len(planned)),
	)

	if err := collisions(planned); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rename collision")
		recordBuild(ctx, started, len(planned), 0, "collision")
		return nil, nil, err
	}

	data := newSource[thermodb.Data]()
	equations := newSource[thermodb.Equation]()
	var unresolved []*UnresolvedSymbolError

	for _, p := range planned {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cancelled")
			recordBuild(ctx, started, len(planned), len(unresolved), "cancelled")
			return nil, nil, err
		}

		data.ensure(p.name)
		for _, original := range sortedKeys(p.rule.Data) {
			renamed := p.rule.Data[original]
			value, err := p.ref.LookupData(original)
			if err != nil {
				unresolved = append(unresolved, unresolvedError(p.name, CategoryData, original, renamed, err))
				continue
			}
			data.put(p.name, renamed, value)
		}

		equations.ensure(p.name)
		for _, original := range sortedKeys(p.rule.Equations) {
			renamed := p.rule.Equations[original]
			eq, err := p.ref.LookupEquation(original)
			if err != nil {
				unresolved = append(unresolved, unresolvedError(p.name, CategoryEquation, original, renamed, err))
				continue
			}
			equations.put(p.name, renamed, eq)
		}
	}

	span.SetAttributes(
		attribute.Int("hub.data_entries", data.Count()),
		attribute.Int("hub.equation_entries", equations.Count()),
		attribute.Int("hub.unresolved", len(unresolved)),
	)

	if len(unresolved) > 0 {
		err := &BuildError{Unresolved: unresolved}
		span.RecordError(err)
		span.SetStatus(codes.Error, "unresolved symbols")
		recordBuild(ctx, started, len(planned), len(unresolved), "partial")
		return data, equations, err
	}

	recordBuild(ctx, started, len(planned), 0, "ok")
	return data, equations, nil
}

func unresolvedError(component string, category Category, symbol, renamed string, cause error) *UnresolvedSymbolError {
	return &UnresolvedSymbolError{
		Component: component,
		Category:  category,
		Symbol:    symbol,
		Renamed:   renamed,
		Err:       cause,
	}
}

// Validate 在不访问 Reference 的前提下检查规则冲突，并报告孤立规则。
// 孤立规则（没有对应组分）只作为提示返回，不视为错误。
func Validate(reg *Registry, store *RuleStore, opts BuildOptions) (orphans []string, err error) {
	for _, name := range store.Names() {
		if name == opts.FallbackRule && opts.FallbackRule != "" {
			continue
		}
		if !reg.Has(name) {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	return orphans, collisions(plan(reg, store, opts))
}
