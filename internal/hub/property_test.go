package hub

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/thermolink/thermolink/internal/thermodb"
)

var (
	symbolPool    = []string{"Pc", "Tc", "AcFa", "Zc", "MW"}
	equationPool  = []string{"VaPr", "Cp_IG", "Cp_LIQ"}
	componentPool = []string{"CO2", "MeOH", "EtOH", "N2", "toluene"}
)

func mappingGen(pool []string) *rapid.Generator[map[string]string] {
	return rapid.Custom(func(t *rapid.T) map[string]string {
		keys := rapid.SliceOfDistinct(rapid.SampledFrom(pool), rapid.ID[string]).Draw(t, "keys")
		m := make(map[string]string, len(keys))
		for _, k := range keys {
			m[k] = rapid.SampledFrom([]string{k, k + "1", "X"}).Draw(t, "renamed")
		}
		return m
	})
}

func ruleGen() *rapid.Generator[Rule] {
	return rapid.Custom(func(t *rapid.T) Rule {
		return Rule{
			Data:      mappingGen(symbolPool).Draw(t, "data"),
			Equations: mappingGen(equationPool).Draw(t, "equations"),
		}
	})
}

// partialRef 只声明部分符号，用于触发未解析路径。
func partialRef(t *rapid.T) thermodb.Static {
	ref := thermodb.Static{Data: map[string]thermodb.Data{}, Equations: map[string]thermodb.Equation{}}
	for _, s := range rapid.SliceOfDistinct(rapid.SampledFrom(symbolPool), rapid.ID[string]).Draw(t, "data") {
		ref.Data[s] = thermodb.Property{Symbol: s, Value: float64(len(s))}
	}
	for _, s := range rapid.SliceOfDistinct(rapid.SampledFrom(equationPool), rapid.ID[string]).Draw(t, "equations") {
		ref.Equations[s] = constEquation(float64(len(s)))
	}
	return ref
}

// snapshot 将输出展开为可比较的结构。
type snapshot struct {
	Components []string
	Data       map[string]map[string]thermodb.Data
	Equations  map[string][]string
	Err        string
}

func takeSnapshot(data *DataSource, eqs *EquationSource, err error) snapshot {
	s := snapshot{Components: data.Components(), Data: data.Map(), Equations: map[string][]string{}}
	for _, name := range eqs.Components() {
		s.Equations[name] = eqs.Symbols(name)
	}
	if err != nil {
		s.Err = err.Error()
	}
	return s
}

func TestBuildIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := New()
		for _, name := range rapid.SliceOfDistinct(rapid.SampledFrom(componentPool), rapid.ID[string]).Draw(t, "components") {
			if err := h.AddComponent(name, partialRef(t)); err != nil {
				t.Fatalf("注册失败: %v", err)
			}
		}
		for _, name := range rapid.SliceOfDistinct(rapid.SampledFrom(componentPool), rapid.ID[string]).Draw(t, "rules") {
			_ = h.AddRule(name, ruleGen().Draw(t, "rule"))
		}

		first := takeSnapshot(h.Build(context.Background()))
		second := takeSnapshot(h.Build(context.Background()))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("重复构建结果不一致:\n%s", diff)
		}
	})
}

func TestDeleteRuleIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		once, twice := NewRuleStore(), NewRuleStore()
		for _, name := range rapid.SliceOfDistinct(rapid.SampledFrom(componentPool), rapid.ID[string]).Draw(t, "rules") {
			rule := ruleGen().Draw(t, "rule")
			_ = once.Set(name, rule)
			_ = twice.Set(name, rule)
		}
		target := rapid.SampledFrom(componentPool).Draw(t, "target")
		once.Delete(target)
		twice.Delete(target)
		twice.Delete(target)
		if diff := cmp.Diff(once.rules, twice.rules); diff != "" {
			t.Fatalf("二次删除改变了状态:\n%s", diff)
		}
	})
}

func TestSetRuleReplacesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := NewRuleStore()
		a := ruleGen().Draw(t, "a")
		b := ruleGen().Draw(t, "b")
		_ = store.Set("MeOH", a)
		_ = store.Set("MeOH", b)
		got, ok := store.Get("MeOH")
		if !ok {
			t.Fatalf("规则应存在")
		}
		if diff := cmp.Diff(b, got); diff != "" {
			t.Fatalf("第二次 Set 应完全覆盖:\n%s", diff)
		}
	})
}

func TestSelectorFilteringProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parsed := RuleSet{}
		for _, name := range rapid.SliceOfDistinct(rapid.SampledFrom(componentPool), rapid.ID[string]).Draw(t, "parsed") {
			parsed[name] = ruleGen().Draw(t, "rule")
		}
		selected := rapid.SliceOfDistinct(rapid.SampledFrom(componentPool), rapid.ID[string]).Draw(t, "selected")

		store := NewRuleStore()
		installed, err := store.Ingest(parsed, Names(selected...))

		var missing []string
		for _, name := range selected {
			if _, ok := parsed[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(selected) == 0 || len(missing) > 0 {
			if err == nil {
				t.Fatalf("期望选择器不匹配错误")
			}
			if store.Len() != 0 {
				t.Fatalf("失败时不应安装规则")
			}
			return
		}
		if err != nil {
			t.Fatalf("ingest 失败: %v", err)
		}
		if diff := cmp.Diff(selected, installed); diff != "" {
			t.Fatalf("安装列表不符:\n%s", diff)
		}
		for _, name := range componentPool {
			_, want := parsed[name]
			want = want && contains(selected, name)
			if store.Has(name) != want {
				t.Fatalf("%s 安装状态不符: %v", name, store.Has(name))
			}
		}
	})
}

func TestCollisionAlwaysDetected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rule := ruleGen().Draw(t, "rule")
		h := New()
		_ = h.AddComponentWithRule("CO2", partialRef(t), rule)

		expected := len(rule.Collisions("CO2")) > 0
		_, _, err := h.Build(context.Background())
		var collision *CollisionError
		got := asCollision(err, &collision)
		if got != expected {
			t.Fatalf("冲突检测不符: want %v got %v (%v)", expected, got, err)
		}
	})
}

func asCollision(err error, target **CollisionError) bool {
	c, ok := err.(*CollisionError)
	if ok {
		*target = c
	}
	return ok
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

func ExampleHub_Build() {
	h := New()
	_ = h.AddComponentWithRule("EtOH", thermodb.Static{
		Data: map[string]thermodb.Data{"Pc": thermodb.Property{Symbol: "Pc", Value: 6.137, Unit: "MPa"}},
	}, Rule{Data: map[string]string{"Pc": "Pc1"}})

	data, _, err := h.Build(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}
	pc, _ := data.Get("EtOH", "Pc1")
	fmt.Println(data.Symbols("EtOH"), pc)
	// Output: [Pc1] Pc=6.137 MPa
}
