package hub

import (
	"errors"
	"sort"
	"strings"
)

// Rule 描述单个组分的重命名：原始符号 → 对外符号。
// 空映射表示该类别不做重命名；“没有规则”由 RuleStore.Get 的 ok=false 表示，二者不可混淆。
type Rule struct {
	Data      map[string]string `json:"data,omitempty"`
	Equations map[string]string `json:"equations,omitempty"`
}

// RuleSet 是规则解析器的输出：组分名 → Rule。
type RuleSet map[string]Rule

// Names 返回排序后的组分名。
func (s RuleSet) Names() []string {
	return sortedKeys(s)
}

// Clone 深拷贝规则，防止调用方在存储后修改映射。
func (r Rule) Clone() Rule {
	return Rule{
		Data:      cloneMapping(r.Data),
		Equations: cloneMapping(r.Equations),
	}
}

// IsEmpty 表示两个类别都没有映射。
func (r Rule) IsEmpty() bool {
	return len(r.Data) == 0 && len(r.Equations) == 0
}

// Mapping 返回指定类别的映射（只读）。
func (r Rule) Mapping(category Category) map[string]string {
	if category == CategoryEquation {
		return r.Equations
	}
	return r.Data
}

// Targets 返回指定类别重命名后的符号，已排序去重。
func (r Rule) Targets(category Category) []string {
	mapping := r.Mapping(category)
	if len(mapping) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(mapping))
	for _, renamed := range mapping {
		seen[renamed] = struct{}{}
	}
	return sortedKeys(seen)
}

// Collisions 找出两个类别中所有的重命名冲突，结果按类别、新符号排序。
func (r Rule) Collisions(component string) []Collision {
	var out []Collision
	for _, category := range []Category{CategoryData, CategoryEquation} {
		byTarget := make(map[string][]string)
		for original, renamed := range r.Mapping(category) {
			byTarget[renamed] = append(byTarget[renamed], original)
		}
		for _, renamed := range sortedKeys(byTarget) {
			originals := byTarget[renamed]
			if len(originals) < 2 {
				continue
			}
			sort.Strings(originals)
			out = append(out, Collision{
				Component: component,
				Category:  category,
				Renamed:   renamed,
				Originals: originals,
			})
		}
	}
	return out
}

// Selector 控制 ingest 安装哪些解析出的规则：通配或显式、非空、有序的名称列表。
// 零值是空的显式列表，会被判定为 SelectorMismatch。
type Selector struct {
	all   bool
	names []string
}

// SelectorWildcard 是配置文件中代表“全部组分”的字面量。
const SelectorWildcard = "*"

// All 返回通配选择器。
func All() Selector { return Selector{all: true} }

// Names 返回显式选择器，重复名称只保留第一次出现。
func Names(names ...string) Selector {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return Selector{names: out}
}

// ParseSelector 将配置值转换为 Selector，单独的 "*" 表示通配。
func ParseSelector(values []string) Selector {
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			trimmed = append(trimmed, v)
		}
	}
	if len(trimmed) == 1 && trimmed[0] == SelectorWildcard {
		return All()
	}
	return Names(trimmed...)
}

// IsAll 表示是否为通配选择器。
func (s Selector) IsAll() bool { return s.all }

// List 返回显式名称的副本，通配时为 nil。
func (s Selector) List() []string {
	if s.all {
		return nil
	}
	return append([]string(nil), s.names...)
}

func (s Selector) String() string {
	if s.all {
		return SelectorWildcard
	}
	return "[" + strings.Join(s.names, ",") + "]"
}

// resolve 计算需要安装的组分名；显式名称缺失时整体报错。
func (s Selector) resolve(parsed RuleSet) ([]string, error) {
	if s.all {
		return parsed.Names(), nil
	}
	if len(s.names) == 0 {
		return nil, &SelectorMismatchError{Reason: "explicit selector is empty"}
	}
	var missing []string
	for _, name := range s.names {
		if _, ok := parsed[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SelectorMismatchError{Missing: missing}
	}
	return append([]string(nil), s.names...), nil
}

var errEmptyName = errors.New("component name is required")

func cloneMapping(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
