package hub

import (
	"github.com/thermolink/thermolink/internal/thermodb"
)

// Source 是构建输出：组分名 → (对外符号 → 值)。组分保持注册表顺序。
type Source[T any] struct {
	ordered []string
	entries map[string]map[string]T
}

// DataSource 保存重命名后的数据条目。
type DataSource = Source[thermodb.Data]

// EquationSource 保存重命名后的方程条目。
type EquationSource = Source[thermodb.Equation]

func newSource[T any]() *Source[T] {
	return &Source[T]{entries: make(map[string]map[string]T)}
}

func (s *Source[T]) ensure(component string) map[string]T {
	if m, ok := s.entries[component]; ok {
		return m
	}
	m := make(map[string]T)
	s.entries[component] = m
	s.ordered = append(s.ordered, component)
	return m
}

func (s *Source[T]) put(component, symbol string, value T) {
	s.ensure(component)[symbol] = value
}

// Components 返回组分名（注册表顺序）。
func (s *Source[T]) Components() []string {
	if s == nil || len(s.ordered) == 0 {
		return nil
	}
	return append([]string(nil), s.ordered...)
}

// Len 返回组分数量。
func (s *Source[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ordered)
}

// Symbols 返回某组分下排序后的对外符号。
func (s *Source[T]) Symbols(component string) []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.entries[component])
}

// Get 按组分与对外符号查找条目。
func (s *Source[T]) Get(component, symbol string) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	v, ok := s.entries[component][symbol]
	if !ok {
		return zero, false
	}
	return v, true
}

// Component 返回某组分全部条目的副本。
func (s *Source[T]) Component(component string) (map[string]T, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s.entries[component]
	if !ok {
		return nil, false
	}
	out := make(map[string]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, true
}

// Map 返回完整嵌套映射的副本。
func (s *Source[T]) Map() map[string]map[string]T {
	if s == nil {
		return nil
	}
	out := make(map[string]map[string]T, len(s.entries))
	for _, name := range s.ordered {
		out[name], _ = s.Component(name)
	}
	return out
}

// Count 返回全部组分的条目总数。
func (s *Source[T]) Count() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, m := range s.entries {
		total += len(m)
	}
	return total
}
