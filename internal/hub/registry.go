package hub

import (
	"errors"

	"github.com/thermolink/thermolink/internal/thermodb"
)

// Registry 维护组分名到 Reference 的映射，并保留首次注册的顺序。
// 重复注册同名组分会替换 Reference，但位置保持不变。
type Registry struct {
	refs    map[string]thermodb.Reference
	ordered []string
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{refs: make(map[string]thermodb.Reference)}
}

// Register 新增或替换组分。
func (r *Registry) Register(name string, ref thermodb.Reference) error {
	if name == "" {
		return errEmptyName
	}
	if ref == nil {
		return errors.New("component reference is nil")
	}
	if _, exists := r.refs[name]; !exists {
		r.ordered = append(r.ordered, name)
	}
	r.refs[name] = ref
	return nil
}

// Get 按名称查找组分。
func (r *Registry) Get(name string) (thermodb.Reference, error) {
	if r != nil {
		if ref, ok := r.refs[name]; ok {
			return ref, nil
		}
	}
	return nil, &NotFoundError{Kind: "component", Name: name}
}

// Has 判断组分是否已注册。
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.refs[name]
	return ok
}

// Remove 删除组分，其余组分的相对顺序不变。
func (r *Registry) Remove(name string) error {
	if !r.Has(name) {
		return &NotFoundError{Kind: "component", Name: name}
	}
	delete(r.refs, name)
	for i, existing := range r.ordered {
		if existing == name {
			r.ordered = append(r.ordered[:i:i], r.ordered[i+1:]...)
			break
		}
	}
	return nil
}

// List 按注册顺序返回组分名副本。
func (r *Registry) List() []string {
	if r == nil || len(r.ordered) == 0 {
		return nil
	}
	return append([]string(nil), r.ordered...)
}

// Len 返回组分数量。
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ordered)
}
