package ruleformat

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var globalRegistry = newRegistry()

type registry struct {
	mu         sync.RWMutex
	formats    map[string]Format
	extensions map[string]string
}

func newRegistry() *registry {
	return &registry{
		formats:    make(map[string]Format),
		extensions: make(map[string]string),
	}
}

// Register 将格式加入全局注册表，重复键或扩展名会返回错误。
func Register(format Format) error {
	return globalRegistry.register(format)
}

// MustRegister 在注册失败时 panic，适合格式子包 init() 中调用。
func MustRegister(format Format) {
	if err := Register(format); err != nil {
		panic(err)
	}
}

// Resolve 返回指定键的格式。
func Resolve(key string) (Format, bool) {
	return globalRegistry.resolve(key)
}

// ResolveExtension 根据扩展名（可带或不带点）查找格式。
func ResolveExtension(ext string) (Format, bool) {
	return globalRegistry.resolveExtension(ext)
}

// List 返回按 Priority、Key 排序的格式列表。
func List() []Format {
	return globalRegistry.list()
}

// Keys 返回所有已注册格式的键，顺序与 List 一致。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, format := range items {
		result[i] = format.Key
	}
	return result
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func normalizeExtension(ext string) string {
	ext = normalizeKey(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func (r *registry) register(format Format) error {
	key := normalizeKey(format.Key)
	if key == "" {
		return fmt.Errorf("format key is required")
	}
	if format.Parse == nil {
		return fmt.Errorf("format %s: parse function is required", key)
	}
	format.Key = key

	exts := make([]string, 0, len(format.Extensions))
	for _, ext := range format.Extensions {
		if ext = normalizeExtension(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	format.Extensions = exts

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formats[key]; exists {
		return fmt.Errorf("format %s already registered", key)
	}
	for _, ext := range exts {
		if owner, exists := r.extensions[ext]; exists {
			return fmt.Errorf("extension %s already claimed by format %s", ext, owner)
		}
	}
	r.formats[key] = format
	for _, ext := range exts {
		r.extensions[ext] = key
	}
	return nil
}

func (r *registry) resolve(key string) (Format, bool) {
	normalized := normalizeKey(key)
	if normalized == "" {
		return Format{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	format, ok := r.formats[normalized]
	return format, ok
}

func (r *registry) resolveExtension(ext string) (Format, bool) {
	normalized := normalizeExtension(ext)
	if normalized == "" {
		return Format{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	key, ok := r.extensions[normalized]
	if !ok {
		return Format{}, false
	}
	return r.formats[key], true
}

func (r *registry) list() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.formats) == 0 {
		return nil
	}
	result := make([]Format, 0, len(r.formats))
	for _, format := range r.formats {
		result = append(result, format)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].Key < result[j].Key
	})
	return result
}
