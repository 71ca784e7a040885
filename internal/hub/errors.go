package hub

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound 表示按名称查找组分或规则失败。
	ErrNotFound = errors.New("not found")
	// ErrUnresolvedSymbol 表示规则引用的原始符号在 Reference 中不存在。
	ErrUnresolvedSymbol = errors.New("unresolved symbol")
	// ErrRenameCollision 表示同一组分同一类别下多个原始符号映射到同一新符号。
	ErrRenameCollision = errors.New("rename collision")
	// ErrSelectorMismatch 表示选择器引用了解析结果中不存在的组分，或显式列表为空。
	ErrSelectorMismatch = errors.New("selector mismatch")
	// ErrParseFailure 由规则解析器返回，Hub 原样透传。
	ErrParseFailure = errors.New("parse failure")
)

// Category 区分数据规则与方程规则。
type Category string

const (
	CategoryData     Category = "data"
	CategoryEquation Category = "equation"
)

// NotFoundError 记录未找到的对象类型与名称。
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// UnresolvedSymbolError 描述单条无法解析的映射。
type UnresolvedSymbolError struct {
	Component string
	Category  Category
	Symbol    string
	Renamed   string
	Err       error
}

func (e *UnresolvedSymbolError) Error() string {
	msg := fmt.Sprintf("component %s: %s symbol %q (exposed as %q) unresolved", e.Component, e.Category, e.Symbol, e.Renamed)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnresolvedSymbolError) Is(target error) bool { return target == ErrUnresolvedSymbol }

func (e *UnresolvedSymbolError) Unwrap() error { return e.Err }

// Collision 描述一次重命名冲突，Originals 已排序。
type Collision struct {
	Component string
	Category  Category
	Renamed   string
	Originals []string
}

func (c Collision) String() string {
	return fmt.Sprintf("component %s: %s symbols %s all renamed to %q",
		c.Component, c.Category, strings.Join(c.Originals, ", "), c.Renamed)
}

// CollisionError 汇总一次构建/校验中发现的全部冲突。
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	parts := make([]string, len(e.Collisions))
	for i, c := range e.Collisions {
		parts[i] = c.String()
	}
	return "rename collision: " + strings.Join(parts, "; ")
}

func (e *CollisionError) Is(target error) bool { return target == ErrRenameCollision }

// SelectorMismatchError 列出选择器中无法满足的组分名。
type SelectorMismatchError struct {
	Missing []string
	Reason  string
}

func (e *SelectorMismatchError) Error() string {
	if len(e.Missing) == 0 {
		return "selector mismatch: " + e.Reason
	}
	return fmt.Sprintf("selector mismatch: components %s not present in parsed rules", strings.Join(e.Missing, ", "))
}

func (e *SelectorMismatchError) Is(target error) bool { return target == ErrSelectorMismatch }

// BuildError 汇总整个构建过程中累计的未解析符号；对应的部分结果仍然返回给调用方。
type BuildError struct {
	Unresolved []*UnresolvedSymbolError
}

func (e *BuildError) Error() string {
	parts := make([]string, len(e.Unresolved))
	for i, u := range e.Unresolved {
		parts[i] = u.Error()
	}
	return fmt.Sprintf("build: %d unresolved symbol(s): %s", len(e.Unresolved), strings.Join(parts, "; "))
}

func (e *BuildError) Unwrap() []error {
	errs := make([]error, len(e.Unresolved))
	for i, u := range e.Unresolved {
		errs[i] = u
	}
	return errs
}
