package ruleformat

import (
	"fmt"

	"github.com/thermolink/thermolink/internal/hub"
)

// SniffFunc 判断内容是否可能属于某种格式。
type SniffFunc func(content []byte) bool

// ParseFunc 把完整文件内容解析为 RuleSet。
type ParseFunc func(content []byte) (hub.RuleSet, error)

// Format 描述一种规则文件格式。
type Format struct {
	// Key 是格式的唯一标识，如 yaml、markdown、text。
	Key         string
	Description string
	// Extensions 为带点的小写扩展名，如 .yml。
	Extensions []string
	// Priority 越小越先参与内容嗅探。
	Priority int
	Sniff    SniffFunc
	Parse    ParseFunc
}

// ParseError 包装解析失败，匹配 hub.ErrParseFailure。
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	source := e.Path
	if source == "" {
		source = "<content>"
	}
	if e.Format == "" {
		return fmt.Sprintf("parse rules %s: %v", source, e.Err)
	}
	return fmt.Sprintf("parse rules %s (%s): %v", source, e.Format, e.Err)
}

func (e *ParseError) Is(target error) bool { return target == hub.ErrParseFailure }

func (e *ParseError) Unwrap() error { return e.Err }
