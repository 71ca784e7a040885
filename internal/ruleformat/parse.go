package ruleformat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thermolink/thermolink/internal/hub"
)

// ErrUnknownFormat 表示没有任何已注册格式能识别内容。
var ErrUnknownFormat = errors.New("no registered rule format recognises the content")

// Parser 把包级解析函数暴露为 hub.RuleParser。
type Parser struct{}

func (Parser) ParseFile(path string, names ...string) (hub.RuleSet, error) {
	return ParseFile(path, names...)
}

var _ hub.RuleParser = Parser{}

// ParseFile 读取规则文件并解析；names 非空时只返回对应组分。
// 扩展名未注册时退化为内容嗅探。
func ParseFile(path string, names ...string) (hub.RuleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	format, ok := ResolveExtension(filepath.Ext(path))
	if !ok {
		rules, err := ParseContent(content, names...)
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				perr.Path = path
			}
			return nil, err
		}
		return rules, nil
	}
	return parseWith(format, path, content, names)
}

// ParseContent 按 Priority 依次嗅探内容并使用首个匹配的格式解析。
func ParseContent(content []byte, names ...string) (hub.RuleSet, error) {
	for _, format := range List() {
		if format.Sniff == nil || !format.Sniff(content) {
			continue
		}
		return parseWith(format, "", content, names)
	}
	return nil, &ParseError{Err: ErrUnknownFormat}
}

// ParseAs 使用指定格式解析内容。
func ParseAs(key string, content []byte, names ...string) (hub.RuleSet, error) {
	format, ok := Resolve(key)
	if !ok {
		return nil, &ParseError{Format: key, Err: fmt.Errorf("format %q is not registered", key)}
	}
	return parseWith(format, "", content, names)
}

func parseWith(format Format, path string, content []byte, names []string) (hub.RuleSet, error) {
	rules, err := format.Parse(content)
	if err != nil {
		return nil, &ParseError{Path: path, Format: format.Key, Err: err}
	}
	return filter(rules, names), nil
}

func filter(rules hub.RuleSet, names []string) hub.RuleSet {
	if len(names) == 0 {
		return rules
	}
	out := make(hub.RuleSet, len(names))
	for _, name := range names {
		if rule, ok := rules[name]; ok {
			out[name] = rule
		}
	}
	return out
}
