package ruleformat

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/thermolink/thermolink/internal/hub"
)

// Section 是按标题切分出的组分规则块，供 Markdown/文本格式共用。
type Section struct {
	Name string
	// Line 是 Body 第一行在原文件中的行号（从 1 开始），用于错误定位。
	Line int
	Body string
}

var (
	markerPattern = regexp.MustCompile(`(?i)^-?\s*(DATA|EQUATIONS?)\s*:\s*(\{\}|\[\])?\s*$`)
	entryPattern  = regexp.MustCompile(`^([^:\s][^:]*?)\s*:\s*(\S.*?)\s*$`)
)

// BuildRuleSet 逐个解析 Section，重复组分名视为错误。
func BuildRuleSet(sections []Section) (hub.RuleSet, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("no component sections found")
	}
	rules := make(hub.RuleSet, len(sections))
	for _, section := range sections {
		if section.Name == "" {
			return nil, fmt.Errorf("line %d: component name is empty", section.Line)
		}
		if _, dup := rules[section.Name]; dup {
			return nil, fmt.Errorf("line %d: component %s defined twice", section.Line, section.Name)
		}
		rule, err := ParseBody(section.Body, section.Line)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", section.Name, err)
		}
		rules[section.Name] = rule
	}
	return rules, nil
}

// ParseBody 解析 "- DATA:" / "- EQUATIONS:" 标记及其后的 "key: value" 行。
// 缩进不敏感；未出现的类别保持为 nil 映射。
func ParseBody(body string, firstLine int) (hub.Rule, error) {
	var (
		rule    hub.Rule
		current *map[string]string
	)
	scanner := bufio.NewScanner(strings.NewReader(body))
	for lineNo := firstLine; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := markerPattern.FindStringSubmatch(line); m != nil {
			if strings.EqualFold(m[1], "DATA") {
				current = &rule.Data
			} else {
				current = &rule.Equations
			}
			if *current == nil {
				*current = make(map[string]string)
			}
			continue
		}
		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			return hub.Rule{}, fmt.Errorf("line %d: unrecognised line %q", lineNo, line)
		}
		if current == nil {
			return hub.Rule{}, fmt.Errorf("line %d: entry %q appears before a DATA or EQUATIONS marker", lineNo, line)
		}
		if _, dup := (*current)[m[1]]; dup {
			return hub.Rule{}, fmt.Errorf("line %d: symbol %s mapped twice", lineNo, m[1])
		}
		(*current)[m[1]] = m[2]
	}
	if err := scanner.Err(); err != nil {
		return hub.Rule{}, err
	}
	return rule, nil
}
