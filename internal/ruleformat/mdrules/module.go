// Package mdrules 注册 Markdown 规则格式：二级标题为组分名，正文使用
// "- DATA:" / "- EQUATIONS:" 标记加 "key: value" 行。正文可以缩进，
// 即便 Markdown 将其视为代码块也按原文解析。
package mdrules

import (
	"bytes"
	"errors"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/thermolink/thermolink/internal/hub"
	"github.com/thermolink/thermolink/internal/ruleformat"
)

const Key = "markdown"

const componentLevel = 2

var headingPattern = regexp.MustCompile(`(?m)^##\s+\S`)

func init() {
	ruleformat.MustRegister(ruleformat.Format{
		Key:         Key,
		Description: "Markdown with one level-2 heading per component",
		Extensions:  []string{".md", ".markdown"},
		Priority:    20,
		Sniff:       Sniff,
		Parse:       Parse,
	})
}

// Sniff 检查是否存在二级 ATX 标题。
func Sniff(content []byte) bool {
	return headingPattern.Match(content)
}

// Parse 以 goldmark 定位顶层标题，再把标题之间的原文交给通用正文语法。
func Parse(content []byte) (hub.RuleSet, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	type mark struct {
		name      string
		level     int
		lineStart int
		bodyStart int
	}
	var marks []mark
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok {
			continue
		}
		lines := heading.Lines()
		if lines.Len() == 0 {
			if heading.Level == componentLevel {
				return nil, errors.New("level-2 heading without component name")
			}
			continue
		}
		var name strings.Builder
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			name.Write(seg.Value(content))
		}
		first, last := lines.At(0), lines.At(lines.Len()-1)
		marks = append(marks, mark{
			name:      strings.TrimSpace(name.String()),
			level:     heading.Level,
			lineStart: lineStart(content, first.Start),
			bodyStart: skipSetextUnderline(content, nextLine(content, last.Stop)),
		})
	}

	var sections []ruleformat.Section
	for i, m := range marks {
		if m.level != componentLevel {
			continue
		}
		end := len(content)
		if i+1 < len(marks) {
			end = marks[i+1].lineStart
		}
		sections = append(sections, ruleformat.Section{
			Name: m.name,
			Line: bytes.Count(content[:m.bodyStart], []byte("\n")) + 1,
			Body: string(content[m.bodyStart:end]),
		})
	}
	return ruleformat.BuildRuleSet(sections)
}

func lineStart(content []byte, pos int) int {
	if idx := bytes.LastIndexByte(content[:pos], '\n'); idx >= 0 {
		return idx + 1
	}
	return 0
}

func nextLine(content []byte, pos int) int {
	if pos >= len(content) {
		return len(content)
	}
	if idx := bytes.IndexByte(content[pos:], '\n'); idx >= 0 {
		return pos + idx + 1
	}
	return len(content)
}

// skipSetextUnderline 跳过 setext 标题的 "---" 下划线行。
func skipSetextUnderline(content []byte, pos int) int {
	end := nextLine(content, pos)
	line := bytes.TrimSpace(content[pos:end])
	if len(line) > 0 && len(bytes.Trim(line, "-=")) == 0 {
		return end
	}
	return pos
}
