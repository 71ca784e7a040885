// Package txtrules 注册纯文本规则格式："# <组分>" 开始一个新段落，
// 其后为与 Markdown 格式相同的 DATA/EQUATIONS 正文。
package txtrules

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/thermolink/thermolink/internal/hub"
	"github.com/thermolink/thermolink/internal/ruleformat"
)

const Key = "text"

var (
	headerPattern = regexp.MustCompile(`^#\s*(\S.*?)\s*$`)
	sniffPattern  = regexp.MustCompile(`(?m)^#\s*\S`)
)

func init() {
	ruleformat.MustRegister(ruleformat.Format{
		Key:         Key,
		Description: "plain text with '# component' section headers",
		Extensions:  []string{".txt"},
		Priority:    30,
		Sniff:       Sniff,
		Parse:       Parse,
	})
}

func Sniff(content []byte) bool {
	return sniffPattern.Match(content)
}

func Parse(content []byte) (hub.RuleSet, error) {
	var (
		sections []ruleformat.Section
		body     strings.Builder
		current  *ruleformat.Section
	)
	flush := func() {
		if current != nil {
			current.Body = body.String()
			sections = append(sections, *current)
		}
		body.Reset()
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			current = &ruleformat.Section{Name: m[1], Line: lineNo + 1}
			continue
		}
		if current == nil {
			if strings.TrimSpace(line) != "" {
				return nil, fmt.Errorf("line %d: content before first '# component' header", lineNo)
			}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return ruleformat.BuildRuleSet(sections)
}
