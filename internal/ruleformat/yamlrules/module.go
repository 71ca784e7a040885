// Package yamlrules 注册 YAML/JSON 规则格式：
//
//	CO2:
//	  DATA:
//	    Pc: Pc
//	  EQUATIONS:
//	    vapor-pressure: VaPr
//
// 键大小写不敏感，单数 EQUATION 与 EQUATIONS 等价。
package yamlrules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/thermolink/thermolink/internal/hub"
	"github.com/thermolink/thermolink/internal/ruleformat"
)

const Key = "yaml"

func init() {
	ruleformat.MustRegister(ruleformat.Format{
		Key:         Key,
		Description: "YAML/JSON mapping of component → DATA/EQUATIONS",
		Extensions:  []string{".yml", ".yaml", ".json"},
		Priority:    10,
		Sniff:       Sniff,
		Parse:       Parse,
	})
}

type section struct {
	Data      map[string]string `mapstructure:"DATA"`
	Equations map[string]string `mapstructure:"EQUATIONS"`
}

// Sniff 要求内容是非空映射，且每个值都是映射或空值。
func Sniff(content []byte) bool {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil || len(raw) == 0 {
		return false
	}
	for _, v := range raw {
		if v == nil {
			continue
		}
		if _, ok := v.(map[string]any); !ok {
			return false
		}
	}
	return true
}

// Parse 解析完整文档，空文档视为错误。
func Parse(content []byte) (hub.RuleSet, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("rule document is empty")
	}
	rules := make(hub.RuleSet, len(raw))
	for name, value := range raw {
		rule, err := decodeSection(value)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		rules[name] = rule
	}
	return rules, nil
}

func decodeSection(value any) (hub.Rule, error) {
	if value == nil {
		return hub.Rule{}, nil
	}
	raw, ok := value.(map[string]any)
	if !ok {
		return hub.Rule{}, fmt.Errorf("expected a mapping, got %T", value)
	}
	normalized := make(map[string]any, len(raw))
	for key, v := range raw {
		upper := strings.ToUpper(strings.TrimSpace(key))
		if upper == "EQUATION" {
			upper = "EQUATIONS"
		}
		if _, dup := normalized[upper]; dup {
			return hub.Rule{}, fmt.Errorf("category %s declared twice", upper)
		}
		normalized[upper] = v
	}

	var out section
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return hub.Rule{}, err
	}
	if err := decoder.Decode(normalized); err != nil {
		return hub.Rule{}, err
	}
	if err := requireTargets("DATA", out.Data); err != nil {
		return hub.Rule{}, err
	}
	if err := requireTargets("EQUATIONS", out.Equations); err != nil {
		return hub.Rule{}, err
	}
	return hub.Rule{Data: out.Data, Equations: out.Equations}, nil
}

// requireTargets 拒绝空值映射：YAML 中的 `Pc:` 会被弱类型解码为空字符串。
func requireTargets(category string, mapping map[string]string) error {
	for _, symbol := range sortedSymbols(mapping) {
		if strings.TrimSpace(mapping[symbol]) == "" {
			return fmt.Errorf("%s symbol %s has no external name", category, symbol)
		}
	}
	return nil
}

func sortedSymbols(mapping map[string]string) []string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
