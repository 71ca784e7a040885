package hub

// RuleStore 保存组分名到 Rule 的映射。所有写入都会深拷贝，读出的 Rule 同样是副本。
type RuleStore struct {
	rules map[string]Rule
}

// NewRuleStore 创建空规则存储。
func NewRuleStore() *RuleStore {
	return &RuleStore{rules: make(map[string]Rule)}
}

// Set 安装或整体替换某组分的规则；组分无需已注册。
func (s *RuleStore) Set(name string, rule Rule) error {
	if name == "" {
		return errEmptyName
	}
	s.rules[name] = rule.Clone()
	return nil
}

// Delete 删除规则，目标不存在时为空操作。
func (s *RuleStore) Delete(name string) {
	delete(s.rules, name)
}

// Get 返回规则副本；ok=false 表示该组分没有规则。
func (s *RuleStore) Get(name string) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	rule, ok := s.rules[name]
	if !ok {
		return Rule{}, false
	}
	return rule.Clone(), true
}

// Has 判断规则是否存在。
func (s *RuleStore) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.rules[name]
	return ok
}

// Names 返回排序后的规则键。
func (s *RuleStore) Names() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.rules)
}

// Len 返回规则数量。
func (s *RuleStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Ingest 按选择器从解析结果中安装规则，返回实际安装的组分名。
// 显式选择器中只要有一个名称缺失或解析结果含空组分名就整体失败，存储保持不变。
func (s *RuleStore) Ingest(parsed RuleSet, sel Selector) ([]string, error) {
	names, err := sel.resolve(parsed)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if name == "" {
			return nil, errEmptyName
		}
	}
	for _, name := range names {
		if err := s.Set(name, parsed[name]); err != nil {
			return nil, err
		}
	}
	return names, nil
}
