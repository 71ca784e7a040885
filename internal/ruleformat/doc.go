// Package ruleformat 负责把规则文件解析为 hub.RuleSet。
//
// 每种文件格式位于独立子包（yamlrules、mdrules、txtrules），在 init() 中通过
// MustRegister 注册自身。调用方只需匿名导入所需子包，再调用 ParseFile 或
// ParseContent：前者按扩展名选择格式，后者按 Priority 依次嗅探内容。
package ruleformat
