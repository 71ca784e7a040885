// Package hub 实现 ThermoDB Hub：组分注册表、重命名规则存储，以及把两者合并为
// 数据源（DataSource）与方程源（EquationSource）的构建算法。
//
// 使用约定：
//  1. 通过 New 创建 Hub 实例并显式传递，不存在进程级单例；
//  2. Hub 本身不加锁，同一实例的调用需要由嵌入方串行化（参见 server.Guard）；
//  3. Build 只读取注册表与规则，可与其它 Build 并发，但不能与写操作并发。
//
// 规则文件的解析由 ruleformat 包负责，Hub 只消费解析结果（RuleSet）。
package hub
