package thermodb

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSymbolNotFound 表示 Reference 中不存在请求的符号。
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrDomain 表示方程输入缺失或超出定义域，调用方应原样向上传递。
var ErrDomain = errors.New("argument out of domain")

// Data 是数据库返回的属性句柄（数值 + 元数据），Hub 只做透传。
type Data any

// Equation 是带参数的可调用对象，Args 返回声明的参数名。
type Equation interface {
	Args() []string
	Eval(args map[string]float64) (float64, error)
}

// Reference 描述单个组分在外部数据库中的句柄，只暴露两种查找能力。
type Reference interface {
	// LookupData 按原始符号查找数据，不存在时返回匹配 ErrSymbolNotFound 的错误。
	LookupData(symbol string) (Data, error)
	// LookupEquation 按原始符号查找方程，不存在时返回匹配 ErrSymbolNotFound 的错误。
	LookupEquation(symbol string) (Equation, error)
}

// Lister 是可选能力，允许诊断端列出 Reference 声明的全部符号。
type Lister interface {
	DataSymbols() []string
	EquationSymbols() []string
}

// NotFound 构造带符号信息的 ErrSymbolNotFound。
func NotFound(kind, symbol string) error {
	return fmt.Errorf("%s %q: %w", kind, symbol, ErrSymbolNotFound)
}

// Static 是纯内存实现，适合测试或由调用方手工拼装数据。
type Static struct {
	Data      map[string]Data
	Equations map[string]Equation
}

func (s Static) LookupData(symbol string) (Data, error) {
	if v, ok := s.Data[symbol]; ok {
		return v, nil
	}
	return nil, NotFound("data", symbol)
}

func (s Static) LookupEquation(symbol string) (Equation, error) {
	if eq, ok := s.Equations[symbol]; ok {
		return eq, nil
	}
	return nil, NotFound("equation", symbol)
}

func (s Static) DataSymbols() []string     { return sortedKeys(s.Data) }
func (s Static) EquationSymbols() []string { return sortedKeys(s.Equations) }

// Func 将普通函数适配为 Equation。
type Func struct {
	Arguments []string
	Fn        func(args map[string]float64) (float64, error)
}

func (f Func) Args() []string { return append([]string(nil), f.Arguments...) }

func (f Func) Eval(args map[string]float64) (float64, error) {
	if err := requireArgs(f.Arguments, args); err != nil {
		return 0, err
	}
	return f.Fn(args)
}

func requireArgs(names []string, args map[string]float64) error {
	for _, name := range names {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing argument %q: %w", name, ErrDomain)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
