package thermodb

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprEquation 是以表达式文本描述的方程，加载时编译，Eval 时注入参数。
type ExprEquation struct {
	Symbol string
	Body   string
	Unit   string

	args    []string
	params  map[string]float64
	program *vm.Program
}

// CompileEquation 编译方程体；表达式引用未声明的变量会在这里报错。
func CompileEquation(symbol, body string, args []string, params map[string]float64) (*ExprEquation, error) {
	if body == "" {
		return nil, fmt.Errorf("equation %s: body required", symbol)
	}
	env := make(map[string]any, len(params)+len(args))
	for name, value := range params {
		env[name] = value
	}
	for _, name := range args {
		if _, clash := params[name]; clash {
			return nil, fmt.Errorf("equation %s: argument %s shadows a parameter", symbol, name)
		}
		env[name] = 0.0
	}

	opts := append([]expr.Option{expr.Env(env)}, equationFunctions...)
	program, err := expr.Compile(body, opts...)
	if err != nil {
		return nil, fmt.Errorf("equation %s: %w", symbol, err)
	}

	copied := make(map[string]float64, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &ExprEquation{
		Symbol:  symbol,
		Body:    body,
		args:    append([]string(nil), args...),
		params:  copied,
		program: program,
	}, nil
}

// Args 返回声明的参数名（按文档顺序）。
func (e *ExprEquation) Args() []string {
	return append([]string(nil), e.args...)
}

// Eval 计算方程；缺少参数或结果非有限值时返回 ErrDomain。
func (e *ExprEquation) Eval(args map[string]float64) (float64, error) {
	if err := requireArgs(e.args, args); err != nil {
		return 0, fmt.Errorf("equation %s: %w", e.Symbol, err)
	}
	env := make(map[string]any, len(e.params)+len(e.args))
	for name, value := range e.params {
		env[name] = value
	}
	for _, name := range e.args {
		env[name] = args[name]
	}

	out, err := expr.Run(e.program, env)
	if err != nil {
		return 0, fmt.Errorf("equation %s: %w", e.Symbol, err)
	}
	value, err := toFloat(out)
	if err != nil {
		return 0, fmt.Errorf("equation %s: %w", e.Symbol, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("equation %s: non-finite result: %w", e.Symbol, ErrDomain)
	}
	return value, nil
}

var equationFunctions = []expr.Option{
	expr.Function("exp", unary(math.Exp)),
	expr.Function("ln", unary(math.Log)),
	expr.Function("log10", unary(math.Log10)),
	expr.Function("sqrt", unary(math.Sqrt)),
	expr.Function("pow", binary(math.Pow)),
}

func unary(fn func(float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("expects 1 argument, got %d", len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func binary(fn func(float64, float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("expects 2 arguments, got %d", len(params))
		}
		x, err := toFloat(params[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(params[1])
		if err != nil {
			return nil, err
		}
		return fn(x, y), nil
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("unexpected result type %T", v)
	}
}
