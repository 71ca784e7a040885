package thermodb

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// document 描述文件型 thermodb 的磁盘格式（YAML，JSON 亦可）。
type document struct {
	Name      string                 `yaml:"name"`
	Data      map[string]propertyDoc `yaml:"data"`
	Matrix    map[string]matrixDoc   `yaml:"matrix"`
	Equations map[string]equationDoc `yaml:"equations"`
}

type propertyDoc struct {
	Value *float64 `yaml:"value"`
	Unit  string   `yaml:"unit"`
}

type matrixDoc struct {
	Labels []string    `yaml:"labels"`
	Values [][]float64 `yaml:"values"`
}

type equationDoc struct {
	Args   []string           `yaml:"args"`
	Params map[string]float64 `yaml:"params"`
	Body   string             `yaml:"body"`
	Unit   string             `yaml:"unit"`
}

// FileReference 是由 thermodb 文档构建的 Reference，同时实现 Lister。
type FileReference struct {
	name      string
	origin    string
	data      map[string]Data
	equations map[string]Equation
}

// Parse 解析 thermodb 文档；origin 仅用于错误信息。
func Parse(content []byte, origin string) (*FileReference, error) {
	if strings.TrimSpace(string(content)) == "" {
		return nil, fmt.Errorf("%s: empty thermodb document", origin)
	}

	var doc document
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}

	ref := &FileReference{
		name:      doc.Name,
		origin:    origin,
		data:      make(map[string]Data, len(doc.Data)+len(doc.Matrix)),
		equations: make(map[string]Equation, len(doc.Equations)),
	}

	for symbol, prop := range doc.Data {
		if prop.Value == nil {
			return nil, fmt.Errorf("%s: data %s: value required", origin, symbol)
		}
		ref.data[symbol] = Property{Symbol: symbol, Value: *prop.Value, Unit: prop.Unit}
	}
	for symbol, m := range doc.Matrix {
		if _, dup := ref.data[symbol]; dup {
			return nil, fmt.Errorf("%s: matrix %s duplicates a data symbol", origin, symbol)
		}
		matrix := Matrix{Symbol: symbol, Labels: m.Labels, Values: m.Values}
		if err := matrix.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", origin, err)
		}
		ref.data[symbol] = matrix
	}

	var errs []error
	for symbol, eq := range doc.Equations {
		compiled, err := CompileEquation(symbol, eq.Body, eq.Args, eq.Params)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		compiled.Unit = eq.Unit
		ref.equations[symbol] = compiled
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}

	return ref, nil
}

// Name 返回文档声明的组分名，可能为空。
func (r *FileReference) Name() string { return r.name }

// Origin 返回文档来源（通常是文件路径）。
func (r *FileReference) Origin() string { return r.origin }

func (r *FileReference) LookupData(symbol string) (Data, error) {
	if v, ok := r.data[symbol]; ok {
		return v, nil
	}
	return nil, NotFound("data", symbol)
}

func (r *FileReference) LookupEquation(symbol string) (Equation, error) {
	if eq, ok := r.equations[symbol]; ok {
		return eq, nil
	}
	return nil, NotFound("equation", symbol)
}

func (r *FileReference) DataSymbols() []string     { return sortedKeys(r.data) }
func (r *FileReference) EquationSymbols() []string { return sortedKeys(r.equations) }
