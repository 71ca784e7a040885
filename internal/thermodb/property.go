package thermodb

import "fmt"

// Property 是单个标量属性（值 + 单位），文件型 Reference 的数据对象。
type Property struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit,omitempty"`
}

func (p Property) String() string {
	if p.Unit == "" {
		return fmt.Sprintf("%s=%g", p.Symbol, p.Value)
	}
	return fmt.Sprintf("%s=%g %s", p.Symbol, p.Value, p.Unit)
}

// Matrix 表示交互参数表（例如 NRTL 的 alpha_i_j），按标签二维索引。
type Matrix struct {
	Symbol string      `json:"symbol"`
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"values"`
}

// IJ 返回标签 i、j 交叉处的参数。
func (m Matrix) IJ(i, j string) (float64, error) {
	row, col := m.index(i), m.index(j)
	if row < 0 {
		return 0, NotFound("matrix label", i)
	}
	if col < 0 {
		return 0, NotFound("matrix label", j)
	}
	return m.Values[row][col], nil
}

func (m Matrix) index(label string) int {
	for idx, l := range m.Labels {
		if l == label {
			return idx
		}
	}
	return -1
}

func (m Matrix) validate() error {
	if len(m.Labels) == 0 {
		return fmt.Errorf("matrix %s: labels required", m.Symbol)
	}
	if len(m.Values) != len(m.Labels) {
		return fmt.Errorf("matrix %s: expected %d rows, got %d", m.Symbol, len(m.Labels), len(m.Values))
	}
	for idx, row := range m.Values {
		if len(row) != len(m.Labels) {
			return fmt.Errorf("matrix %s: row %d expected %d columns, got %d", m.Symbol, idx, len(m.Labels), len(row))
		}
	}
	return nil
}
