package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/thermolink/thermolink/internal/hub"
)

// Status 汇总构建结果。
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Report 是一次构建的可序列化快照。
type Report struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Status      Status             `json:"status"`
	Components  []ComponentReport  `json:"components"`
	Collisions  []CollisionReport  `json:"collisions,omitempty"`
	Unresolved  []UnresolvedReport `json:"unresolved,omitempty"`
	Error       string             `json:"error,omitempty"`
}

type ComponentReport struct {
	Name      string          `json:"name"`
	Data      []DataEntry     `json:"data"`
	Equations []EquationEntry `json:"equations"`
}

// DataEntry 中的 Value 优先使用数据对象自身的 JSON 形式，无法序列化时退化为字符串。
type DataEntry struct {
	Symbol string          `json:"symbol"`
	Value  json.RawMessage `json:"value"`
}

type EquationEntry struct {
	Symbol string   `json:"symbol"`
	Args   []string `json:"args"`
}

type CollisionReport struct {
	Component string   `json:"component"`
	Category  string   `json:"category"`
	Renamed   string   `json:"renamed"`
	Originals []string `json:"originals"`
}

type UnresolvedReport struct {
	Component string `json:"component"`
	Category  string `json:"category"`
	Symbol    string `json:"symbol"`
	Renamed   string `json:"renamed"`
	Reason    string `json:"reason,omitempty"`
}

// FromBuild 由 hub.Build 的三个返回值生成报告。
func FromBuild(data *hub.DataSource, equations *hub.EquationSource, err error) Report {
	r := Report{GeneratedAt: time.Now().UTC(), Status: StatusOK, Components: []ComponentReport{}}

	for _, name := range data.Components() {
		comp := ComponentReport{Name: name, Data: []DataEntry{}, Equations: []EquationEntry{}}
		for _, symbol := range data.Symbols(name) {
			value, _ := data.Get(name, symbol)
			comp.Data = append(comp.Data, DataEntry{Symbol: symbol, Value: encodeValue(value)})
		}
		for _, symbol := range equations.Symbols(name) {
			eq, _ := equations.Get(name, symbol)
			comp.Equations = append(comp.Equations, EquationEntry{Symbol: symbol, Args: eq.Args()})
		}
		r.Components = append(r.Components, comp)
	}

	if err == nil {
		return r
	}
	r.Error = err.Error()

	var collision *hub.CollisionError
	var buildErr *hub.BuildError
	switch {
	case errors.As(err, &collision):
		r.Status = StatusFailed
		for _, c := range collision.Collisions {
			r.Collisions = append(r.Collisions, CollisionReport{
				Component: c.Component,
				Category:  string(c.Category),
				Renamed:   c.Renamed,
				Originals: c.Originals,
			})
		}
	case errors.As(err, &buildErr):
		r.Status = StatusPartial
		for _, u := range buildErr.Unresolved {
			entry := UnresolvedReport{
				Component: u.Component,
				Category:  string(u.Category),
				Symbol:    u.Symbol,
				Renamed:   u.Renamed,
			}
			if u.Err != nil {
				entry.Reason = u.Err.Error()
			}
			r.Unresolved = append(r.Unresolved, entry)
		}
	default:
		r.Status = StatusFailed
	}
	return r
}

// OK 表示构建没有任何错误。
func (r Report) OK() bool { return r.Status == StatusOK }

func encodeValue(value any) json.RawMessage {
	if raw, err := json.Marshal(value); err == nil {
		return raw
	}
	raw, _ := json.Marshal(fmt.Sprint(value))
	return raw
}
