package hub

import (
	"github.com/thermolink/thermolink/internal/thermodb"
)

func constEquation(v float64) *thermodb.Func {
	return &thermodb.Func{
		Arguments: []string{"T"},
		Fn:        func(map[string]float64) (float64, error) { return v, nil },
	}
}

// componentRef 返回声明 Pc/Tc/AcFa 与 VaPr 的内存 Reference。
func componentRef(pc, tc, acfa float64) thermodb.Static {
	return thermodb.Static{
		Data: map[string]thermodb.Data{
			"Pc":   thermodb.Property{Symbol: "Pc", Value: pc, Unit: "MPa"},
			"Tc":   thermodb.Property{Symbol: "Tc", Value: tc, Unit: "K"},
			"AcFa": thermodb.Property{Symbol: "AcFa", Value: acfa},
		},
		Equations: map[string]thermodb.Equation{
			"VaPr": constEquation(pc),
		},
	}
}

func identityRule() Rule {
	return Rule{
		Data:      map[string]string{"Pc": "Pc", "Tc": "Tc", "AcFa": "AcFa"},
		Equations: map[string]string{"VaPr": "VaPr"},
	}
}
