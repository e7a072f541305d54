package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/salesdash/internal/sales"
)

// KPIs are the headline indicators of a table.
type KPIs struct {
	Lines               int             `json:"lines" yaml:"lines"`
	TotalValue          decimal.Decimal `json:"total_value" yaml:"total_value"`
	DistinctSalespeople int             `json:"distinct_salespeople" yaml:"distinct_salespeople"`
	AvgValuePerLine     decimal.Decimal `json:"avg_value_per_line" yaml:"avg_value_per_line"`
	TotalWeight         decimal.Decimal `json:"total_weight" yaml:"total_weight"`
	AvgWeightPerLine    decimal.Decimal `json:"avg_weight_per_line" yaml:"avg_weight_per_line"`
	ValuePerWeight      decimal.Decimal `json:"value_per_weight" yaml:"value_per_weight"`
}

// divPrecision is the number of decimal places kept by KPI ratios.
const divPrecision = 6

// ComputeKPIs derives the headline indicators. Averages are per line
// including lines with a missing value; ratios with a zero denominator are 0.
func ComputeKPIs(t *sales.Table) KPIs {
	k := KPIs{
		TotalValue:       decimal.Zero,
		AvgValuePerLine:  decimal.Zero,
		TotalWeight:      decimal.Zero,
		AvgWeightPerLine: decimal.Zero,
		ValuePerWeight:   decimal.Zero,
	}
	people := map[string]bool{}
	t.Each(func(r sales.Record) {
		k.Lines++
		if v, ok := dec(r.LineTotalValue); ok {
			k.TotalValue = k.TotalValue.Add(v)
		}
		if w, ok := dec(r.GrossWeight); ok {
			k.TotalWeight = k.TotalWeight.Add(w)
		}
		if r.SalespersonName != "" {
			people[r.SalespersonName] = true
		}
	})
	k.DistinctSalespeople = len(people)
	if k.Lines > 0 {
		n := decimal.NewFromInt(int64(k.Lines))
		k.AvgValuePerLine = k.TotalValue.DivRound(n, divPrecision)
		k.AvgWeightPerLine = k.TotalWeight.DivRound(n, divPrecision)
	}
	if k.TotalWeight.IsPositive() {
		k.ValuePerWeight = k.TotalValue.DivRound(k.TotalWeight, divPrecision)
	}
	return k
}
