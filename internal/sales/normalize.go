package sales

import (
	"strings"

	"github.com/KaramelBytes/salesdash/internal/parser"
)

// mandatory fields; rows missing any of them are dropped.
var mandatory = []string{ColIssueDate, ColLineTotal, ColSalesperson, ColProductGroup}

// NormalizeStats reports what normalization did to a raw table.
type NormalizeStats struct {
	RowsRead    int `json:"rows_read" yaml:"rows_read"`
	RowsKept    int `json:"rows_kept" yaml:"rows_kept"`
	RowsDropped int `json:"rows_dropped" yaml:"rows_dropped"`
	// Missing counts rows lacking each mandatory field. A row can count
	// against several fields.
	Missing map[string]int `json:"missing,omitempty" yaml:"missing,omitempty"`
	// CoercionFailures counts non-empty cells that did not parse.
	CoercionFailures map[string]int `json:"coercion_failures,omitempty" yaml:"coercion_failures,omitempty"`
	// Renamed maps source headers to the canonical name they were given.
	Renamed map[string]string `json:"renamed,omitempty" yaml:"renamed,omitempty"`
	// Unmapped lists source headers passed through as Extra.
	Unmapped []string `json:"unmapped,omitempty" yaml:"unmapped,omitempty"`
}

// MissingColumns returns the mandatory canonical columns absent from the source.
func (s NormalizeStats) MissingColumns() []string {
	have := map[string]bool{}
	for _, c := range s.Renamed {
		have[c] = true
	}
	var out []string
	for _, c := range mandatory {
		if !have[c] {
			out = append(out, c)
		}
	}
	return out
}

// Normalize maps a raw table onto the canonical schema, coerces dates and
// numbers, drops rows missing a mandatory field and derives the period
// label. A nil raw table yields an empty table.
func Normalize(raw *parser.RawTable) (*Table, NormalizeStats) {
	st := NormalizeStats{
		Missing:          map[string]int{},
		CoercionFailures: map[string]int{},
		Renamed:          map[string]string{},
	}
	if raw == nil {
		return NewTable(nil), st
	}
	st.RowsRead = raw.Len()

	columns := map[string][]string{}
	var extra []string
	for _, h := range raw.Columns() {
		vals, _ := raw.Column(h)
		canon, ok := Canonical(h)
		if !ok {
			extra = append(extra, h)
			columns[h] = vals
			continue
		}
		if _, taken := columns[canon]; taken {
			// a second source for the same canonical column passes through
			extra = append(extra, h)
			columns[h] = vals
			continue
		}
		columns[canon] = vals
		st.Renamed[h] = canon
	}
	st.Unmapped = extra

	rawCell := func(col string, i int) string {
		vals := columns[col]
		if i >= len(vals) {
			return ""
		}
		return vals[i]
	}
	cell := func(col string, i int) string { return strings.TrimSpace(rawCell(col, i)) }
	number := func(col string, i int) Number {
		v := cell(col, i)
		if v == "" {
			return Number{}
		}
		f, ok := ParseNumber(v)
		if !ok {
			st.CoercionFailures[col]++
			return Number{}
		}
		return Some(f)
	}

	records := make([]Record, 0, st.RowsRead)
	for i := 0; i < st.RowsRead; i++ {
		r := Record{
			CustomerName:    cell(ColCustomer, i),
			SalespersonName: cell(ColSalesperson, i),
			ProductClass:    cell(ColProductClass, i),
			ProductGroup:    cell(ColProductGroup, i),
			ProductSubgroup: cell(ColProductSubgroup, i),
			ProductFamily:   cell(ColProductFamily, i),
			ProductSegment:  cell(ColProductSegment, i),
			ItemDescription: cell(ColItemDescription, i),
			SaleType:        cell(ColSaleType, i),
			WeightRaw:       cell(ColWeightRaw, i),
			Quantity:        number(ColQuantity, i),
			GrossWeight:     number(ColGrossWeight, i),
			UnitValue:       number(ColUnitValue, i),
			LineTotalValue:  number(ColLineTotal, i),
		}
		dateOK := false
		if v := cell(ColIssueDate, i); v != "" {
			if d, ok := ParseDate(v); ok {
				r.IssueDate, dateOK = d, true
			} else {
				st.CoercionFailures[ColIssueDate]++
			}
		}

		drop := false
		for _, m := range mandatory {
			var missing bool
			switch m {
			case ColIssueDate:
				missing = !dateOK
			case ColLineTotal:
				missing = !r.LineTotalValue.Valid
			case ColSalesperson:
				missing = r.SalespersonName == ""
			case ColProductGroup:
				missing = r.ProductGroup == ""
			}
			if missing {
				st.Missing[m]++
				drop = true
			}
		}
		if drop {
			continue
		}

		if len(extra) > 0 {
			r.Extra = make(map[string]string, len(extra))
			for _, h := range extra {
				r.Extra[h] = rawCell(h, i)
			}
		}
		p := r.Period()
		r.MonthName = MonthName(p.Month)
		r.PeriodLabel = p.Label()
		records = append(records, r)
	}
	st.RowsKept = len(records)
	st.RowsDropped = st.RowsRead - st.RowsKept
	return NewTable(records), st
}
