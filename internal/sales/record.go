package sales

import (
	"sort"
	"time"
)

// Unspecified labels empty categorical values when grouping or displaying.
const Unspecified = "Não Especificado"

// Number is a nullable decimal cell. Valid is false when the source cell was
// empty or could not be parsed.
type Number struct {
	Value float64
	Valid bool
}

// Some returns a valid Number holding v.
func Some(v float64) Number { return Number{Value: v, Valid: true} }

// Record is one row of the canonical sales table.
type Record struct {
	CustomerName    string
	SalespersonName string
	ProductClass    string
	ProductGroup    string
	ProductSubgroup string
	ProductFamily   string
	ProductSegment  string
	ItemDescription string
	SaleType        string

	Quantity       Number
	GrossWeight    Number
	UnitValue      Number
	LineTotalValue Number
	// WeightRaw is the untyped Weight column.
	WeightRaw string

	IssueDate   time.Time
	MonthName   string
	PeriodLabel string

	// Extra holds unmapped source columns by header.
	Extra map[string]string
}

// Period returns the calendar month of the record's issue date.
func (r Record) Period() Period {
	return Period{Year: r.IssueDate.Year(), Month: r.IssueDate.Month()}
}

// Value returns the record's value for a categorical dimension. Empty
// values read as Unspecified.
func (r Record) Value(d Dimension) string {
	var v string
	switch d {
	case DimCustomer:
		v = r.CustomerName
	case DimSalesperson:
		v = r.SalespersonName
	case DimProductClass:
		v = r.ProductClass
	case DimProductGroup:
		v = r.ProductGroup
	case DimProductSubgroup:
		v = r.ProductSubgroup
	case DimProductFamily:
		v = r.ProductFamily
	case DimProductSegment:
		v = r.ProductSegment
	case DimSaleType:
		v = r.SaleType
	case DimPeriod:
		v = r.PeriodLabel
	case DimItemDescription:
		v = r.ItemDescription
	}
	if v == "" {
		return Unspecified
	}
	return v
}

// Metric returns the record's value for a numeric column.
func (r Record) Metric(m Metric) Number {
	switch m {
	case MetricQuantity:
		return r.Quantity
	case MetricGrossWeight:
		return r.GrossWeight
	case MetricUnitValue:
		return r.UnitValue
	case MetricLineTotal:
		return r.LineTotalValue
	}
	return Number{}
}

// Table is an immutable, ordered set of records.
type Table struct {
	records []Record
}

// NewTable wraps records. The slice must not be modified afterwards.
func NewTable(records []Record) *Table {
	return &Table{records: records}
}

// Len returns the number of records. A nil table is empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns a copy of the records in table order.
func (t *Table) Records() []Record {
	if t == nil {
		return nil
	}
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Each calls fn for every record in order without copying the table.
func (t *Table) Each(fn func(Record)) {
	if t == nil {
		return
	}
	for _, r := range t.records {
		fn(r)
	}
}

// Where returns a new table holding the records for which keep is true.
func (t *Table) Where(keep func(Record) bool) *Table {
	out := make([]Record, 0, t.Len())
	t.Each(func(r Record) {
		if keep(r) {
			out = append(out, r)
		}
	})
	return NewTable(out)
}

// Periods returns the distinct period labels in chronological order.
func (t *Table) Periods() []string {
	seen := map[Period]bool{}
	var ps []Period
	t.Each(func(r Record) {
		p := r.Period()
		if !seen[p] {
			seen[p] = true
			ps = append(ps, p)
		}
	})
	SortPeriods(ps)
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Label()
	}
	return out
}

// Salespeople returns the distinct salesperson names in first-seen order.
func (t *Table) Salespeople() []string {
	return t.Distinct(DimSalesperson)
}

// Distinct returns the distinct values of d in first-seen order.
func (t *Table) Distinct(d Dimension) []string {
	seen := map[string]bool{}
	var out []string
	t.Each(func(r Record) {
		v := r.Value(d)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	})
	return out
}

// SortPeriods orders periods chronologically in place.
func SortPeriods(ps []Period) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Before(ps[j]) })
}
