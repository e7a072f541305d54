package analysis

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/salesdash/internal/sales"
)

// GroupTotal is the summed line total of one dimension value.
type GroupTotal struct {
	Key   string          `json:"key" yaml:"key"`
	Total decimal.Decimal `json:"total" yaml:"total"`
	Lines int             `json:"lines" yaml:"lines"`
}

// GroupShare is a GroupTotal with its fraction of the overall total.
type GroupShare struct {
	GroupTotal `yaml:",inline"`
	Share      float64 `json:"share" yaml:"share"`
}

// DailyPoint is the summed line total of one calendar day.
type DailyPoint struct {
	Date        time.Time       `json:"date" yaml:"date"`
	PeriodLabel string          `json:"period_label" yaml:"period_label"`
	Total       decimal.Decimal `json:"total" yaml:"total"`
}

func dec(n sales.Number) (decimal.Decimal, bool) {
	if !n.Valid {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(n.Value), true
}

// SumBy totals line_total_value per value of d, largest first. Ties keep
// the order in which values first appear. Missing totals are ignored.
func SumBy(t *sales.Table, d sales.Dimension) []GroupTotal {
	idx := map[string]int{}
	var out []GroupTotal
	t.Each(func(r sales.Record) {
		k := r.Value(d)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, GroupTotal{Key: k, Total: decimal.Zero})
		}
		out[i].Lines++
		if v, ok := dec(r.LineTotalValue); ok {
			out[i].Total = out[i].Total.Add(v)
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out
}

// TopNByValue returns the first n entries of SumBy. A non-positive n yields nothing.
func TopNByValue(t *sales.Table, d sales.Dimension, n int) []GroupTotal {
	if n <= 0 {
		return nil
	}
	all := SumBy(t, d)
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Keys returns the group keys in order.
func Keys(groups []GroupTotal) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

// DailySeries totals line_total_value per calendar day, ordered by day.
func DailySeries(t *sales.Table) []DailyPoint {
	idx := map[time.Time]int{}
	var out []DailyPoint
	t.Each(func(r sales.Record) {
		i, ok := idx[r.IssueDate]
		if !ok {
			i = len(out)
			idx[r.IssueDate] = i
			out = append(out, DailyPoint{Date: r.IssueDate, PeriodLabel: r.PeriodLabel, Total: decimal.Zero})
		}
		if v, ok := dec(r.LineTotalValue); ok {
			out[i].Total = out[i].Total.Add(v)
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// PeriodSeries totals line_total_value per period, in chronological order.
func PeriodSeries(t *sales.Table) []GroupTotal {
	byLabel := map[string]GroupTotal{}
	for _, g := range SumBy(t, sales.DimPeriod) {
		byLabel[g.Key] = g
	}
	labels := t.Periods()
	out := make([]GroupTotal, 0, len(labels))
	for _, l := range labels {
		out = append(out, byLabel[l])
	}
	return out
}

// Share returns each value's fraction of the overall line total, largest first.
// Shares are zero when the overall total is zero.
func Share(t *sales.Table, d sales.Dimension) []GroupShare {
	groups := SumBy(t, d)
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Total)
	}
	out := make([]GroupShare, len(groups))
	for i, g := range groups {
		out[i] = GroupShare{GroupTotal: g}
		if !total.IsZero() {
			out[i].Share = g.Total.Div(total).InexactFloat64()
		}
	}
	return out
}
