package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/salesdash/internal/sales"
)

// Summary holds the descriptive statistics of one series. Values other than
// Count are NaN when the series is empty, and Std is NaN below two values.
type Summary struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Min    float64 `json:"min" yaml:"min"`
	Q1     float64 `json:"q1" yaml:"q1"`
	Median float64 `json:"median" yaml:"median"`
	Q3     float64 `json:"q3" yaml:"q3"`
	Max    float64 `json:"max" yaml:"max"`
}

// StatNames are the row labels of a StatsTable, in order.
var StatNames = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// MarshalJSON writes NaN statistics as null.
func (s Summary) MarshalJSON() ([]byte, error) {
	num := func(v float64) *float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	}
	return json.Marshal(struct {
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Std    *float64 `json:"std"`
		Min    *float64 `json:"min"`
		Q1     *float64 `json:"q1"`
		Median *float64 `json:"median"`
		Q3     *float64 `json:"q3"`
		Max    *float64 `json:"max"`
	}{s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.Q1), num(s.Median), num(s.Q3), num(s.Max)})
}

func (s Summary) row() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max}
}

// Describe computes the descriptive statistics of vals. Quartiles
// interpolate linearly between closest ranks.
func Describe(vals []float64) Summary {
	nan := math.NaN()
	s := Summary{Count: len(vals), Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
	if len(vals) == 0 {
		return s
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min, _ = stats.Min(sorted)
	s.Max, _ = stats.Max(sorted)
	s.Q1 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q3 = quantile(sorted, 0.75)
	return s
}

// StatsColumn is the summary of one metric within one dimension value.
type StatsColumn struct {
	Key     string       `json:"key" yaml:"key"`
	Metric  sales.Metric `json:"metric" yaml:"metric"`
	Summary Summary      `json:"summary" yaml:"summary"`
}

// Label renders the column header.
func (c StatsColumn) Label() string {
	return fmt.Sprintf("%s (%s)", safeVal(c.Key), c.Metric)
}

// StatsTable is a transposed describe table: statistics are rows and each
// (dimension value, metric) pair is a column.
type StatsTable struct {
	Dimension sales.Dimension `json:"dimension" yaml:"dimension"`
	Metrics   []sales.Metric  `json:"metrics" yaml:"metrics"`
	Columns   []StatsColumn   `json:"columns" yaml:"columns"`
}

// DescriptiveStats restricts t to the topN values of d by summed line
// total, groups by d and summarizes each metric per value. Columns follow
// the ranking, then metric order. Missing metric values are ignored.
func DescriptiveStats(t *sales.Table, d sales.Dimension, metrics []sales.Metric, topN int) *StatsTable {
	st := &StatsTable{Dimension: d, Metrics: metrics}
	top := TopNByValue(t, d, topN)
	if len(top) == 0 {
		return st
	}
	series := make(map[string]map[sales.Metric][]float64, len(top))
	for _, g := range top {
		series[g.Key] = map[sales.Metric][]float64{}
	}
	t.Each(func(r sales.Record) {
		bucket, ok := series[r.Value(d)]
		if !ok {
			return
		}
		for _, m := range metrics {
			if n := r.Metric(m); n.Valid {
				bucket[m] = append(bucket[m], n.Value)
			}
		}
	})
	for _, g := range top {
		for _, m := range metrics {
			st.Columns = append(st.Columns, StatsColumn{Key: g.Key, Metric: m, Summary: Describe(series[g.Key][m])})
		}
	}
	return st
}

// Empty reports whether the table has no columns.
func (s *StatsTable) Empty() bool { return s == nil || len(s.Columns) == 0 }

// Markdown renders a pipe table with statistics as rows and two-decimal cells.
func (s *StatsTable) Markdown() string {
	if s.Empty() {
		return ""
	}
	var b strings.Builder
	b.WriteString("|   |")
	for _, c := range s.Columns {
		b.WriteString(" ")
		b.WriteString(c.Label())
		b.WriteString(" |")
	}
	b.WriteString("\n|:--|")
	for range s.Columns {
		b.WriteString("--:|")
	}
	b.WriteString("\n")
	rows := make([][]float64, len(s.Columns))
	for i, c := range s.Columns {
		rows[i] = c.Summary.row()
	}
	for r, name := range StatNames {
		b.WriteString("| ")
		b.WriteString(name)
		b.WriteString(" |")
		for i := range s.Columns {
			b.WriteString(" ")
			b.WriteString(formatFloat(rows[i][r]))
			b.WriteString(" |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", v)
}

// JoinMarkdown concatenates rendered tables separated by a blank line,
// skipping empty ones.
func JoinMarkdown(tables ...*StatsTable) string {
	var parts []string
	for _, t := range tables {
		if md := t.Markdown(); md != "" {
			parts = append(parts, strings.TrimRight(md, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// quantile interpolates linearly over a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
