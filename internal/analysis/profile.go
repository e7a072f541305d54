package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/salesdash/internal/parser"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

// Options controls raw sheet profiling.
type Options struct {
	// MaxRows limits rows profiled; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for sheet profiling.
func DefaultOptions() Options {
	return Options{
		MaxRows:          100000,
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly profile of a raw worksheet.
type Report struct {
	Name      string          `json:"name" yaml:"name"`
	Rows      int             `json:"rows" yaml:"rows"`
	Processed int             `json:"processed" yaml:"processed"`
	Cols      []ColumnSummary `json:"columns" yaml:"columns"`
	Samples   [][]string      `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings  []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name string `json:"name" yaml:"name"`
	// Canonical is the normalized name the column maps to, if any.
	Canonical string `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Kind      string `json:"kind" yaml:"kind"` // numeric|datetime|categorical|text|unknown
	NonNull   int    `json:"non_null" yaml:"non_null"`
	Missing   int    `json:"missing" yaml:"missing"`
	Unique    int    `json:"unique,omitempty" yaml:"unique,omitempty"`
	// Numeric stats
	Min  float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std  float64 `json:"std,omitempty" yaml:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty" yaml:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty" yaml:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty" yaml:"outlier_threshold,omitempty"`
	// Categorical top values
	TopValues    []CategoryCount `json:"top_values,omitempty" yaml:"top_values,omitempty"`
	ExampleTexts []string        `json:"examples,omitempty" yaml:"examples,omitempty"`
}

type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Profile infers a kind per column of raw and summarizes it. Dates are
// checked before numbers only for columns that map to issue_date, since
// Excel serial dates are also valid numbers.
func Profile(name string, raw *parser.RawTable, opt Options) *Report {
	rep := &Report{Name: name}
	if raw == nil {
		return rep
	}
	rep.Rows = raw.Len()
	rep.Processed = rep.Rows
	if opt.MaxRows > 0 && rep.Processed > opt.MaxRows {
		rep.Processed = opt.MaxRows
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", rep.Processed, rep.Rows))
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	headers := raw.Columns()
	cells := make([][]string, len(headers))
	for i, h := range headers {
		cells[i], _ = raw.Column(h)
	}
	for r := 0; r < rep.Processed && r < sampleRows; r++ {
		row := make([]string, len(headers))
		for c := range headers {
			row[c] = cells[c][r]
		}
		rep.Samples = append(rep.Samples, row)
	}

	for i, h := range headers {
		s := ColumnSummary{Name: h}
		canon, _ := sales.Canonical(h)
		s.Canonical = canon
		dateFirst := canon == sales.ColIssueDate

		var nums []float64
		var dtCnt, txtCnt int
		cats := map[string]int{}
		for r := 0; r < rep.Processed; r++ {
			v := strings.TrimSpace(cells[i][r])
			if v == "" {
				s.Missing++
				continue
			}
			s.NonNull++
			if dateFirst {
				if _, ok := sales.ParseDate(v); ok {
					dtCnt++
					continue
				}
			}
			if x, ok := sales.ParseNumber(v); ok {
				nums = append(nums, x)
				continue
			}
			if _, ok := sales.ParseDate(v); ok {
				dtCnt++
				continue
			}
			txtCnt++
			if len(cats) <= 10000 && len(v) <= 64 {
				cats[v]++
			}
			if len(s.ExampleTexts) < 3 {
				s.ExampleTexts = append(s.ExampleTexts, v)
			}
		}

		s.Kind = "unknown"
		switch {
		case len(nums) > 0 && len(nums) >= dtCnt && len(nums) >= txtCnt:
			s.Kind = "numeric"
			s.ExampleTexts = nil
			d := Describe(nums)
			s.Min, s.Max, s.Mean = d.Min, d.Max, d.Mean
			if !math.IsNaN(d.Std) {
				s.Std = d.Std
			}
			if opt.Outliers && len(nums) >= 8 {
				s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = robustOutliers(nums, opt.OutlierThreshold)
			}
		case dtCnt > 0 && dtCnt >= txtCnt:
			s.Kind = "datetime"
			s.ExampleTexts = nil
		case len(cats) > 0:
			s.Kind = "categorical"
			s.ExampleTexts = nil
			tops := make([]CategoryCount, 0, len(cats))
			for k, v := range cats {
				tops = append(tops, CategoryCount{Value: k, Count: v})
			}
			sort.Slice(tops, func(i, j int) bool {
				if tops[i].Count == tops[j].Count {
					return tops[i].Value < tops[j].Value
				}
				return tops[i].Count > tops[j].Count
			})
			if len(tops) > 8 {
				tops = tops[:8]
			}
			s.TopValues = tops
			s.Unique = len(cats)
		case txtCnt > 0:
			s.Kind = "text"
		}
		rep.Cols = append(rep.Cols, s)
	}
	return rep
}

func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ, threshold float64) {
	if thr <= 0 {
		thr = 3.5
	}
	median, mad := medianMAD(vals)
	if mad > 0 {
		for _, v := range vals {
			az := math.Abs(0.6745 * (v - median) / mad)
			if az > thr {
				count++
			}
			if az > maxAbsZ {
				maxAbsZ = az
			}
		}
	}
	return count, maxAbsZ, thr
}

// Markdown renders a compact report suitable for prompts or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Rows > 0 {
		if r.Processed > 0 && r.Processed < r.Rows {
			b.WriteString(fmt.Sprintf("Rows: ~%d (processed %d)\n", r.Rows, r.Processed))
		} else {
			b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
		}
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		name := safeName(c.Name)
		if c.Canonical != "" && c.Canonical != c.Name {
			name = fmt.Sprintf("%s -> %s", name, c.Canonical)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", name, c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case "text":
			if len(c.ExampleTexts) > 0 {
				b.WriteString("; e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}
