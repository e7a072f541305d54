package filter

import "github.com/KaramelBytes/salesdash/internal/sales"

// Selection restricts a table by period and salesperson. An empty set places
// no restriction on that field.
type Selection struct {
	Periods     []string `json:"periods,omitempty" yaml:"periods,omitempty"`
	Salespeople []string `json:"salespeople,omitempty" yaml:"salespeople,omitempty"`
	// ExcludeSalespeople keeps every salesperson NOT in Salespeople.
	ExcludeSalespeople bool `json:"exclude_salespeople,omitempty" yaml:"exclude_salespeople,omitempty"`
}

// Empty reports whether the selection is the identity filter.
func (s Selection) Empty() bool {
	return len(s.Periods) == 0 && len(s.Salespeople) == 0
}

// Apply returns a new table with the records of t that satisfy sel.
// t is never modified.
func Apply(t *sales.Table, sel Selection) *sales.Table {
	periods := set(sel.Periods)
	people := set(sel.Salespeople)
	return t.Where(func(r sales.Record) bool {
		if len(periods) > 0 && !periods[r.PeriodLabel] {
			return false
		}
		if len(people) > 0 {
			in := people[r.SalespersonName]
			if in == sel.ExcludeSalespeople {
				return false
			}
		}
		return true
	})
}

// Choices are the values a user may pick from.
type Choices struct {
	Periods     []string `json:"periods" yaml:"periods"`
	Salespeople []string `json:"salespeople" yaml:"salespeople"`
}

// Options lists the selectable periods of t in chronological order and the
// salespeople present once the period selection is applied, so the
// salesperson list narrows as periods are picked.
func Options(t *sales.Table, sel Selection) Choices {
	byPeriod := Apply(t, Selection{Periods: sel.Periods})
	return Choices{
		Periods:     nonNil(t.Periods()),
		Salespeople: nonNil(byPeriod.Salespeople()),
	}
}

func set(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
