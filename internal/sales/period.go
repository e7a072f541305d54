package sales

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthNames are the Portuguese month names indexed by time.Month-1.
var MonthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName returns the Portuguese name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return MonthNames[m-1]
}

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// Label renders the period as "<Month>/<year>", e.g. "Março/2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s/%d", MonthName(p.Month), p.Year)
}

// Before reports whether p is earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// ParsePeriod parses a label produced by Label.
func ParsePeriod(label string) (Period, error) {
	name, year, ok := strings.Cut(strings.TrimSpace(label), "/")
	if !ok {
		return Period{}, fmt.Errorf("parse period %q: missing '/'", label)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", label, err)
	}
	for i, m := range MonthNames {
		if strings.EqualFold(m, name) {
			return Period{Year: y, Month: time.Month(i + 1)}, nil
		}
	}
	return Period{}, fmt.Errorf("parse period %q: unknown month %q", label, name)
}
