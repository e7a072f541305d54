package sales

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ParseNumber parses a decimal leniently. It accepts "1.234,56" and
// "1,234.56" forms, an optional "R$" prefix and surrounding spaces.
// Infinities and NaN are rejected.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "R$")
	raw = strings.ReplaceAll(raw, "\u00A0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, false
	}
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	dec, thou := '.', ','
	switch {
	case cpos >= 0 && dpos >= 0:
		if cpos > dpos {
			dec, thou = ',', '.'
		}
	case cpos >= 0:
		// a lone comma is a decimal separator unless it repeats
		if strings.Count(raw, ",") == 1 {
			dec, thou = ',', '.'
		}
	case dpos >= 0:
		if strings.Count(raw, ".") > 1 {
			dec, thou = ',', '.'
		}
	}
	raw = strings.ReplaceAll(raw, string(thou), "")
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	"2006-01-02 15:04", "2006/01/02", "02/01/2006", "02/01/2006 15:04:05",
	"02/01/2006 15:04", "2/1/2006", "02-01-2006", "02.01.2006",
}

// maxExcelSerial is 9999-12-31.
const maxExcelSerial = 2958465

// ParseDate parses a calendar date leniently. Day-first slash forms and
// Excel serial numbers are accepted. The time of day is discarded.
func ParseDate(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return dateOnly(t), true
		}
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 1 && f <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(f, false)
		if err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
