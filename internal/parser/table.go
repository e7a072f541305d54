package parser

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// RawTable is a worksheet as loaded from its source: one header row plus
// untyped string cells. Empty cells read back as "".
type RawTable struct {
	columns []string
	df      *dataframe.DataFrame
}

// NewRawTable builds a table from rows where rows[0] is the header.
// Short rows are padded and surplus cells beyond the header width are dropped.
// Fully blank rows are skipped.
func NewRawTable(rows [][]string) (*RawTable, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] == "" {
			header[i] = fmt.Sprintf("col_%d", i+1)
		}
	}
	if len(header) == 0 {
		return nil, ErrEmptySheet
	}

	records := make([][]string, 0, len(rows))
	records = append(records, header)
	for _, r := range rows[1:] {
		if blankRow(r) {
			continue
		}
		rec := make([]string, len(header))
		copy(rec, r)
		records = append(records, rec)
	}

	t := &RawTable{columns: header}
	if len(records) == 1 {
		return t, nil
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{""}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("load rows: %w", df.Err)
	}
	t.df = &df
	t.columns = df.Names()
	return t, nil
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Columns returns the header names in sheet order.
func (t *RawTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if t.df == nil {
		return 0
	}
	return t.df.Nrow()
}

// HasColumn reports whether name is a header of the table.
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// Column returns the cells of the named column.
func (t *RawTable) Column(name string) ([]string, bool) {
	if !t.HasColumn(name) {
		return nil, false
	}
	if t.df == nil {
		return []string{}, true
	}
	s := t.df.Col(name)
	out := make([]string, s.Len())
	for i := range out {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		out[i] = e.String()
	}
	return out, true
}
