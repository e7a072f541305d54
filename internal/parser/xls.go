package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/extrame/xls"
)

// maxXLSRows bounds legacy workbook reads.
const maxXLSRows = 1_000_000

// maxXLSCols is the BIFF8 column limit, scanned when a row carries no ROW record.
const maxXLSCols = 256

type xlsParser struct{}

func (xlsParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xls")
}

func (xlsParser) Parse(content []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("open xls: no worksheet found")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("open xls: no worksheet found")
	}
	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow) && len(rows) < maxXLSRows; i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			continue
		}
		width := row.LastCol()
		if width <= 0 {
			width = maxXLSCols
		}
		cells := make([]string, width)
		for j := range cells {
			cells[j] = row.Col(j)
		}
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// sheetRow returns row i or nil when the sheet has no such row.
// WorkSheet.Row dereferences missing rows, so the panic is turned into nil.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
