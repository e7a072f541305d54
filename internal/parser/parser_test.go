package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/salesdash/internal/parser"
)

func writeXLSX(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestParseFileXLSX(t *testing.T) {
	p := filepath.Join(t.TempDir(), "faturamento.xlsx")
	writeXLSX(t, p, [][]any{
		{"Nome Vendedor", "Total Item", "Data Emissão"},
		{"ANA", 10.5, 45352},
		{"BRUNO", 20, nil},
	})

	tbl, err := parser.ParseFile(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome Vendedor", "Total Item", "Data Emissão"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())

	sellers, ok := tbl.Column("Nome Vendedor")
	require.True(t, ok)
	assert.Equal(t, []string{"ANA", "BRUNO"}, sellers)

	dates, _ := tbl.Column("Data Emissão")
	assert.Equal(t, []string{"45352", ""}, dates)
}

func TestParseBytesCSVSemicolon(t *testing.T) {
	data := []byte("\xef\xbb\xbfNome Vendedor;Total Item\nANA;1.234,56\n;\nBRUNO\n")
	tbl, err := parser.ParseBytes("export.csv", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome Vendedor", "Total Item"}, tbl.Columns())
	// blank row dropped, short row padded
	require.Equal(t, 2, tbl.Len())
	totals, _ := tbl.Column("Total Item")
	assert.Equal(t, []string{"1.234,56", ""}, totals)
}

func TestParseBytesHeaderOnly(t *testing.T) {
	tbl, err := parser.ParseBytes("a.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	col, ok := tbl.Column("b")
	assert.True(t, ok)
	assert.Empty(t, col)
}

func TestParseBytesUnsupported(t *testing.T) {
	_, err := parser.ParseBytes("notes.txt", []byte("hello"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, parser.ErrUnsupported))
}

func TestParseBytesEmpty(t *testing.T) {
	_, err := parser.ParseBytes("a.csv", nil)
	assert.True(t, errors.Is(err, parser.ErrEmptySheet))
}

func TestParseFileMissing(t *testing.T) {
	_, err := parser.ParseFile(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRawTableBlankHeader(t *testing.T) {
	tbl, err := parser.NewRawTable([][]string{{"A", "B", ""}, {"1", "2", "3"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "col_3"}, tbl.Columns())
	vals, ok := tbl.Column("col_3")
	require.True(t, ok)
	assert.Equal(t, []string{"3"}, vals)
}

func TestParseFileXLSFirstSheetOnly(t *testing.T) {
	// two_sheets.xls: "Vendas" holds ANA and BRUNO, "Resumo" repeats the
	// header with a CARLA row.
	tbl, err := parser.ParseFile(filepath.Join("testdata", "two_sheets.xls"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Nome Vendedor", "nome_grupo", "Total Item", "Data Emissão"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())

	sellers, _ := tbl.Column("Nome Vendedor")
	assert.Equal(t, []string{"ANA", "BRUNO"}, sellers)
	totals, _ := tbl.Column("Total Item")
	assert.Equal(t, []string{"100.5", "50"}, totals)
	dates, _ := tbl.Column("Data Emissão")
	assert.Equal(t, []string{"45352", "45383"}, dates)
}

func TestSupported(t *testing.T) {
	assert.True(t, parser.Supported("vendas.XLSX"))
	assert.True(t, parser.Supported("a.xls"))
	assert.True(t, parser.Supported("a.csv"))
	assert.False(t, parser.Supported("a.pdf"))
}
