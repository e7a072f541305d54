package sales_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/salesdash/internal/parser"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

func raw(t *testing.T, rows ...[]string) *parser.RawTable {
	t.Helper()
	tbl, err := parser.NewRawTable(rows)
	require.NoError(t, err)
	return tbl
}

func TestNormalizePortugueseHeaders(t *testing.T) {
	tbl, st := sales.Normalize(raw(t,
		[]string{"Nome Vendedor", "nome_grupo", "Total Item", "Data Emissão", "Quantidade", "Peso Bruto", "Filial"},
		[]string{"ANA", "G1", "1.234,56", "2024-03-15", "2", "10,5", "SP"},
		[]string{" BRUNO ", "G2", "100", "15/04/2024", "", "x", "RJ"},
	))
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, 0, st.RowsDropped)
	assert.Equal(t, []string{"Filial"}, st.Unmapped)
	assert.Empty(t, st.MissingColumns())

	recs := tbl.Records()
	assert.Equal(t, "ANA", recs[0].SalespersonName)
	assert.InDelta(t, 1234.56, recs[0].LineTotalValue.Value, 1e-9)
	assert.Equal(t, sales.Some(2), recs[0].Quantity)
	assert.Equal(t, "Março", recs[0].MonthName)
	assert.Equal(t, "Março/2024", recs[0].PeriodLabel)
	assert.Equal(t, "SP", recs[0].Extra["Filial"])

	assert.Equal(t, "BRUNO", recs[1].SalespersonName)
	assert.False(t, recs[1].Quantity.Valid)
	assert.False(t, recs[1].GrossWeight.Valid)
	assert.Equal(t, 1, st.CoercionFailures[sales.ColGrossWeight])
	assert.Equal(t, "Abril/2024", recs[1].PeriodLabel)
}

func TestNormalizeDropsRowsMissingMandatoryFields(t *testing.T) {
	tbl, st := sales.Normalize(raw(t,
		[]string{"Seller Name", "group_name", "Item Total", "Issue Date"},
		[]string{"ANA", "G1", "10", "2024-03-01"},
		[]string{"ANA", "G1", "10", "not a date"},
		[]string{"ANA", "   ", "10", "2024-03-01"},
		[]string{"", "G1", "abc", "2024-03-01"},
	))
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, 4, st.RowsRead)
	assert.Equal(t, 3, st.RowsDropped)
	assert.Equal(t, 1, st.Missing[sales.ColIssueDate])
	assert.Equal(t, 1, st.Missing[sales.ColProductGroup])
	assert.Equal(t, 1, st.Missing[sales.ColSalesperson])
	assert.Equal(t, 1, st.Missing[sales.ColLineTotal])
	for _, r := range tbl.Records() {
		assert.NotEmpty(t, r.PeriodLabel)
	}
}

func TestNormalizeDropsNonFiniteTotals(t *testing.T) {
	tbl, st := sales.Normalize(raw(t,
		[]string{"Nome Vendedor", "nome_grupo", "Total Item", "Data Emissão", "Peso Bruto"},
		[]string{"ANA", "G1", "10", "2024-03-01", "inf"},
		[]string{"BRUNO", "G2", "inf", "2024-03-01", "inf"},
		[]string{"CARLA", "G2", "-Infinity", "2024-03-01", "1"},
	))
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, 2, st.RowsDropped)
	assert.Equal(t, 2, st.Missing[sales.ColLineTotal])
	assert.Equal(t, 2, st.CoercionFailures[sales.ColLineTotal])
	assert.False(t, tbl.Records()[0].GrossWeight.Valid)
}

func TestNormalizeCanonicalStableAcrossSources(t *testing.T) {
	a, _ := sales.Normalize(raw(t,
		[]string{"Seller Name", "group_name", "Item Total", "Issue Date"},
		[]string{"ANA", "G1", "10", "2024-03-01"},
	))
	b, _ := sales.Normalize(raw(t,
		[]string{"NOME VENDEDOR", "Nome Grupo", "valor_total_item", "data emissao"},
		[]string{"ANA", "G1", "10", "2024-03-01"},
	))
	assert.Equal(t, a.Records(), b.Records())
}

func TestNormalizeMissingColumns(t *testing.T) {
	tbl, st := sales.Normalize(raw(t,
		[]string{"Seller Name", "Item Total"},
		[]string{"ANA", "10"},
	))
	assert.Equal(t, 0, tbl.Len())
	assert.ElementsMatch(t, []string{sales.ColIssueDate, sales.ColProductGroup}, st.MissingColumns())
}

func TestNormalizeNil(t *testing.T) {
	tbl, st := sales.Normalize(nil)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 0, st.RowsRead)
}

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"10":         10,
		"1.234,56":   1234.56,
		"1,234.56":   1234.56,
		"R$ 99,90":   99.9,
		"1.234.567":  1234567,
		"-5,5":       -5.5,
		"2.5e3":      2500,
		" 7 ":        7,
		"1\u00A0000": 1000,
	}
	for in, want := range cases {
		got, ok := sales.ParseNumber(in)
		if assert.True(t, ok, in) {
			assert.InDelta(t, want, got, 1e-9, in)
		}
	}
	for _, in := range []string{"", "abc", "1,2,3,x", "inf", "-Infinity", "+Inf", "NaN"} {
		_, ok := sales.ParseNumber(in)
		assert.False(t, ok, in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-15", "15/03/2024", "2024-03-15 13:45:00", "2024-03-15T08:00:00Z", "45366"} {
		got, ok := sales.ParseDate(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, want, got, in)
		}
	}
	_, ok := sales.ParseDate("31/02/2024")
	assert.False(t, ok)
}

func TestTablePeriodsAndSalespeople(t *testing.T) {
	tbl, _ := sales.Normalize(raw(t,
		[]string{"Seller Name", "group_name", "Item Total", "Issue Date"},
		[]string{"BRUNO", "G1", "1", "2024-04-02"},
		[]string{"ANA", "G1", "1", "2023-12-31"},
		[]string{"BRUNO", "G1", "1", "2024-03-01"},
		[]string{"CARLA", "G1", "1", "2024-04-09"},
	))
	assert.Equal(t, []string{"Dezembro/2023", "Março/2024", "Abril/2024"}, tbl.Periods())
	assert.Equal(t, []string{"BRUNO", "ANA", "CARLA"}, tbl.Salespeople())
}

func TestRecordValueUnspecified(t *testing.T) {
	r := sales.Record{ProductGroup: "G1"}
	assert.Equal(t, "G1", r.Value(sales.DimProductGroup))
	assert.Equal(t, sales.Unspecified, r.Value(sales.DimProductFamily))
}

func TestParsePeriod(t *testing.T) {
	p, err := sales.ParsePeriod("Março/2024")
	require.NoError(t, err)
	assert.Equal(t, sales.Period{Year: 2024, Month: time.March}, p)
	assert.Equal(t, "Março/2024", p.Label())

	_, err = sales.ParsePeriod("Foo/2024")
	assert.Error(t, err)
}

func TestParseDimension(t *testing.T) {
	d, ok := sales.ParseDimension("Nome Vendedor")
	assert.True(t, ok)
	assert.Equal(t, sales.DimSalesperson, d)
	d, ok = sales.ParseDimension("period_label")
	assert.True(t, ok)
	assert.Equal(t, sales.DimPeriod, d)
	_, ok = sales.ParseDimension("Total Item")
	assert.False(t, ok)
}
