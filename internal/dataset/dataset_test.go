package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/salesdash/internal/dataset"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	rows := [][]any{
		{"Nome Vendedor", "nome_grupo", "Total Item", "Data Emissão", "Quantidade"},
		{"ANA", "G1", 100.5, 45352, 2},
		{"BRUNO", "G2", 50, 45383, 1},
		{"", "G2", 10, 45383, 1},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadDefaultWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), dataset.DefaultFile)
	writeWorkbook(t, path)

	l := dataset.NewLoader(path, 0)
	ds, err := l.Load(context.Background(), dataset.Source{})
	require.NoError(t, err)
	assert.Equal(t, dataset.DefaultFile, ds.Name)
	assert.Len(t, ds.ID, 32)
	assert.Equal(t, 2, ds.Table.Len())
	assert.Equal(t, 1, ds.Stats.RowsDropped)
	assert.Equal(t, []string{"Março/2024", "Abril/2024"}, ds.Table.Periods())

	again, err := l.Load(context.Background(), dataset.Source{Path: path})
	require.NoError(t, err)
	assert.Same(t, ds, again)
	assert.Equal(t, int64(1), l.CacheStats().Hits)
}

func TestLoadUploadBytes(t *testing.T) {
	l := dataset.NewLoader("", 0)
	data := []byte("Seller Name;group_name;Item Total;Issue Date\nANA;G1;1.000,00;01/03/2024\n")
	ds, err := l.Load(context.Background(), dataset.Source{Name: "vendas.csv", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "vendas.csv", ds.Name)
	require.Equal(t, 1, ds.Table.Len())
	assert.InDelta(t, 1000, ds.Table.Records()[0].LineTotalValue.Value, 1e-9)
}

func TestLoadMissingFile(t *testing.T) {
	l := dataset.NewLoader(filepath.Join(t.TempDir(), "absent.xlsx"), 0)
	ds, err := l.Load(context.Background(), dataset.Source{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dataset.ErrSourceUnavailable))
	require.NotNil(t, ds)
	assert.Equal(t, 0, ds.Table.Len())
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
	l := dataset.NewLoader(path, 0)
	ds, err := l.Load(context.Background(), dataset.Source{})
	assert.True(t, errors.Is(err, dataset.ErrSourceUnreadable))
	assert.Equal(t, 0, ds.Table.Len())
	assert.Equal(t, 0, l.CacheStats().Entries)
}

func TestLoadCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := dataset.NewLoader("", 0).Load(ctx, dataset.Source{})
	assert.True(t, errors.Is(err, dataset.ErrSourceUnavailable))
}

func TestActive(t *testing.T) {
	var a dataset.Active
	assert.Equal(t, 0, a.Get().Table.Len())
	ds := dataset.Empty("x")
	a.Set(ds)
	assert.Same(t, ds, a.Get())
}
