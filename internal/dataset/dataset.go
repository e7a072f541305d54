package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/salesdash/internal/cache"
	"github.com/KaramelBytes/salesdash/internal/metrics"
	"github.com/KaramelBytes/salesdash/internal/parser"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

// DefaultFile is the workbook read when no source is given.
const DefaultFile = "faturamento.xlsx"

var (
	// ErrSourceUnavailable means the source could not be located or opened.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrSourceUnreadable means the source was read but could not be parsed.
	ErrSourceUnreadable = errors.New("source unreadable")
)

// Source names the spreadsheet to load. Data, when set, takes precedence
// over Path and Name supplies its filename (for format detection).
type Source struct {
	Path string
	Name string
	Data []byte
}

// Dataset is a normalized sales table and its provenance.
type Dataset struct {
	ID       string               `json:"id" yaml:"id"`
	Name     string               `json:"name" yaml:"name"`
	LoadedAt time.Time            `json:"loaded_at" yaml:"loaded_at"`
	Stats    sales.NormalizeStats `json:"stats" yaml:"stats"`
	Raw      *parser.RawTable     `json:"-" yaml:"-"`
	Table    *sales.Table         `json:"-" yaml:"-"`
}

// Empty returns a dataset with no rows.
func Empty(name string) *Dataset {
	return &Dataset{Name: name, Table: sales.NewTable(nil)}
}

// Loader reads and normalizes spreadsheets, memoizing by content.
type Loader struct {
	DefaultPath string
	Log         zerolog.Logger
	Metrics     *metrics.Recorder

	memo *cache.Memo[*Dataset]
}

// NewLoader returns a loader that keeps up to maxEntries normalized
// datasets (0 = unbounded).
func NewLoader(defaultPath string, maxEntries int) *Loader {
	if defaultPath == "" {
		defaultPath = DefaultFile
	}
	return &Loader{DefaultPath: defaultPath, Log: zerolog.Nop(), memo: cache.New[*Dataset](maxEntries)}
}

// CacheStats reports memo usage.
func (l *Loader) CacheStats() cache.Stats { return l.memo.Stats() }

// Load resolves src, parses its first worksheet and normalizes it. On
// failure it returns an empty dataset together with an error wrapping
// ErrSourceUnavailable or ErrSourceUnreadable.
func (l *Loader) Load(ctx context.Context, src Source) (*Dataset, error) {
	name, data, err := l.read(ctx, src)
	if err != nil {
		l.Metrics.DatasetLoaded("unavailable", 0, 0, 0)
		l.Log.Warn().Err(err).Str("source", name).Msg("dataset unavailable")
		return Empty(name), err
	}

	key := cache.KeyOf(strings.ToLower(filepath.Ext(name)), cache.KeyOfBytes(data).String())
	parsed := false
	ds, err := l.memo.Do(key, func() (*Dataset, error) {
		parsed = true
		raw, err := parser.ParseBytes(name, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, name, err)
		}
		tbl, st := sales.Normalize(raw)
		return &Dataset{
			ID:       key.String(),
			Name:     name,
			LoadedAt: time.Now(),
			Stats:    st,
			Raw:      raw,
			Table:    tbl,
		}, nil
	})
	if err != nil {
		l.Metrics.DatasetLoaded("unreadable", 0, 0, 0)
		l.Log.Warn().Err(err).Str("source", name).Msg("dataset unreadable")
		return Empty(name), err
	}
	if !parsed {
		l.Metrics.DatasetLoaded("cached", 0, 0, 0)
		l.Log.Debug().Str("source", name).Str("id", ds.ID).Msg("dataset cache hit")
		return ds, nil
	}
	l.Metrics.DatasetLoaded("ok", ds.Stats.RowsRead, ds.Stats.RowsKept, ds.Stats.RowsDropped)
	ev := l.Log.Info().
		Str("source", name).
		Str("id", ds.ID).
		Int("rows_read", ds.Stats.RowsRead).
		Int("rows_kept", ds.Stats.RowsKept).
		Int("rows_dropped", ds.Stats.RowsDropped)
	if missing := ds.Stats.MissingColumns(); len(missing) > 0 {
		ev = ev.Strs("missing_columns", missing)
	}
	ev.Msg("dataset loaded")
	return ds, nil
}

func (l *Loader) read(ctx context.Context, src Source) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return src.Name, nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if src.Data != nil {
		name := src.Name
		if name == "" {
			name = "upload" + filepath.Ext(src.Path)
		}
		return name, src.Data, nil
	}
	path := src.Path
	if path == "" {
		path = l.DefaultPath
	}
	name := src.Name
	if name == "" {
		name = filepath.Base(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return name, nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return name, data, nil
}

// Active holds the dataset currently served. Readers never block writers.
type Active struct {
	p atomic.Pointer[Dataset]
}

// Get returns the active dataset, or an empty one if none was set.
func (a *Active) Get() *Dataset {
	if ds := a.p.Load(); ds != nil {
		return ds
	}
	return Empty("")
}

// Set replaces the active dataset.
func (a *Active) Set(ds *Dataset) { a.p.Store(ds) }
