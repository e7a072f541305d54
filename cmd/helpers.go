package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/ai"
	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/insight"
	"github.com/KaramelBytes/salesdash/internal/metrics"
	"github.com/KaramelBytes/salesdash/internal/utils"
)

// resolveDataset picks the spreadsheet path: the argument when given,
// otherwise the configured default found in the working directory or a parent.
func resolveDataset(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	name := activeConfig().DefaultDataset
	if name == "" {
		name = dataset.DefaultFile
	}
	if p, err := utils.FindUpward("", name); err == nil {
		return p
	}
	return name
}

func newLoader(rec *metrics.Recorder) *dataset.Loader {
	c := activeConfig()
	l := dataset.NewLoader(c.DefaultDataset, c.CacheMaxEntries)
	l.Log = log
	l.Metrics = rec
	return l
}

// loadDataset reads path and prints the CLI warnings. A failed load still
// returns an empty dataset so commands can report the empty state.
func loadDataset(ctx context.Context, cmd *cobra.Command, l *dataset.Loader, path string) *dataset.Dataset {
	ds, err := l.Load(ctx, dataset.Source{Path: path})
	errOut := cmd.ErrOrStderr()
	if err != nil {
		switch {
		case errors.Is(err, dataset.ErrSourceUnavailable):
			fmt.Fprintf(errOut, "⚠ Warning: dataset not found: %s (%v)\n", path, err)
		case errors.Is(err, dataset.ErrSourceUnreadable):
			fmt.Fprintf(errOut, "⚠ Warning: dataset could not be read: %s (%v)\n", path, err)
		default:
			fmt.Fprintf(errOut, "⚠ Warning: %v\n", err)
		}
		return ds
	}
	if missing := ds.Stats.MissingColumns(); len(missing) > 0 {
		fmt.Fprintf(errOut, "⚠ Warning: missing columns: %s (their rows are dropped)\n", strings.Join(missing, ", "))
	}
	if ds.Stats.RowsDropped > 0 {
		fmt.Fprintf(errOut, "⚠ Warning: dropped %d of %d rows missing a mandatory field\n", ds.Stats.RowsDropped, ds.Stats.RowsRead)
	}
	return ds
}

// newSummarizer builds the insight summarizer from config. provider and
// model override config when non-empty. A runtime that cannot be built
// leaves the summarizer unconfigured; it then answers with the
// configuration diagnostic.
func newSummarizer(provider, model string, rec *metrics.Recorder) *insight.Summarizer {
	c := activeConfig()
	if provider == "" {
		provider = c.Provider
	}
	if model == "" {
		model = c.Model
	}
	rt, err := ai.NewRuntime(provider, c.RuntimeConfig())
	if err != nil {
		if !errors.Is(err, ai.ErrMissingAPIKey) {
			log.Warn().Err(err).Str("provider", provider).Msg("insight runtime unavailable")
		}
		rt = nil
	}
	s := insight.New(rt, model, c.CacheMaxEntries)
	s.Temperature = c.Temperature
	s.MaxTokens = c.MaxTokens
	s.Log = log
	s.Metrics = rec
	return s
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte, what string) error {
	if path == "" {
		_, err := w.Write(data)
		if err == nil && len(data) > 0 && data[len(data)-1] != '\n' {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir output dir: %w", err)
		}
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(w, "✓ Wrote %s to %s\n", what, path)
	return nil
}
