package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/logger"
	"github.com/KaramelBytes/salesdash/internal/metrics"
	"github.com/KaramelBytes/salesdash/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Serve the dashboard over HTTP",
	Long: `Starts the HTTP dashboard. The spreadsheet given (or the configured
default) is loaded at startup; another one can be uploaded from the page,
replacing it for every client.`,
	Example: `  salesdash serve faturamento.xlsx --addr :8080`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := activeConfig()
		level := c.LogLevel
		if debug {
			level = "debug"
		}
		log = logger.NewJSON(os.Stderr, level)

		rec, err := metrics.New()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loader := newLoader(rec)
		var active dataset.Active
		active.Set(loadDataset(ctx, cmd, loader, resolveDataset(args)))

		srv := server.New(loader, &active, newSummarizer("", "", rec), rec, log)
		srv.MaxUploadBytes = c.MaxUploadBytes()

		addr := serveAddr
		if addr == "" {
			addr = c.ListenAddr
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s on %s\n", active.Get().Name, addr)
		// Insight calls can outlast the client timeout; leave room for one.
		return srv.Run(ctx, addr, c.HTTPTimeout()+30*time.Second)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
}

