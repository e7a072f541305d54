package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/filter"
)

var (
	dashPeriods  []string
	dashSellers  []string
	dashExclude  bool
	dashInsights bool
	dashFormat   string
	dashOutput   string
	dashProvider string
	dashModel    string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [file]",
	Short: "Render the sales dashboard for a spreadsheet",
	Example: `  salesdash dashboard faturamento.xlsx
  salesdash dashboard vendas.csv --period "Março/2024" --seller ANA --seller BRUNO
  salesdash dashboard --seller ANA --exclude-sellers --insights
  salesdash dashboard vendas.xlsx --format json -o out/dashboard.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(dashFormat))
		switch format {
		case "", "markdown", "md", "json", "yaml":
		default:
			return fmt.Errorf("unsupported --format: %s (use markdown|json|yaml)", dashFormat)
		}
		ctx := cmd.Context()
		ds := loadDataset(ctx, cmd, newLoader(nil), resolveDataset(args))
		sel := filter.Selection{Periods: dashPeriods, Salespeople: dashSellers, ExcludeSalespeople: dashExclude}

		var sum dashboard.Summarizer
		if dashInsights {
			s := newSummarizer(dashProvider, dashModel, nil)
			if !s.Configured() {
				fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no model runtime configured; set SALESDASH_API_KEY or OPENAI_API_KEY")
			}
			sum = s
		}
		v := dashboard.Build(ctx, ds, sel, sum)

		var data []byte
		var err error
		switch format {
		case "json":
			data, err = v.JSON()
		case "yaml":
			data, err = v.YAML()
		default:
			data = []byte(v.Markdown())
		}
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		return writeOutput(cmd.OutOrStdout(), dashOutput, data, "dashboard")
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringSliceVar(&dashPeriods, "period", nil, "period label to include, e.g. 'Março/2024' (repeatable or comma-separated)")
	dashboardCmd.Flags().StringArrayVar(&dashSellers, "seller", nil, "salesperson to include (repeatable)")
	dashboardCmd.Flags().BoolVar(&dashExclude, "exclude-sellers", false, "keep every salesperson except the --seller values")
	dashboardCmd.Flags().BoolVar(&dashInsights, "insights", false, "ask the configured model for an analysis of the statistics")
	dashboardCmd.Flags().StringVar(&dashFormat, "format", "markdown", "output format: markdown|json|yaml")
	dashboardCmd.Flags().StringVarP(&dashOutput, "output", "o", "", "optional path to write the dashboard")
	dashboardCmd.Flags().StringVar(&dashProvider, "provider", "", "model runtime: openai|openrouter|ollama|gemini (overrides config)")
	dashboardCmd.Flags().StringVar(&dashModel, "model", "", "model name (overrides config)")
}
