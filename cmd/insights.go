package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/ai"
	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/filter"
	"github.com/KaramelBytes/salesdash/internal/insight"
	"github.com/KaramelBytes/salesdash/internal/utils"
)

var (
	insPeriods     []string
	insSellers     []string
	insExclude     bool
	insInstruction string
	insProvider    string
	insModel       string
	insDryRun      bool
	insOutput      string
	insSplit       bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights [file]",
	Short: "Ask the configured model to analyze the descriptive statistics",
	Example: `  salesdash insights faturamento.xlsx
  salesdash insights --period "Abril/2024" --provider ollama --model gpt-oss:20b
  salesdash insights --instruction "Compare os vendedores" --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		ds := loadDataset(ctx, cmd, newLoader(nil), resolveDataset(args))
		sel := filter.Selection{Periods: insPeriods, Salespeople: insSellers, ExcludeSalespeople: insExclude}
		v := dashboard.Build(ctx, ds, sel, nil)
		if v.Empty() {
			fmt.Fprintln(out, dashboard.EmptyNotice)
			return nil
		}
		instruction := insInstruction
		if instruction == "" && insSplit {
			instruction = insight.DashboardInstruction
		}

		model := insModel
		if model == "" {
			model = activeConfig().Model
		}
		if insDryRun {
			msgs := insight.Messages(v.StatsText, instruction)
			parts := make(map[string]string, len(msgs))
			var b strings.Builder
			for _, m := range msgs {
				parts[m.Role] += m.Content
				fmt.Fprintf(&b, "### %s\n\n%s\n\n", m.Role, m.Content)
			}
			counts, prompt := utils.TokenBreakdown(parts)
			for _, c := range counts {
				fmt.Fprintf(errOut, "• %s: ~%d tokens\n", c.Label, c.Tokens)
			}
			fmt.Fprintf(errOut, "• total prompt: ~%d tokens\n", prompt)
			if info, ok := ai.LookupModel(model); ok {
				if info.ContextTokens > 0 && prompt > info.ContextTokens {
					fmt.Fprintf(errOut, "⚠ Warning: prompt (~%d tokens) exceeds %s context window (%d)\n", prompt, model, info.ContextTokens)
				}
				if usd, ok := ai.EstimateCostUSD(model, prompt, activeConfig().MaxTokens); ok {
					fmt.Fprintf(errOut, "• estimated cost: $%.4f\n", usd)
				}
			}
			return writeOutput(out, insOutput, []byte(b.String()), "prompt")
		}

		s := newSummarizer(insProvider, model, nil)
		text := s.Summarize(ctx, v.StatsText, instruction)
		if insSplit {
			sec := insight.SplitSections(text)
			var b strings.Builder
			fmt.Fprintf(&b, "## Produtos\n\n%s\n\n## Vendedores\n\n%s\n", sec.Product, sec.Person)
			if sec.Other != "" {
				fmt.Fprintf(&b, "\n%s\n", sec.Other)
			}
			text = b.String()
		}
		return writeOutput(out, insOutput, []byte(text), "insights")
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().StringSliceVar(&insPeriods, "period", nil, "period label to include (repeatable or comma-separated)")
	insightsCmd.Flags().StringArrayVar(&insSellers, "seller", nil, "salesperson to include (repeatable)")
	insightsCmd.Flags().BoolVar(&insExclude, "exclude-sellers", false, "keep every salesperson except the --seller values")
	insightsCmd.Flags().StringVar(&insInstruction, "instruction", "", "analysis instruction sent with the statistics")
	insightsCmd.Flags().BoolVar(&insSplit, "sections", false, "ask for product and salesperson blocks and print them separately")
	insightsCmd.Flags().StringVar(&insProvider, "provider", "", "model runtime: openai|openrouter|ollama|gemini (overrides config)")
	insightsCmd.Flags().StringVar(&insModel, "model", "", "model name (overrides config)")
	insightsCmd.Flags().BoolVar(&insDryRun, "dry-run", false, "print the prompt and token estimate without calling the model")
	insightsCmd.Flags().StringVarP(&insOutput, "output", "o", "", "optional path to write the result")
}
