package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/analysis"
	"github.com/KaramelBytes/salesdash/internal/filter"
	"github.com/KaramelBytes/salesdash/internal/sales"
	"github.com/KaramelBytes/salesdash/internal/utils"
)

var (
	descBy       string
	descMetrics  []string
	descTop      int
	descPeriods  []string
	descSchema   bool
	descJSON     bool
	descOutput   string
	descSampleN  int
	descMaxRows  int
	descOutliers bool
)

var describeCmd = &cobra.Command{
	Use:   "describe [file]",
	Short: "Print descriptive statistics per dimension value",
	Long: `Groups the normalized sheet by a dimension, keeps the top values by line
total and prints count, mean, std, min, quartiles and max for each metric.
With --schema the raw first worksheet is profiled instead (inferred column
types, missing values, robust outliers).`,
	Example: `  salesdash describe faturamento.xlsx --by salesperson_name --top 3
  salesdash describe --by product_group --metrics line_total_value,gross_weight
  salesdash describe vendas.csv --schema`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds := loadDataset(cmd.Context(), cmd, newLoader(nil), resolveDataset(args))
		out := cmd.OutOrStdout()

		if descSchema {
			if ds.Raw == nil {
				return fmt.Errorf("no worksheet to profile")
			}
			opt := analysis.DefaultOptions()
			if cmd.Flags().Changed("sample-rows") {
				opt.SampleRows = descSampleN
			}
			if cmd.Flags().Changed("max-rows") {
				opt.MaxRows = descMaxRows
			}
			if cmd.Flags().Changed("outliers") {
				opt.Outliers = descOutliers
			}
			rep := analysis.Profile(ds.Name, ds.Raw, opt)
			if descJSON {
				b, err := utils.PrettyJSON(rep)
				if err != nil {
					return err
				}
				return writeOutput(out, descOutput, b, "profile")
			}
			return writeOutput(out, descOutput, []byte(rep.Markdown()), "profile")
		}

		dim, ok := sales.ParseDimension(descBy)
		if !ok {
			return fmt.Errorf("unknown dimension: %s", descBy)
		}
		metrics := make([]sales.Metric, 0, len(descMetrics))
		for _, s := range descMetrics {
			m, ok := sales.ParseMetric(strings.TrimSpace(s))
			if !ok {
				return fmt.Errorf("unknown metric: %s", s)
			}
			metrics = append(metrics, m)
		}
		if descTop <= 0 {
			return fmt.Errorf("--top must be positive")
		}
		t := filter.Apply(ds.Table, filter.Selection{Periods: descPeriods})
		st := analysis.DescriptiveStats(t, dim, metrics, descTop)
		if descJSON {
			b, err := utils.PrettyJSON(st)
			if err != nil {
				return err
			}
			return writeOutput(out, descOutput, b, "statistics")
		}
		if st.Empty() {
			fmt.Fprintln(cmd.ErrOrStderr(), "⚠ Warning: no rows to describe")
			return nil
		}
		return writeOutput(out, descOutput, []byte(st.Markdown()), "statistics")
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVar(&descBy, "by", string(sales.DimSalesperson), "dimension to group by (canonical or source column name)")
	describeCmd.Flags().StringSliceVar(&descMetrics, "metrics", []string{string(sales.MetricLineTotal), string(sales.MetricQuantity)}, "metrics to summarize")
	describeCmd.Flags().IntVar(&descTop, "top", 5, "number of dimension values kept, ranked by line total")
	describeCmd.Flags().StringSliceVar(&descPeriods, "period", nil, "restrict to these period labels")
	describeCmd.Flags().BoolVar(&descSchema, "schema", false, "profile the raw worksheet instead")
	describeCmd.Flags().BoolVar(&descJSON, "json", false, "print JSON instead of markdown")
	describeCmd.Flags().StringVarP(&descOutput, "output", "o", "", "optional path to write the report")
	describeCmd.Flags().IntVar(&descSampleN, "sample-rows", 5, "with --schema: sample rows to include")
	describeCmd.Flags().IntVar(&descMaxRows, "max-rows", 100000, "with --schema: max rows to profile (0 = all)")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "with --schema: count robust z-score outliers")
}
