package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/filter"
	"github.com/KaramelBytes/salesdash/internal/utils"
)

var (
	optPeriods []string
	optJSON    bool
)

var optionsCmd = &cobra.Command{
	Use:   "options [file]",
	Short: "List the periods and salespeople available for filtering",
	Long: `Lists every period in the spreadsheet, and the salespeople present in the
selected periods (all periods when --period is not given).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds := loadDataset(cmd.Context(), cmd, newLoader(nil), resolveDataset(args))
		ch := filter.Options(ds.Table, filter.Selection{Periods: optPeriods})
		out := cmd.OutOrStdout()
		if optJSON {
			b, err := utils.PrettyJSON(ch)
			if err != nil {
				return err
			}
			return writeOutput(out, "", b, "options")
		}
		fmt.Fprintln(out, "Periods:")
		if len(ch.Periods) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, p := range ch.Periods {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		fmt.Fprintln(out, "Salespeople:")
		if len(ch.Salespeople) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, s := range ch.Salespeople {
			fmt.Fprintf(out, "  - %s\n", s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
	optionsCmd.Flags().StringSliceVar(&optPeriods, "period", nil, "restrict salesperson options to these periods")
	optionsCmd.Flags().BoolVar(&optJSON, "json", false, "print JSON instead of a list")
}
