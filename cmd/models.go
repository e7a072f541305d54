package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/ai"
	"github.com/KaramelBytes/salesdash/internal/utils"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage or inspect model catalog and pricing",
	Example: `  salesdash models show
  salesdash models show --json
  salesdash models recommend --provider ollama --tier cheap
  salesdash models sync --file ./models.json --merge
  salesdash models fetch --provider gemini --output models.json`,
}

var showJSON bool

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		list := ai.SortedModels(ai.Catalog())
		out := cmd.OutOrStdout()
		if showJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tPROVIDER\tCONTEXT\tIN/1K\tOUT/1K")
		for _, m := range list {
			fmt.Fprintf(tw, "%s\t%s\t%d\t$%.5f\t$%.5f\n", m.Name, m.Provider, m.ContextTokens, m.InputPerK, m.OutputPerK)
		}
		return tw.Flush()
	},
}

var (
	recProvider string
	recTier     string
)

var modelsRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest a model for a provider and cost tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := recProvider
		if p == "" {
			p = activeConfig().Provider
		}
		name, ok := ai.RecommendModel(p, recTier)
		if !ok {
			return fmt.Errorf("no recommendation for provider %q tier %q", p, recTier)
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

var (
	syncPath  string
	syncMerge bool
)

var modelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load model catalog/pricing from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPath == "" {
			return fmt.Errorf("--file is required")
		}
		if err := applyCatalogFile(syncPath, syncMerge); err != nil {
			return err
		}
		if syncMerge {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Merged model catalog from file")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Replaced model catalog from file")
		}
		return nil
	},
}

// providerURL returns the catalog URL override for a provider from
// SALESDASH_<PROVIDER>_CATALOG_URL. Empty string if unset.
func providerURL(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv("SALESDASH_" + strings.ToUpper(name) + "_CATALOG_URL")
}

var (
	fetchURL      string
	fetchOutput   string
	fetchMerge    bool
	fetchProvider string
)

var modelsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch model catalog/pricing JSON from a URL and apply it",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		url := fetchURL
		if url == "" {
			url = providerURL(fetchProvider)
		}
		var m map[string]ai.ModelInfo
		switch {
		case url != "":
			fetched, err := fetchCatalog(url)
			if err != nil {
				return err
			}
			m = fetched
		case fetchProvider != "":
			// No URL: use the built-in preset without network access.
			preset, ok := ai.PresetCatalog(fetchProvider)
			if !ok {
				return fmt.Errorf("no built-in preset for provider %q", fetchProvider)
			}
			m = preset
		default:
			return fmt.Errorf("--url is required (or specify --provider with a known preset)")
		}
		if fetchOutput != "" {
			data, err := utils.PrettyJSON(m)
			if err != nil {
				return fmt.Errorf("marshal: %w", err)
			}
			if err := writeOutput(out, fetchOutput, data, "catalog"); err != nil {
				return err
			}
		}
		if fetchMerge {
			ai.MergeCatalog(m)
			fmt.Fprintf(out, "✓ Merged %d models into in-memory catalog\n", len(m))
		} else {
			ai.OverrideCatalog(m)
			fmt.Fprintf(out, "✓ Replaced in-memory catalog with %d models\n", len(m))
		}
		return nil
	},
}

func fetchCatalog(url string) (map[string]ai.ModelInfo, error) {
	client := &http.Client{Timeout: activeConfig().HTTPTimeout()}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
	}
	var m map[string]ai.ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return m, nil
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsRecommendCmd)
	modelsCmd.AddCommand(modelsSyncCmd)
	modelsCmd.AddCommand(modelsFetchCmd)

	modelsShowCmd.Flags().BoolVar(&showJSON, "json", false, "print JSON instead of a table")

	modelsRecommendCmd.Flags().StringVar(&recProvider, "provider", "", "provider (defaults to config)")
	modelsRecommendCmd.Flags().StringVar(&recTier, "tier", "balanced", "cost tier: cheap|balanced|high-context")

	modelsSyncCmd.Flags().StringVar(&syncPath, "file", "", "path to JSON catalog file")
	modelsSyncCmd.Flags().BoolVar(&syncMerge, "merge", false, "merge into existing catalog instead of replacing")

	modelsFetchCmd.Flags().StringVar(&fetchURL, "url", "", "URL to JSON catalog file")
	modelsFetchCmd.Flags().StringVar(&fetchOutput, "output", "", "optional path to save the fetched JSON")
	modelsFetchCmd.Flags().BoolVar(&fetchMerge, "merge", false, "merge into existing catalog instead of replacing")
	modelsFetchCmd.Flags().StringVar(&fetchProvider, "provider", "", "provider preset (openai|openrouter|gemini|ollama); SALESDASH_<PROVIDER>_CATALOG_URL overrides it with a URL")
}
