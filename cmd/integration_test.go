package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/insight"
)

// resetFlags restores every flag to its default so values do not leak
// between invocations of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	// Slice defaults are not restored by Replace(nil).
	descMetrics = []string{"line_total_value", "quantity"}
	cfg = nil
	loadConfig()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) (string, string) {
	t.Helper()
	out, errOut, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out, errOut
}

// isolate points HOME at a temp dir, clears model credentials and writes
// a two-month workbook, returning its path.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SALESDASH_API_KEY", "")
	t.Setenv("SALESDASH_PROVIDER", "")

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	rows := [][]any{
		{"Nome Vendedor", "nome_grupo", "Total Item", "Data Emissão", "Quantidade", "Peso Bruto"},
		{"ANA", "G1", 1000, 45352, 10, 8},
		{"ANA", "G2", 500, 45353, 5, 4},
		{"BRUNO", "G1", 234.56, 45383, 3, 2},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(home, "vendas.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func TestCLI_DashboardMarkdown(t *testing.T) {
	path := isolate(t)
	out, _ := mustRun(t, "dashboard", path)
	for _, want := range []string{"Análise Faturamento - vendas.xlsx", "R$ 1.734,56", "ANA", "BRUNO"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dashboard output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_DashboardFilteredJSONToFile(t *testing.T) {
	path := isolate(t)
	dest := filepath.Join(filepath.Dir(path), "out", "dash.json")
	out, _ := mustRun(t, "dashboard", path, "--seller", "BRUNO", "--format", "json", "-o", dest)
	if !strings.Contains(out, "✓ Wrote dashboard to") {
		t.Fatalf("expected write confirmation, got %q", out)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	ranking, _ := v["ranking"].([]any)
	if len(ranking) != 1 {
		t.Fatalf("expected only BRUNO in ranking, got %v", v["ranking"])
	}
}

func TestCLI_DashboardRejectsFormat(t *testing.T) {
	path := isolate(t)
	if _, _, err := runCmd(t, "dashboard", path, "--format", "pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCLI_DashboardMissingFile(t *testing.T) {
	path := isolate(t)
	out, errOut := mustRun(t, "dashboard", filepath.Join(filepath.Dir(path), "absent.xlsx"))
	if !strings.Contains(errOut, "⚠ Warning: dataset not found") {
		t.Fatalf("expected missing dataset warning, got %q", errOut)
	}
	if !strings.Contains(out, dashboard.EmptyNotice) {
		t.Fatalf("expected empty notice, got %q", out)
	}
}

func TestCLI_DashboardInsightsWithoutKey(t *testing.T) {
	path := isolate(t)
	out, errOut := mustRun(t, "dashboard", path, "--insights")
	if !strings.Contains(errOut, "no model runtime configured") {
		t.Fatalf("expected configuration warning, got %q", errOut)
	}
	if !strings.Contains(out, insight.ConfigErrorMessage) {
		t.Fatalf("expected configuration diagnostic in dashboard, got:\n%s", out)
	}
}

func TestCLI_Options(t *testing.T) {
	path := isolate(t)
	out, _ := mustRun(t, "options", path, "--json")
	var ch struct {
		Periods     []string `json:"periods"`
		Salespeople []string `json:"salespeople"`
	}
	if err := json.Unmarshal([]byte(out), &ch); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if strings.Join(ch.Periods, ",") != "Março/2024,Abril/2024" {
		t.Fatalf("unexpected periods: %v", ch.Periods)
	}
	if len(ch.Salespeople) != 2 {
		t.Fatalf("unexpected salespeople: %v", ch.Salespeople)
	}

	out, _ = mustRun(t, "options", path, "--period", "Abril/2024")
	if strings.Contains(out, "ANA") || !strings.Contains(out, "- BRUNO") {
		t.Fatalf("expected only BRUNO for April:\n%s", out)
	}
}

func TestCLI_Describe(t *testing.T) {
	path := isolate(t)
	out, _ := mustRun(t, "describe", path, "--by", "salesperson_name", "--top", "1")
	if !strings.Contains(out, "ANA (line_total_value)") || strings.Contains(out, "BRUNO") {
		t.Fatalf("expected only the top salesperson:\n%s", out)
	}
	if _, _, err := runCmd(t, "describe", path, "--by", "nonsense"); err == nil {
		t.Fatalf("expected error for unknown dimension")
	}

	out, _ = mustRun(t, "describe", path, "--schema")
	if !strings.Contains(out, "Nome Vendedor") {
		t.Fatalf("expected raw column in profile:\n%s", out)
	}
}

func TestCLI_InsightsDryRun(t *testing.T) {
	path := isolate(t)
	out, errOut := mustRun(t, "insights", path, "--dry-run", "--instruction", "Compare os vendedores")
	if !strings.Contains(out, "### system") || !strings.Contains(out, "Compare os vendedores") {
		t.Fatalf("expected rendered prompt:\n%s", out)
	}
	if !strings.Contains(errOut, "total prompt") {
		t.Fatalf("expected token estimate, got %q", errOut)
	}
}

func TestCLI_InsightsWithoutKey(t *testing.T) {
	path := isolate(t)
	out, _ := mustRun(t, "insights", path)
	if strings.TrimSpace(out) != insight.ConfigErrorMessage {
		t.Fatalf("expected configuration diagnostic, got %q", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)
	mustRun(t, "config", "set", "provider", "local")
	mustRun(t, "config", "set", "api_key", "sk-1234567890abcd")
	out, _ := mustRun(t, "config", "show")
	if !strings.Contains(out, "provider: ollama") {
		t.Fatalf("expected saved provider:\n%s", out)
	}
	if strings.Contains(out, "sk-1234567890abcd") {
		t.Fatalf("api key not redacted:\n%s", out)
	}
	if _, _, err := runCmd(t, "config", "set", "temperature", "5"); err == nil {
		t.Fatalf("expected validation error for temperature")
	}
	if _, _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestCLI_Models(t *testing.T) {
	isolate(t)
	out, _ := mustRun(t, "models", "show")
	if !strings.Contains(out, "gpt-oss-120b") {
		t.Fatalf("expected default model in catalog:\n%s", out)
	}
	out, _ = mustRun(t, "models", "recommend", "--provider", "ollama", "--tier", "cheap")
	if strings.TrimSpace(out) != "gpt-oss:20b" {
		t.Fatalf("unexpected recommendation %q", out)
	}
}
