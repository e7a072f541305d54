package utils_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/salesdash/internal/utils"
)

func TestCountTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"rounds up", "hello", 2},
		{"accented", "Março", 2},
		{"table", "| a | b |", 3 + 1},
		{"long", strings.Repeat("a", 4000), 1000},
	}
	for _, c := range cases {
		if got := utils.CountTokens(c.in); got != c.want {
			t.Errorf("%s: got %d, want %d", c.name, got, c.want)
		}
	}
}

func TestTokenBreakdown(t *testing.T) {
	got, total := utils.TokenBreakdown(map[string]string{"user": "", "system": "abcdefgh"})
	if len(got) != 2 || got[0].Label != "system" || got[0].Tokens != 2 || got[1].Tokens != 0 {
		t.Fatalf("unexpected breakdown: %v", got)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
}

func TestFindUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "faturamento.xlsx")
	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := utils.FindUpward(nested, "faturamento.xlsx")
	if err != nil || got != want {
		t.Fatalf("FindUpward = %q, %v", got, err)
	}
	if _, err := utils.FindUpward(nested, "absent.xlsx"); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSafeWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	if err := utils.SafeWriteFile(path, []byte("ok")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil || string(b) != "ok" {
		t.Fatalf("unexpected content %q, %v", b, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}
