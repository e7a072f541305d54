package utils

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// CountTokens estimates the tokens a model spends on text: one per four
// characters, rounded up, plus one for every pair of table pipes, which
// tokenizers split from the numbers around them.
func CountTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n+3)/4 + strings.Count(text, "|")/2
}

// TokenCount is the estimate for one labeled prompt section.
type TokenCount struct {
	Label  string
	Tokens int
}

// TokenBreakdown estimates each labeled section, sorted by label, and
// returns the total.
func TokenBreakdown(sections map[string]string) ([]TokenCount, int) {
	out := make([]TokenCount, 0, len(sections))
	total := 0
	for k, v := range sections {
		n := CountTokens(v)
		out = append(out, TokenCount{Label: k, Tokens: n})
		total += n
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, total
}
