package dashboard

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/salesdash/internal/analysis"
	"github.com/KaramelBytes/salesdash/internal/insight"
)

// Markdown renders the view for terminals and the HTML page.
func (v *View) Markdown() string {
	var b strings.Builder
	title := "Análise Faturamento"
	if v.Dataset != "" {
		title += " - " + v.Dataset
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Competência: %s\n", listOrAll(v.Selection.Periods))
	sellers := listOrAll(v.Selection.Salespeople)
	if v.Selection.ExcludeSalespeople && len(v.Selection.Salespeople) > 0 {
		sellers = "todos exceto " + sellers
	}
	fmt.Fprintf(&b, "- Vendedores: %s\n\n", sellers)
	for _, w := range v.Warnings {
		fmt.Fprintf(&b, "> ⚠ %s\n", w)
	}
	if len(v.Warnings) > 0 {
		b.WriteString("\n")
	}
	if v.Notice != "" {
		fmt.Fprintf(&b, "> %s\n", v.Notice)
		return b.String()
	}

	b.WriteString("## Indicadores\n\n")
	b.WriteString("| Indicador | Valor |\n|:--|--:|\n")
	fmt.Fprintf(&b, "| Faturamento Total | %s |\n", Money(v.KPIs.TotalValue))
	fmt.Fprintf(&b, "| Vendedores | %d |\n", v.KPIs.DistinctSalespeople)
	fmt.Fprintf(&b, "| Ticket Médio por Item | %s |\n", Money(v.KPIs.AvgValuePerLine))
	fmt.Fprintf(&b, "| Peso Total | %s |\n", Weight(v.KPIs.TotalWeight))
	fmt.Fprintf(&b, "| Ticket Médio (Peso) | %s |\n", Weight(v.KPIs.AvgWeightPerLine))
	fmt.Fprintf(&b, "| Fator Quilo | %s |\n\n", MoneyPerWeight(v.KPIs.ValuePerWeight))

	b.WriteString("## Ranking de Vendas por Vendedor\n\n")
	b.WriteString("| # | Vendedor | Total de vendas | Linhas |\n|--:|:--|--:|--:|\n")
	for i, g := range v.Ranking {
		fmt.Fprintf(&b, "| %d | %s | %s | %d |\n", i+1, cell(g.Key), Money(g.Total), g.Lines)
	}
	b.WriteString("\n")

	if len(v.Periods) > 1 {
		b.WriteString("## Faturamento por Competência\n\n")
		b.WriteString("| Competência | Total |\n|:--|--:|\n")
		for _, p := range v.Periods {
			fmt.Fprintf(&b, "| %s | %s |\n", p.Key, Money(p.Total))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Análise de faturamento Diário\n\n")
	b.WriteString("| Dia | Competência | Total |\n|:--|:--|--:|\n")
	for _, d := range v.Daily {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", d.Date.Format("02/01/2006"), d.PeriodLabel, Money(d.Total))
	}
	b.WriteString("\n")

	writeShares(&b, "Participação de Cada Grupo no Faturamento Total", "Grupo de Produto", v.GroupShare)
	writeShares(&b, "Participação de Cada Classe no Faturamento Total", "Classe de Produto", v.ClassShare)
	writeShares(&b, "Participação de Cada Família no Faturamento Total", "Família de Produto", v.FamilyShare)

	if v.StatsText != "" {
		b.WriteString("## Estatísticas Descritivas\n\n")
		b.WriteString(v.StatsText)
		b.WriteString("\n\n")
	}
	if v.Insight != "" {
		b.WriteString("## Resumo da Análise\n\n")
		writeInsight(&b, v.Insight, v.Sections)
	}
	return b.String()
}

func writeShares(b *strings.Builder, title, label string, shares []analysis.GroupShare) {
	if len(shares) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	fmt.Fprintf(b, "| %s | Vendas | Percentual |\n|:--|--:|--:|\n", label)
	for _, s := range shares {
		fmt.Fprintf(b, "| %s | %s | %s |\n", cell(s.Key), Money(s.Total), Percent(s.Share))
	}
	b.WriteString("\n")
}

func writeInsight(b *strings.Builder, text string, sec *insight.Sections) {
	if sec == nil || (sec.Product == "" && sec.Person == "") {
		b.WriteString(strings.TrimSpace(text))
		b.WriteString("\n")
		return
	}
	if sec.Other != "" {
		b.WriteString(sec.Other)
		b.WriteString("\n\n")
	}
	if sec.Product != "" {
		b.WriteString("### Produtos\n\n")
		b.WriteString(sec.Product)
		b.WriteString("\n\n")
	}
	if sec.Person != "" {
		b.WriteString("### Vendedores\n\n")
		b.WriteString(sec.Person)
		b.WriteString("\n")
	}
}

func listOrAll(vals []string) string {
	if len(vals) == 0 {
		return "todos"
	}
	return strings.Join(vals, ", ")
}

func cell(s string) string { return strings.ReplaceAll(s, "|", "/") }
