package dashboard

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// Number formats d with two decimals and Brazilian separators (1.234,56).
func Number(d decimal.Decimal) string {
	return ptBR.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Money formats d as reais: R$ 1.234,56.
func Money(d decimal.Decimal) string { return "R$ " + Number(d) }

// Weight formats d in kilograms: 1.234,56 Kg.
func Weight(d decimal.Decimal) string { return Number(d) + " Kg" }

// MoneyPerWeight formats a value-per-kilogram ratio: R$/Kg 12,34.
func MoneyPerWeight(d decimal.Decimal) string { return "R$/Kg " + Number(d) }

// Percent formats a 0..1 share as 12,3%.
func Percent(f float64) string { return ptBR.Sprintf("%.1f%%", f*100) }
