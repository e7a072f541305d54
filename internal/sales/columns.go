package sales

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical column names.
const (
	ColCustomer        = "customer_name"
	ColSalesperson     = "salesperson_name"
	ColProductClass    = "product_class"
	ColProductGroup    = "product_group"
	ColProductSubgroup = "product_subgroup"
	ColProductFamily   = "product_family"
	ColProductSegment  = "product_segment"
	ColItemDescription = "item_description"
	ColQuantity        = "quantity"
	ColGrossWeight     = "gross_weight"
	ColWeightRaw       = "weight_raw"
	ColUnitValue       = "unit_value"
	ColLineTotal       = "line_total_value"
	ColIssueDate       = "issue_date"
	ColSaleType        = "sale_type"
)

// Dimension is a categorical column usable for grouping.
type Dimension string

const (
	DimCustomer        Dimension = ColCustomer
	DimSalesperson     Dimension = ColSalesperson
	DimProductClass    Dimension = ColProductClass
	DimProductGroup    Dimension = ColProductGroup
	DimProductSubgroup Dimension = ColProductSubgroup
	DimProductFamily   Dimension = ColProductFamily
	DimProductSegment  Dimension = ColProductSegment
	DimSaleType        Dimension = ColSaleType
	DimItemDescription Dimension = ColItemDescription
	DimPeriod          Dimension = "period_label"
)

// Dimensions lists every groupable dimension.
var Dimensions = []Dimension{
	DimSalesperson, DimCustomer, DimProductGroup, DimProductClass,
	DimProductSubgroup, DimProductFamily, DimProductSegment, DimSaleType,
	DimItemDescription, DimPeriod,
}

// ParseDimension resolves a dimension by canonical name or any recognized
// source alias.
func ParseDimension(s string) (Dimension, bool) {
	if fold(s) == fold(string(DimPeriod)) {
		return DimPeriod, true
	}
	canon, ok := Canonical(s)
	if !ok {
		return "", false
	}
	for _, d := range Dimensions {
		if string(d) == canon {
			return d, true
		}
	}
	return "", false
}

// Metric is a numeric column.
type Metric string

const (
	MetricQuantity    Metric = ColQuantity
	MetricGrossWeight Metric = ColGrossWeight
	MetricUnitValue   Metric = ColUnitValue
	MetricLineTotal   Metric = ColLineTotal
)

// ParseMetric resolves a metric by canonical name or source alias.
func ParseMetric(s string) (Metric, bool) {
	canon, ok := Canonical(s)
	if !ok {
		return "", false
	}
	for _, m := range []Metric{MetricQuantity, MetricGrossWeight, MetricUnitValue, MetricLineTotal} {
		if string(m) == canon {
			return m, true
		}
	}
	return "", false
}

// aliases maps every recognized source header to its canonical name:
// English export headers, the Portuguese ERP headers and the intermediate
// snake_case names used by older exports.
var aliases = map[string]string{
	"Customer Name": ColCustomer, "Nome Correntista": ColCustomer, "nome_cliente": ColCustomer,
	"Seller Name": ColSalesperson, "Nome Vendedor": ColSalesperson, "nome_vendedor": ColSalesperson,
	"class_name": ColProductClass, "nome_classe": ColProductClass, "classe_produto": ColProductClass,
	"group_name": ColProductGroup, "nome_grupo": ColProductGroup, "grupo_produto": ColProductGroup,
	"subgroup_name": ColProductSubgroup, "nome_subgrupo": ColProductSubgroup, "subgrupo_produto": ColProductSubgroup,
	"family_name": ColProductFamily, "nome_familia": ColProductFamily, "familia_produto": ColProductFamily,
	"segment_name": ColProductSegment, "nome_segmento": ColProductSegment, "segmento_produto": ColProductSegment,
	"Item Description": ColItemDescription, "Descrição Item": ColItemDescription, "descricao_item": ColItemDescription,
	"Quantity": ColQuantity, "Quantidade": ColQuantity,
	"Gross Weight": ColGrossWeight, "Peso Bruto": ColGrossWeight, "peso_bruto": ColGrossWeight,
	"Weight": ColWeightRaw, "Peso": ColWeightRaw, "peso_string": ColWeightRaw,
	"Unit Value": ColUnitValue, "Unitário": ColUnitValue, "valor_unitario": ColUnitValue,
	"Item Total": ColLineTotal, "Total Item": ColLineTotal, "valor_total_item": ColLineTotal,
	"Issue Date": ColIssueDate, "Data Emissão": ColIssueDate, "data_emissao": ColIssueDate,
	"sale_type_description": ColSaleType, "descricao_tpvenda": ColSaleType, "tipo_venda": ColSaleType,
}

var canonicalNames = []string{
	ColCustomer, ColSalesperson, ColProductClass, ColProductGroup, ColProductSubgroup,
	ColProductFamily, ColProductSegment, ColItemDescription, ColQuantity, ColGrossWeight,
	ColWeightRaw, ColUnitValue, ColLineTotal, ColIssueDate, ColSaleType,
}

var folded = func() map[string]string {
	m := make(map[string]string, len(aliases)+len(canonicalNames))
	for _, c := range canonicalNames {
		m[fold(c)] = c
	}
	for k, v := range aliases {
		m[fold(k)] = v
	}
	return m
}()

// Canonical maps a source header to its canonical column name. Exact
// matches win over case, accent and separator folded matches.
func Canonical(header string) (string, bool) {
	h := strings.TrimSpace(header)
	if c, ok := aliases[h]; ok {
		return c, true
	}
	for _, c := range canonicalNames {
		if h == c {
			return c, true
		}
	}
	c, ok := folded[fold(h)]
	return c, ok
}

// fold lowercases s, strips diacritics and collapses space, '-' and '_' runs
// into a single '_'.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(strings.TrimSpace(out))
	var b strings.Builder
	sep := false
	for _, r := range out {
		if r == ' ' || r == '_' || r == '-' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}
