// Package dashboard assembles the filtered indicators, chart series,
// statistics and model insight shown for one selection.
package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/salesdash/internal/analysis"
	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/filter"
	"github.com/KaramelBytes/salesdash/internal/insight"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

// EmptyNotice is shown when the selection matches nothing.
const EmptyNotice = "Nenhum dado encontrado para os filtros selecionados."

// FacetTopN is the number of product groups and salespeople summarized for the model.
const FacetTopN = 5

// FacetMetrics are the metrics described per facet.
var FacetMetrics = []sales.Metric{sales.MetricLineTotal, sales.MetricQuantity}

// Summarizer produces insight text from a statistics table.
type Summarizer interface {
	Summarize(ctx context.Context, statsText, instruction string) string
}

// View is everything the dashboard renders for a selection.
type View struct {
	Dataset     string           `json:"dataset" yaml:"dataset"`
	DatasetID   string           `json:"dataset_id,omitempty" yaml:"dataset_id,omitempty"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Selection   filter.Selection `json:"selection" yaml:"selection"`
	Choices     filter.Choices   `json:"choices" yaml:"choices"`
	Warnings    []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Notice      string           `json:"notice,omitempty" yaml:"notice,omitempty"`

	KPIs        analysis.KPIs         `json:"kpis" yaml:"kpis"`
	Ranking     []analysis.GroupTotal `json:"ranking" yaml:"ranking"`
	Daily       []analysis.DailyPoint `json:"daily" yaml:"daily"`
	Periods     []analysis.GroupTotal `json:"periods" yaml:"periods"`
	GroupShare  []analysis.GroupShare `json:"group_share" yaml:"group_share"`
	ClassShare  []analysis.GroupShare `json:"class_share" yaml:"class_share"`
	FamilyShare []analysis.GroupShare `json:"family_share" yaml:"family_share"`

	GroupStats  *analysis.StatsTable `json:"group_stats,omitempty" yaml:"group_stats,omitempty"`
	SellerStats *analysis.StatsTable `json:"seller_stats,omitempty" yaml:"seller_stats,omitempty"`
	StatsText   string               `json:"stats_text,omitempty" yaml:"stats_text,omitempty"`
	Insight     string               `json:"insight,omitempty" yaml:"insight,omitempty"`
	Sections    *insight.Sections    `json:"sections,omitempty" yaml:"sections,omitempty"`

	table *sales.Table
}

// Table returns the filtered table behind the view.
func (v *View) Table() *sales.Table { return v.table }

// Empty reports whether the selection matched no records.
func (v *View) Empty() bool { return v.table.Len() == 0 }

// Build filters ds by sel and computes the view. s may be nil, in which
// case no insight is requested.
func Build(ctx context.Context, ds *dataset.Dataset, sel filter.Selection, s Summarizer) *View {
	if ds == nil {
		ds = dataset.Empty("")
	}
	t := filter.Apply(ds.Table, sel)
	v := &View{
		Dataset:     ds.Name,
		DatasetID:   ds.ID,
		GeneratedAt: time.Now().UTC(),
		Selection:   sel,
		Choices:     filter.Options(ds.Table, sel),
		Warnings:    warnings(ds),
		KPIs:        analysis.ComputeKPIs(t),
		Ranking:     analysis.SumBy(t, sales.DimSalesperson),
		Daily:       analysis.DailySeries(t),
		Periods:     analysis.PeriodSeries(t),
		GroupShare:  analysis.Share(t, sales.DimProductGroup),
		ClassShare:  analysis.Share(t, sales.DimProductClass),
		FamilyShare: analysis.Share(t, sales.DimProductFamily),
		table:       t,
	}
	if t.Len() == 0 {
		v.Notice = EmptyNotice
		return v
	}
	v.GroupStats = analysis.DescriptiveStats(t, sales.DimProductGroup, FacetMetrics, FacetTopN)
	v.SellerStats = analysis.DescriptiveStats(t, sales.DimSalesperson, FacetMetrics, FacetTopN)
	v.StatsText = analysis.JoinMarkdown(v.GroupStats, v.SellerStats)
	if s != nil {
		v.Insight = s.Summarize(ctx, v.StatsText, insight.DashboardInstruction)
		sec := insight.SplitSections(v.Insight)
		v.Sections = &sec
	}
	return v
}

func warnings(ds *dataset.Dataset) []string {
	var out []string
	for _, c := range ds.Stats.MissingColumns() {
		out = append(out, "missing column: "+c)
	}
	return out
}

// JSON renders the view as indented JSON.
func (v *View) JSON() ([]byte, error) { return json.MarshalIndent(v, "", "  ") }

// YAML renders the view as YAML.
func (v *View) YAML() ([]byte, error) { return yaml.Marshal(v) }
