package render

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"image/color"
	"strconv"

	"github.com/KaramelBytes/cnodash/internal/analysis"
)

// MetricCard is one headline number.
type MetricCard struct {
	Label string
	Value string
}

// MetricCards formats m in display order.
func MetricCards(m analysis.Metrics) []MetricCard {
	return []MetricCard{
		{Label: "Total de CNOs", Value: FormatThousands(int64(m.TotalRecords))},
		{Label: "Destinações Únicas", Value: FormatThousands(int64(m.DistinctDestinations))},
		{Label: "Área Total (MM de M²)", Value: FormatThousands(m.AreaMillions)},
		{Label: "Estados Únicos", Value: FormatThousands(int64(m.DistinctStates))},
	}
}

// PanelSpec describes the chart and table shown for one summary.
type PanelSpec struct {
	Dimension  analysis.Dimension
	Slug       string
	TableTitle string
	ChartStyle
}

// PanelSpecs in page order.
var PanelSpecs = []PanelSpec{
	{
		Dimension:  analysis.DimDestination,
		Slug:       "destinacao",
		TableTitle: "Quantidades por Destinação",
		ChartStyle: ChartStyle{
			Title:  "Número de Obras por Destinação",
			XLabel: "Tipo de Destinação",
			YLabel: "Quantidade de Obras",
			Color:  color.RGBA{B: 255, A: 255},
		},
	},
	{
		Dimension:  analysis.DimState,
		Slug:       "estado",
		TableTitle: "CNO por Estado",
		ChartStyle: ChartStyle{
			Title:  "Número de CNO por Estado",
			XLabel: "Estado",
			YLabel: "Quantidade de CNO",
			Color:  color.RGBA{G: 128, A: 255},
		},
	},
	{
		Dimension:  analysis.DimSize,
		Slug:       "tamanho",
		TableTitle: "Obras por Tamanho",
		ChartStyle: ChartStyle{
			Title:  "Número de Obras por Categoria de Tamanho",
			XLabel: "Categoria de Tamanho",
			YLabel: "Quantidade de Obras",
			Color:  color.RGBA{R: 128, B: 128, A: 255},
		},
	},
}

// LookupPanel finds a PanelSpec by slug.
func LookupPanel(slug string) (PanelSpec, bool) {
	for _, p := range PanelSpecs {
		if p.Slug == slug {
			return p, true
		}
	}
	return PanelSpec{}, false
}

// TableRow is a formatted summary row.
type TableRow struct {
	Label   string
	Count   string
	Percent string
}

// Panel is a rendered chart plus its data table.
type Panel struct {
	PanelSpec
	Headers  [3]string
	Rows     []TableRow
	SVG      []byte
	ChartURI template.URL
}

// BuildPanel renders the chart and table for spec.
func BuildPanel(rep *analysis.Report, spec PanelSpec) (Panel, error) {
	s, ok := rep.Summary(spec.Dimension)
	if !ok {
		return Panel{}, fmt.Errorf("no summary for %s", spec.Dimension)
	}
	svg, err := BarChart(s, spec.ChartStyle)
	if err != nil {
		return Panel{}, fmt.Errorf("%s chart: %w", spec.Slug, err)
	}
	p := Panel{
		PanelSpec: spec,
		Headers:   [3]string{s.LabelColumn, s.CountColumn, analysis.ColPercentage},
		SVG:       svg,
		// data: URIs are filtered by html/template unless typed.
		ChartURI: template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)),
	}
	for _, r := range s.Rows {
		p.Rows = append(p.Rows, TableRow{
			Label:   r.Label,
			Count:   FormatThousands(int64(r.Count)),
			Percent: strconv.FormatFloat(r.Percent, 'f', 2, 64),
		})
	}
	return p, nil
}

// BuildPanels renders every panel in PanelSpecs order.
func BuildPanels(rep *analysis.Report) ([]Panel, error) {
	out := make([]Panel, 0, len(PanelSpecs))
	for _, spec := range PanelSpecs {
		p, err := BuildPanel(rep, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
