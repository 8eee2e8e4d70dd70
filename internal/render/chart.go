package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/KaramelBytes/cnodash/internal/analysis"
)

// HeadroomFactor scales the tallest bar to leave room for its label.
const HeadroomFactor = 1.15

const (
	chartWidth  = 9 * vg.Inch
	chartHeight = 5 * vg.Inch
	barWidth    = 28
)

// ChartStyle is the cosmetic part of a bar chart.
type ChartStyle struct {
	Title  string
	XLabel string
	YLabel string
	Color  color.RGBA
}

// BarChart renders s as an SVG vertical bar chart, one bar per row in row
// order, each labelled with its percentage.
func BarChart(s analysis.Summary, style ChartStyle) ([]byte, error) {
	p := plot.New()
	p.Title.Text = style.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = style.XLabel
	p.Y.Label.Text = style.YLabel

	if len(s.Rows) == 0 {
		return emptyChart(p)
	}

	values := make(plotter.Values, len(s.Rows))
	names := make([]string, len(s.Rows))
	xys := make(plotter.XYs, len(s.Rows))
	texts := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		values[i] = float64(r.Count)
		names[i] = r.Label
		xys[i] = plotter.XY{X: float64(i), Y: float64(r.Count)}
		texts[i] = FormatPercent(r.Percent)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(barWidth))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = style.Color
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("bar labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].Font.Size = vg.Points(8)
	}
	labels.Offset = vg.Point{Y: vg.Points(3)}
	p.Add(labels)

	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	// Set after Add: plotters widen the axis ranges.
	p.Y.Min = 0
	p.Y.Max = YAxisMax(s)
	return encodeSVG(p)
}

// YAxisMax is the y-axis upper bound for s.
func YAxisMax(s analysis.Summary) float64 {
	return float64(s.MaxCount()) * HeadroomFactor
}

func emptyChart(p *plot.Plot) ([]byte, error) {
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{"Sem dados"},
	})
	if err != nil {
		return nil, fmt.Errorf("empty chart: %w", err)
	}
	l.TextStyle[0].XAlign = draw.XCenter
	p.Add(l)
	return encodeSVG(p)
}

func encodeSVG(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(chartWidth, chartHeight, "svg")
	if err != nil {
		return nil, fmt.Errorf("svg writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write svg: %w", err)
	}
	return buf.Bytes(), nil
}
