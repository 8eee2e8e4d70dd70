package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/KaramelBytes/cnodash/internal/analysis"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// PageView is everything the dashboard template needs.
type PageView struct {
	Title       string
	RunID       string
	GeneratedAt string
	Sources     []string
	Cards       []MetricCard
	Panels      []Panel
}

// NewPageView renders the charts for rep and formats its metrics.
func NewPageView(rep *analysis.Report, runID string, generatedAt time.Time) (*PageView, error) {
	panels, err := BuildPanels(rep)
	if err != nil {
		return nil, err
	}
	return &PageView{
		Title:       "Dashboard CNO",
		RunID:       runID,
		GeneratedAt: generatedAt.Format("02/01/2006 15:04:05"),
		Sources:     rep.Sources,
		Cards:       MetricCards(rep.Metrics),
		Panels:      panels,
	}, nil
}

// RenderPage writes the dashboard HTML for v.
func RenderPage(w io.Writer, v *PageView) error {
	if err := pageTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
