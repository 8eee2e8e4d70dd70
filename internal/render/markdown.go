package render

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/cnodash/internal/analysis"
)

// Markdown renders the metrics and the three summary tables.
func Markdown(rep *analysis.Report) string {
	var b strings.Builder
	b.WriteString("# Dashboard CNO\n\n")
	if len(rep.Sources) > 0 {
		b.WriteString(fmt.Sprintf("Fontes: %s\n\n", strings.Join(rep.Sources, ", ")))
	}
	for _, c := range MetricCards(rep.Metrics) {
		b.WriteString(fmt.Sprintf("- **%s**: %s\n", c.Label, c.Value))
	}
	for _, spec := range PanelSpecs {
		s, ok := rep.Summary(spec.Dimension)
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("\n## %s\n\n", spec.Title))
		if len(s.Rows) == 0 {
			b.WriteString("_Sem dados_\n")
			continue
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", s.LabelColumn, s.CountColumn, analysis.ColPercentage))
		b.WriteString("| --- | ---: | ---: |\n")
		for _, r := range s.Rows {
			b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", safeVal(r.Label), FormatThousands(int64(r.Count)), FormatPercent(r.Percent)))
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
