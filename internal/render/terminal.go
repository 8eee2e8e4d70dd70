package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/cnodash/internal/analysis"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#0066cc")).
			Padding(0, 2).
			Align(lipgloss.Center).
			Width(28)
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0066cc"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// TerminalCards lays the metric cards out side by side.
func TerminalCards(m analysis.Metrics) string {
	cards := MetricCards(m)
	boxes := make([]string, 0, len(cards))
	for _, c := range cards {
		boxes = append(boxes, cardStyle.Render(valueStyle.Render(c.Value)+"\n"+labelStyle.Render(c.Label)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// Terminal renders rep for a terminal: metric cards followed by the
// summary tables. With plain set, the Markdown is returned unstyled.
func Terminal(rep *analysis.Report, width int, plain bool) (string, error) {
	md := Markdown(rep)
	if plain {
		return md, nil
	}
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	var b strings.Builder
	b.WriteString(TerminalCards(rep.Metrics))
	b.WriteString("\n")
	b.WriteString(out)
	return b.String(), nil
}
