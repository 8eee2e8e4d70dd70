package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"github.com/KaramelBytes/cnodash/internal/analysis"
)

//go:embed templates/debug.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "templates/debug.html"))

type debugData struct {
	Title string
	Pre   string
}

// debugHandler dumps the current run. ?section= selects metrics, destinacao,
// estado, tamanho or records.
func (s *Server) debugHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := s.run(w, r)
	if !ok {
		return
	}

	var data any
	title := "Dashboard " + d.RunID
	switch section := r.URL.Query().Get("section"); section {
	case "metrics":
		data = d.Report.Metrics
	case "destinacao", "estado", "tamanho":
		data, _ = d.Report.Summary(analysis.Dimension(section))
	case "records":
		data = d.Dataset.Records
	default:
		data = struct {
			RunID   string
			Key     string
			Sources []string
			Report  any
		}{d.RunID, d.Key, d.Report.Sources, d.Report}
	}
	if section := r.URL.Query().Get("section"); section != "" {
		title += " - " + section
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := debugTemplate.Execute(w, debugData{Title: title, Pre: spew.Sdump(data)}); err != nil {
		s.serverError(w, r, err)
	}
}
