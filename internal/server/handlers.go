package server

import (
	"bytes"
	"net/http"
	"strings"
	"sync"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/KaramelBytes/cnodash/internal/pipeline"
	"github.com/KaramelBytes/cnodash/internal/render"
)

// pageCache keeps the page rendered for the latest run.
type pageCache struct {
	mu    sync.Mutex
	runID string
	body  []byte
}

func (c *pageCache) get(runID string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.body == nil || c.runID != runID {
		return nil, false
	}
	return c.body, true
}

func (c *pageCache) put(runID string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runID, c.body = runID, body
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := s.run(w, r)
	if !ok {
		return
	}
	body, hit := s.page.get(d.RunID)
	if !hit {
		view, err := render.NewPageView(d.Report, d.RunID, d.GeneratedAt)
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := render.RenderPage(&buf, view); err != nil {
			s.serverError(w, r, err)
			return
		}
		body = buf.Bytes()
		s.page.put(d.RunID, body)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Run-Id", d.RunID)
	_, _ = w.Write(body)
}

func (s *Server) chartHandler(w http.ResponseWriter, r *http.Request) {
	name := httprouter.ParamsFromContext(r.Context()).ByName("panel")
	spec, ok := render.LookupPanel(strings.TrimSuffix(name, ".svg"))
	if !ok || !strings.HasSuffix(name, ".svg") {
		http.NotFound(w, r)
		return
	}
	d, ok := s.run(w, r)
	if !ok {
		return
	}
	summary, _ := d.Report.Summary(spec.Dimension)
	svg, err := render.BarChart(summary, spec.ChartStyle)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("X-Run-Id", d.RunID)
	_, _ = w.Write(svg)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) (*pipeline.Dashboard, bool) {
	d, err := s.runner.Run(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return d, true
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
