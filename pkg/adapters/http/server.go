// Package http exposes the engine's overlay population for introspection,
// plus the Prometheus metrics endpoint.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mathrick/lively/pkg/domain"
)

// Engine defines the interface for the lively engine core, as seen by the
// introspection server.
type Engine interface {
	Overlays() []domain.Overlay
	UpdateAllNow(ctx context.Context)
	StopAll(ctx context.Context)
	Running() bool
}

// Server serves the introspection API.
type Server struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler creates the HTTP handler:
//
//	GET    /overlays  overlay snapshot + scheduler state
//	POST   /update    force an immediate render pass
//	DELETE /overlays  global teardown (stop-all)
//	GET    /metrics   Prometheus metrics
func NewHandler(engine Engine, logger *slog.Logger) http.Handler {
	s := &Server{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Get("/overlays", s.listOverlays)
	r.Post("/update", s.forceUpdate)
	r.Delete("/overlays", s.stopAll)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type overlayJSON struct {
	ID      string       `json:"id"`
	DocID   string       `json:"doc_id"`
	Span    domain.Span  `json:"span"`
	State   domain.State `json:"state"`
	Display *string      `json:"display,omitempty"`
}

type overlaysResponse struct {
	Running  bool          `json:"running"`
	Overlays []overlayJSON `json:"overlays"`
}

func (s *Server) listOverlays(w http.ResponseWriter, r *http.Request) {
	snapshot := s.engine.Overlays()
	resp := overlaysResponse{
		Running:  s.engine.Running(),
		Overlays: make([]overlayJSON, 0, len(snapshot)),
	}
	for _, o := range snapshot {
		oj := overlayJSON{
			ID:    o.ID,
			DocID: o.DocID,
			Span:  o.Span,
			State: o.State,
		}
		if text, ok := o.Display.Text(); ok {
			oj.Display = &text
		}
		resp.Overlays = append(resp.Overlays, oj)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) forceUpdate(w http.ResponseWriter, r *http.Request) {
	s.engine.UpdateAllNow(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) stopAll(w http.ResponseWriter, r *http.Request) {
	s.engine.StopAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
