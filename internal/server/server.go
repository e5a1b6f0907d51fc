// Package server exposes the mood pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/kmatsu/vibecheck/internal/config"
	"github.com/kmatsu/vibecheck/internal/mood"
)

// Reporter runs the full pipeline once. Satisfied by mood.Service.
type Reporter interface {
	Report(ctx context.Context) (*mood.Report, error)
}

// SnapshotSource serves the last polled report. Satisfied by
// poll.Service; nil when polling is disabled.
type SnapshotSource interface {
	Latest() *mood.Report
}

type Server struct {
	reporter  Reporter
	snapshots SnapshotSource
	httpSrv   *http.Server
	log       zerolog.Logger
}

func New(cfg config.ServerConfig, reporter Reporter, snapshots SnapshotSource, log zerolog.Logger) *Server {
	s := &Server{
		reporter:  reporter,
		snapshots: snapshots,
		log:       log,
	}
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/mood", s.handleMood)
	r.Get("/api/mood/latest", s.handleLatest)
	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMood runs the whole pipeline. This is the single catch point:
// every aggregator, classifier, and configuration failure lands here
// and becomes a 500 with the raw message.
func (s *Server) handleMood(w http.ResponseWriter, r *http.Request) {
	report, err := s.reporter.Report(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("mood pipeline failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	if s.snapshots == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "polling disabled"})
		return
	}
	report := s.snapshots.Latest()
	if report == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot yet"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
