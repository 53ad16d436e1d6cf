// Package httpapi exposes the read-only operational surface: Prometheus
// scrape target, a liveness probe, and a status snapshot of the
// scheduler and the live threshold set.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sawpanic/memescan/internal/model"
	"github.com/sawpanic/memescan/internal/scheduler"
	"github.com/sawpanic/memescan/internal/threshold"
)

// Server is the local-only monitoring HTTP server. It never serves
// mutating endpoints; every route is a GET.
type Server struct {
	router     *mux.Router
	httpServer *http.Server

	scheduler  *scheduler.Scheduler
	thresholds *threshold.Store
	version    string
	startedAt  time.Time
}

// Config controls the listener and timeouts.
type Config struct {
	ListenAddr   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func DefaultConfig(listenAddr string) Config {
	return Config{
		ListenAddr:   listenAddr,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// New wires the router and server. gatherer is whatever
// prometheus.Registerer was passed to metrics.NewRegistry, so /metrics
// reflects exactly the metrics this process registered.
func New(cfg Config, gatherer prometheus.Gatherer, sched *scheduler.Scheduler, thresholds *threshold.Store, version string) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		scheduler:  sched,
		thresholds: thresholds,
		version:    version,
		startedAt:  time.Now(),
	}

	s.router.Use(loggingMiddleware)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Handler exposes the underlying mux, for tests that want to exercise
// routes with httptest without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving until the server errors or is shut down.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("httpapi server starting")
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctxTimeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), ctxTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
	}
	writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Scheduler  scheduler.Status `json:"scheduler"`
	Thresholds model.Thresholds `json:"thresholds"`
	Version    string           `json:"version"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Version: s.version,
	}
	if s.scheduler != nil {
		resp.Scheduler = s.scheduler.Status()
	}
	if s.thresholds != nil {
		resp.Thresholds = s.thresholds.Current()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("httpapi: failed to encode response")
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("httpapi request")
	})
}
