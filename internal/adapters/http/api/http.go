// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prinsight/impactrank/internal/adapters/repository"
	"github.com/prinsight/impactrank/internal/app"
	"github.com/prinsight/impactrank/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SubmitDataset runs a full scoring run over one dataset.
	SubmitDataset(ctx context.Context, ds model.Dataset) (model.Result, error)

	// Read operations expose stored runs.
	Run(ctx context.Context, runID string) (model.Result, error)
	LatestRun(ctx context.Context) (model.Result, error)
	GetStats(ctx context.Context) (Stats, error)
}

// Stats mirrors the read shape returned by stats queries.
type Stats = app.Stats

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRateLimit enables per-client rate limiting on the mutating routes.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.limiter = newClientLimiter(rps, burst)
		}
	}
}

// WithMaxBodyBytes caps the accepted request body size for dataset uploads.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	runsHandler   *RunsHandler
	limiter       *clientLimiter
	maxBodyBytes  int64
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		runsHandler:   NewRunsHandler(deps),
		maxBodyBytes:  defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleHealth)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/runs/latest", MetricsMiddleware(s.runsHandler.HandleGetLatest, "runs_latest"))
	mux.HandleFunc("/runs/", MetricsMiddleware(s.runsHandler.HandleGetRun, "runs_get"))
	mux.HandleFunc("/runs", MetricsMiddleware(
		s.rateLimited(s.bodyLimited(s.runsHandler.HandlePostRun)), "runs_post"))
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return RateLimitMiddleware(next, s.limiter)
}

func (s *Server) bodyLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		next.ServeHTTP(w, r)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
