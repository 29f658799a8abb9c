// Package app wires the scoring engine and run store into the application
// service consumed by the transport layer.
package app

import (
	"context"
	"fmt"

	"github.com/prinsight/impactrank/internal/adapters/repository"
	"github.com/prinsight/impactrank/internal/domain/model"
	"github.com/prinsight/impactrank/internal/engine"
	"github.com/prinsight/impactrank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the scoring engine.
func WithEngine(e *engine.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithStore sets the run store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Stats is a point-in-time snapshot of service activity.
type Stats struct {
	RetainedRuns  int               `json:"retained_runs"`
	LatestRunID   string            `json:"latest_run_id,omitempty"`
	LatestSummary *model.RunSummary `json:"latest_summary,omitempty"`
}

// Service executes scoring runs and serves stored results.
type Service struct {
	engine *engine.Engine
	store  repository.Store
	logger logger.Logger
}

// New creates a Service with configuration options. An engine and a store are
// required.
func New(opts ...Option) (*Service, error) {
	s := &Service{}

	for _, opt := range opts {
		opt(s)
	}

	if s.engine == nil {
		return nil, ErrNoEngine
	}
	if s.store == nil {
		return nil, ErrNoStore
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	return s, nil
}

// SubmitDataset runs the full pipeline over one dataset and stores the
// result.
func (s *Service) SubmitDataset(ctx context.Context, ds model.Dataset) (model.Result, error) {
	result, err := s.engine.Run(ctx, ds)
	if err != nil {
		return model.Result{}, fmt.Errorf("scoring run: %w", err)
	}

	if err := s.store.Put(ctx, result); err != nil {
		// The run itself succeeded; losing retention is worth a warning but
		// the caller still gets the result.
		s.logger.Warn(ctx, "failed to retain run", logger.String("runID", result.RunID), logger.Error(err))
	}

	return result, nil
}

// Run returns one stored run by id.
func (s *Service) Run(ctx context.Context, runID string) (model.Result, error) {
	return s.store.Get(ctx, runID)
}

// LatestRun returns the most recently stored run.
func (s *Service) LatestRun(ctx context.Context) (model.Result, error) {
	return s.store.Latest(ctx)
}

// GetStats returns a snapshot of service activity.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("count runs: %w", err)
	}

	stats := Stats{RetainedRuns: count}
	if latest, err := s.store.Latest(ctx); err == nil {
		stats.LatestRunID = latest.RunID
		summary := latest.Summary
		stats.LatestSummary = &summary
	}
	return stats, nil
}
