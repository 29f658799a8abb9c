package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/prinsight/impactrank/internal/domain/model"
)

// defaultHistorySize bounds retained runs so a long-lived process cannot grow
// without limit.
const defaultHistorySize = 32

// Option applies a configuration option to the RunStore.
type Option func(*RunStore)

// WithHistorySize sets how many completed runs are retained before the oldest
// is evicted.
func WithHistorySize(size int) Option {
	return func(s *RunStore) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// RunStore is a bounded in-memory Store. Eviction is strictly oldest-first by
// insertion order.
type RunStore struct {
	mu          sync.RWMutex
	runs        map[string]model.Result
	order       []string
	historySize int
}

// NewRunStore creates a RunStore with configuration options.
func NewRunStore(opts ...Option) *RunStore {
	s := &RunStore{
		runs:        make(map[string]model.Result),
		historySize: defaultHistorySize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Put stores one run, evicting the oldest retained run when over capacity.
// Re-putting an existing id overwrites in place without consuming capacity.
func (s *RunStore) Put(_ context.Context, result model.Result) error {
	if result.RunID == "" {
		return fmt.Errorf("put run: %w", ErrEmptyRunID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[result.RunID]; !exists {
		s.order = append(s.order, result.RunID)
		for len(s.order) > s.historySize {
			evicted := s.order[0]
			s.order = s.order[1:]
			delete(s.runs, evicted)
		}
	}
	s.runs[result.RunID] = result

	return nil
}

// Get returns a stored run by id.
func (s *RunStore) Get(_ context.Context, runID string) (model.Result, error) {
	if runID == "" {
		return model.Result{}, fmt.Errorf("get run: %w", ErrEmptyRunID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.runs[runID]
	if !ok {
		return model.Result{}, fmt.Errorf("get run %q: %w", runID, ErrNotFound)
	}
	return result, nil
}

// Latest returns the most recently stored run.
func (s *RunStore) Latest(_ context.Context) (model.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return model.Result{}, fmt.Errorf("latest run: %w", ErrNotFound)
	}
	return s.runs[s.order[len(s.order)-1]], nil
}

// Count reports how many runs are retained.
func (s *RunStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order), nil
}
