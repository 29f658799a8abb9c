// Package repository provides storage for completed scoring runs.
package repository

import (
	"context"

	"github.com/prinsight/impactrank/internal/domain/model"
)

// Store is the persistence port for scoring results. Implementations must be
// safe for concurrent use.
type Store interface {
	// Put stores one completed run, keyed by its run id.
	Put(ctx context.Context, result model.Result) error

	// Get returns a stored run by id. Returns ErrNotFound when absent.
	Get(ctx context.Context, runID string) (model.Result, error)

	// Latest returns the most recently stored run. Returns ErrNotFound when
	// the store is empty.
	Latest(ctx context.Context) (model.Result, error)

	// Count reports how many runs are currently retained.
	Count(ctx context.Context) (int, error)
}
