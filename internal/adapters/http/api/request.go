// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"time"

	"github.com/prinsight/impactrank/internal/domain/model"
)

// datasetRequest mirrors the wire schema for POST /runs. Per-record problems
// are the normalizer's business; validation here covers only structural
// issues that make the whole request unusable.
type datasetRequest struct {
	PullRequests []model.RawPullRequest `json:"pull_requests"`
	Reviews      []model.RawReview      `json:"reviews"`
	WindowStart  time.Time              `json:"window_start"`
	WindowEnd    time.Time              `json:"window_end"`
	Truncated    bool                   `json:"truncated"`
}

func (d datasetRequest) validate() error {
	bothSet := !d.WindowStart.IsZero() && !d.WindowEnd.IsZero()
	bothZero := d.WindowStart.IsZero() && d.WindowEnd.IsZero()
	if !bothSet && !bothZero {
		return fmt.Errorf("%w: window_start and window_end must be provided together", ErrBadRequest)
	}
	if bothSet && d.WindowEnd.Before(d.WindowStart) {
		return fmt.Errorf("%w: window_end precedes window_start", ErrBadRequest)
	}
	return nil
}

func (d datasetRequest) toDataset() model.Dataset {
	return model.Dataset{
		PullRequests: d.PullRequests,
		Reviews:      d.Reviews,
		WindowStart:  d.WindowStart,
		WindowEnd:    d.WindowEnd,
		Truncated:    d.Truncated,
	}
}
