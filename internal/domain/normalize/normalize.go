// Package normalize converts raw contribution records of heterogeneous shape
// into the uniform ContributionEvent representation.
//
// Normalization is a pure function of its input: no internal counters leak
// across calls, so a run can always be restarted from the raw dataset.
package normalize

import (
	"context"
	"strings"
	"time"

	"github.com/prinsight/impactrank/internal/domain/model"
	"github.com/prinsight/impactrank/pkg/metrics"
)

// Event id prefixes keep pull request and review record ids from colliding
// in the shared event id space.
const (
	prEventPrefix     = "pr:"
	reviewEventPrefix = "rv:"
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithBotEngineers sets author ids whose records are dropped entirely.
func WithBotEngineers(ids []string) Option {
	return func(n *Normalizer) {
		for _, id := range ids {
			if id != "" {
				n.bots[strings.ToLower(id)] = true
			}
		}
	}
}

// Normalizer turns a Dataset into window-filtered contribution events.
type Normalizer struct {
	bots map[string]bool
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		bots: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Normalize converts the dataset into events falling inside
// [windowStart, windowEnd]. Malformed records are skipped and reported via
// the returned error slice (all of kind ErrMalformedRecord); out-of-window
// records are filtered silently. The summary tallies every disposition.
func (n *Normalizer) Normalize(ctx context.Context, ds model.Dataset, windowStart, windowEnd time.Time) ([]model.ContributionEvent, model.RunSummary, []error) {
	summary := model.RunSummary{
		RawPullRequests: len(ds.PullRequests),
		RawReviews:      len(ds.Reviews),
	}

	var errs []error
	events := make([]model.ContributionEvent, 0, len(ds.PullRequests)+len(ds.Reviews))
	seen := make(map[string]bool, len(ds.PullRequests)+len(ds.Reviews))

	// Index authors and creation times across ALL raw pull requests, not just
	// in-window ones: a review inside the window may target a pull request
	// created before it, and self-review detection still needs the author.
	prAuthors := make(map[string]string, len(ds.PullRequests))
	prCreated := make(map[string]time.Time, len(ds.PullRequests))
	for _, pr := range ds.PullRequests {
		if pr.ID != "" && pr.AuthorID != "" {
			prAuthors[pr.ID] = pr.AuthorID
			prCreated[pr.ID] = pr.CreatedAt
		}
	}

	for i := range ds.PullRequests {
		pr := &ds.PullRequests[i]

		if reason := validatePullRequest(pr); reason != "" {
			summary.MalformedRecords++
			metrics.RecordRecordMalformed()
			errs = append(errs, &MalformedRecordError{RecordKind: "pull_request", RecordID: pr.ID, Reason: reason})
			continue
		}
		if n.bots[strings.ToLower(pr.AuthorID)] {
			summary.BotFiltered++
			metrics.RecordRecordBotFiltered()
			continue
		}

		// The defining action of a pull request is its merge; unmerged pull
		// requests fall back to creation time and are excluded later by the
		// classifier's merged-state gate.
		ts := pr.CreatedAt
		merged := false
		if pr.MergedAt != nil {
			ts = *pr.MergedAt
			merged = true
		}
		if !inWindow(ts, windowStart, windowEnd) {
			summary.OutOfWindow++
			metrics.RecordRecordOutOfWindow()
			continue
		}

		eventID := prEventPrefix + pr.ID
		if seen[eventID] {
			summary.DuplicateRecords++
			metrics.RecordRecordDuplicate()
			continue
		}
		seen[eventID] = true

		events = append(events, model.ContributionEvent{
			EventID:    eventID,
			EngineerID: pr.AuthorID,
			Type:       model.EventTypePullRequest,
			Timestamp:  ts,
			SizeMetric: pr.LinesChanged,
			Labels:     pr.Labels,
			Paths:      pr.PathsTouched,
			TitleText:  pr.Title,
			Merged:     merged,
		})
		summary.Events++
		metrics.RecordRecordNormalized()
	}

	for i := range ds.Reviews {
		rv := &ds.Reviews[i]

		if reason := validateReview(rv); reason != "" {
			summary.MalformedRecords++
			metrics.RecordRecordMalformed()
			errs = append(errs, &MalformedRecordError{RecordKind: "review", RecordID: rv.ID, Reason: reason})
			continue
		}
		if n.bots[strings.ToLower(rv.ReviewerID)] {
			summary.BotFiltered++
			metrics.RecordRecordBotFiltered()
			continue
		}
		if !inWindow(rv.SubmittedAt, windowStart, windowEnd) {
			summary.OutOfWindow++
			metrics.RecordRecordOutOfWindow()
			continue
		}

		eventID := reviewEventPrefix + rv.ID
		if seen[eventID] {
			summary.DuplicateRecords++
			metrics.RecordRecordDuplicate()
			continue
		}
		seen[eventID] = true

		body := strings.TrimSpace(rv.Body)
		events = append(events, model.ContributionEvent{
			EventID:         eventID,
			EngineerID:      rv.ReviewerID,
			Type:            model.EventTypeReview,
			Timestamp:       rv.SubmittedAt,
			SizeMetric:      len(body),
			TargetPRID:      rv.PullRequestID,
			TargetAuthorID:  prAuthors[rv.PullRequestID],
			TargetCreatedAt: prCreated[rv.PullRequestID],
			Verdict:         rv.Verdict,
			HasBody:         body != "",
		})
		summary.Events++
		metrics.RecordRecordNormalized()
	}

	return events, summary, errs
}

// validatePullRequest returns a non-empty reason when a required field is
// absent or unparsable.
func validatePullRequest(pr *model.RawPullRequest) string {
	switch {
	case pr.ID == "":
		return "missing id"
	case pr.AuthorID == "":
		return "missing author identity"
	case pr.CreatedAt.IsZero() && pr.MergedAt == nil:
		return "missing timestamp"
	case pr.MergedAt != nil && pr.MergedAt.IsZero():
		return "unparsable merge timestamp"
	case pr.LinesChanged < 0:
		return "negative lines_changed"
	}
	return ""
}

// validateReview returns a non-empty reason when a required field is absent
// or unparsable.
func validateReview(rv *model.RawReview) string {
	switch {
	case rv.ID == "":
		return "missing id"
	case rv.ReviewerID == "":
		return "missing reviewer identity"
	case rv.SubmittedAt.IsZero():
		return "missing timestamp"
	case rv.PullRequestID == "":
		return "missing pull_request_id"
	}
	return ""
}

// inWindow reports whether ts falls inside the inclusive analysis window.
func inWindow(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}
