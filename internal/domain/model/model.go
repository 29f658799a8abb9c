// Package model contains domain models passed between pipeline stages.
package model

import "time"

// EventType discriminates the two kinds of contribution events.
type EventType string

// Known event types.
const (
	EventTypePullRequest EventType = "pull_request"
	EventTypeReview      EventType = "review"
)

// Category is a contribution category tag. An event may carry several tags;
// they are never mutually exclusive.
type Category string

// Known categories.
const (
	CategoryFeature Category = "feature"
	CategoryReview  Category = "review"
	CategoryInfra   Category = "infra"
)

// Categories returns all categories in canonical order. The order is load
// bearing: aggregation and output iteration always follow it so results stay
// deterministic.
func Categories() []Category {
	return []Category{CategoryFeature, CategoryReview, CategoryInfra}
}

// CategorySet is the set of tags applied to one event.
type CategorySet map[Category]bool

// Add inserts a category into the set.
func (s CategorySet) Add(c Category) { s[c] = true }

// Has reports whether the set contains a category.
func (s CategorySet) Has(c Category) bool { return s[c] }

// Empty reports whether no tags were applied.
func (s CategorySet) Empty() bool { return len(s) == 0 }

// Verdict is an explicit review decision. An empty verdict means the review
// carried no decision (comment-only).
type Verdict string

// Known verdicts.
const (
	VerdictNone             Verdict = ""
	VerdictApprove          Verdict = "approve"
	VerdictChangesRequested Verdict = "changes_requested"
)

// Explicit reports whether the verdict carries decision responsibility.
func (v Verdict) Explicit() bool {
	return v == VerdictApprove || v == VerdictChangesRequested
}

// RawPullRequest is one already-fetched pull request record, as handed over
// by the acquisition collaborator.
type RawPullRequest struct {
	ID           string     `json:"id"`
	AuthorID     string     `json:"author_id"`
	CreatedAt    time.Time  `json:"created_at"`
	MergedAt     *time.Time `json:"merged_at"`
	PathsTouched []string   `json:"paths_touched"`
	LinesChanged int        `json:"lines_changed"`
	Title        string     `json:"title"`
	Labels       []string   `json:"labels,omitempty"`
}

// RawReview is one already-fetched review record.
type RawReview struct {
	ID            string    `json:"id"`
	ReviewerID    string    `json:"reviewer_id"`
	PullRequestID string    `json:"pull_request_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
	Body          string    `json:"body"`
	Verdict       Verdict   `json:"verdict"`
}

// Dataset is the complete input for one scoring run. Truncated signals the
// acquisition collaborator handed over an explicitly partial dataset.
type Dataset struct {
	PullRequests []RawPullRequest `json:"pull_requests"`
	Reviews      []RawReview      `json:"reviews"`
	WindowStart  time.Time        `json:"window_start"`
	WindowEnd    time.Time        `json:"window_end"`
	Truncated    bool             `json:"truncated"`
}

// ContributionEvent is the uniform internal representation of one atomic unit
// of activity. All pipeline stages after the normalizer operate on it.
type ContributionEvent struct {
	EventID    string
	EngineerID string
	Type       EventType
	Timestamp  time.Time
	SizeMetric int
	Labels     []string
	Paths      []string
	TitleText  string
	Merged     bool

	// Review-only fields. TargetAuthorID is resolved from the pull request
	// index so self-reviews can be excluded; it stays empty when the reviewed
	// pull request is not part of the dataset.
	TargetPRID      string
	TargetAuthorID  string
	TargetCreatedAt time.Time
	Verdict         Verdict
	HasBody         bool
}

// EngineerProfile is the per-engineer aggregation unit. Profiles are created
// fresh per run and discarded once the ranked result is emitted.
type EngineerProfile struct {
	EngineerID     string
	Subscores      map[Category]float64
	CompositeScore float64
	// Supporting holds, per category, the event ids that contributed to the
	// subscore in processing order.
	Supporting map[Category][]string
}

// RankedEntry is one row of the ranked output.
type RankedEntry struct {
	Rank             int                  `json:"rank"`
	EngineerID       string               `json:"engineer_id"`
	CompositeScore   float64              `json:"composite_score"`
	Subscores        map[Category]float64 `json:"subscores"`
	SupportingEvents []string             `json:"supporting_events"`
	EventCounts      map[Category]int     `json:"event_counts"`
}

// RunSummary tallies what happened to the raw input during one run. Skipped
// records are counted here rather than failing the run.
type RunSummary struct {
	RawPullRequests  int `json:"raw_pull_requests"`
	RawReviews       int `json:"raw_reviews"`
	MalformedRecords int `json:"malformed_records"`
	OutOfWindow      int `json:"out_of_window"`
	BotFiltered      int `json:"bot_filtered"`
	DuplicateRecords int `json:"duplicate_records"`
	Events           int `json:"events"`
	EngineersScored  int `json:"engineers_scored"`
}

// Result is the output of one scoring run. An empty Ranking with a populated
// Summary is a valid result, distinct from a failed run.
type Result struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	WindowStart time.Time     `json:"window_start"`
	WindowEnd   time.Time     `json:"window_end"`
	Truncated   bool          `json:"truncated"`
	Ranking     []RankedEntry `json:"ranking"`
	Summary     RunSummary    `json:"summary"`
}
