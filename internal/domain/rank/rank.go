// Package rank orders engineer profiles into the final top-N output.
//
// Ranking is a pure, one-shot transform: no persistent session and no
// incremental update state.
package rank

import (
	"sort"

	"github.com/prinsight/impactrank/internal/domain/model"
)

// defaultTopN is the documented default ranking length.
const defaultTopN = 5

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithTopN caps the ranked output length.
func WithTopN(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.topN = n
		}
	}
}

// Ranker orders profiles by composite score with deterministic tie-breaking.
type Ranker struct {
	topN int
}

// New creates a Ranker with configuration options.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		topN: defaultTopN,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Rank returns the top-N entries by composite score descending. Engineers
// with a zero composite score are excluded entirely, so the output may
// legitimately hold fewer than N entries. Tie-breaks apply only when
// composite scores are bit-for-bit equal: higher feature subscore, then
// higher review subscore, then lexicographically smaller engineer id. The
// ordering is fully deterministic for identical input.
func (r *Ranker) Rank(profiles map[string]*model.EngineerProfile) []model.RankedEntry {
	candidates := make([]*model.EngineerProfile, 0, len(profiles))
	for _, p := range profiles {
		if p == nil || p.CompositeScore == 0 {
			continue
		}
		candidates = append(candidates, p)
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.Subscores[model.CategoryFeature] != b.Subscores[model.CategoryFeature] {
			return a.Subscores[model.CategoryFeature] > b.Subscores[model.CategoryFeature]
		}
		if a.Subscores[model.CategoryReview] != b.Subscores[model.CategoryReview] {
			return a.Subscores[model.CategoryReview] > b.Subscores[model.CategoryReview]
		}
		return a.EngineerID < b.EngineerID
	})

	if len(candidates) > r.topN {
		candidates = candidates[:r.topN]
	}

	entries := make([]model.RankedEntry, len(candidates))
	for i, p := range candidates {
		entries[i] = model.RankedEntry{
			Rank:             i + 1,
			EngineerID:       p.EngineerID,
			CompositeScore:   p.CompositeScore,
			Subscores:        p.Subscores,
			SupportingEvents: flattenSupporting(p.Supporting),
			EventCounts:      countSupporting(p.Supporting),
		}
	}
	return entries
}

// flattenSupporting merges per-category evidence into one ordered, duplicate
// free list. Categories are walked in canonical order; an event tagged both
// feature and infra appears once.
func flattenSupporting(supporting map[model.Category][]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, cat := range model.Categories() {
		for _, id := range supporting[cat] {
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// countSupporting reports how many events contributed per category, so a
// consumer can render "shipped N merged PRs" style evidence bullets.
func countSupporting(supporting map[model.Category][]string) map[model.Category]int {
	counts := make(map[model.Category]int, len(supporting))
	for _, cat := range model.Categories() {
		if n := len(supporting[cat]); n > 0 {
			counts[cat] = n
		}
	}
	return counts
}
