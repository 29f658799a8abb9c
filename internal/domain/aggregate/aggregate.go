// Package aggregate folds classified events into per-engineer profiles.
//
// Aggregation is associative and commutative over input event order: for a
// fixed input set the composite score is identical, bit for bit, regardless
// of processing order. This is a required property, not an optimization
// detail, and is what makes the fan-out in the engine safe.
package aggregate

import (
	"sort"

	"github.com/prinsight/impactrank/internal/domain/model"
	"github.com/prinsight/impactrank/internal/domain/scoring"
)

// contribution is one event's points toward one category subscore.
type contribution struct {
	eventID  string
	category model.Category
	points   float64
}

// partialProfile accumulates contributions for one engineer within one
// partial. Contributions stay unsummed until finalization so they can be
// re-ordered canonically first.
type partialProfile struct {
	contributions []contribution
	supporting    map[model.Category][]string
}

// Partial is one worker's share of the fold. Partials are merged by the
// Aggregator in worker index order, which keeps supporting-event sequences
// deterministic.
type Partial struct {
	policy   *scoring.Policy
	profiles map[string]*partialProfile
	order    []string // engineer ids in first-seen order
}

// NewPartial creates an empty partial bound to a scoring policy.
func NewPartial(policy *scoring.Policy) *Partial {
	return &Partial{
		policy:   policy,
		profiles: make(map[string]*partialProfile),
	}
}

// Add folds one classified event into the partial. Subscores are incremented
// independently per tag, never split.
func (p *Partial) Add(e model.ContributionEvent, tags model.CategorySet) {
	if tags.Empty() {
		return
	}

	prof, ok := p.profiles[e.EngineerID]
	if !ok {
		prof = &partialProfile{
			supporting: make(map[model.Category][]string),
		}
		p.profiles[e.EngineerID] = prof
		p.order = append(p.order, e.EngineerID)
	}

	for _, cat := range model.Categories() {
		if !tags.Has(cat) {
			continue
		}
		prof.contributions = append(prof.contributions, contribution{
			eventID:  e.EventID,
			category: cat,
			points:   p.policy.Increment(cat, e),
		})
		prof.supporting[cat] = append(prof.supporting[cat], e.EventID)
	}
}

// Engineers returns the number of distinct engineers observed so far.
func (p *Partial) Engineers() int {
	return len(p.profiles)
}

// Aggregator merges partials and finalizes engineer profiles.
type Aggregator struct {
	policy *scoring.Policy
}

// New creates an Aggregator bound to a scoring policy.
func New(policy *scoring.Policy) *Aggregator {
	return &Aggregator{policy: policy}
}

// Merge combines per-worker partials into finalized profiles, one per
// distinct engineer. Partials must be passed in worker index order: subscores
// add, supporting-event sequences concatenate in partial order then original
// sequence order.
func (a *Aggregator) Merge(partials ...*Partial) map[string]*model.EngineerProfile {
	merged := make(map[string]*partialProfile)
	var order []string

	for _, p := range partials {
		if p == nil {
			continue
		}
		for _, id := range p.order {
			src := p.profiles[id]
			dst, ok := merged[id]
			if !ok {
				dst = &partialProfile{
					supporting: make(map[model.Category][]string),
				}
				merged[id] = dst
				order = append(order, id)
			}
			dst.contributions = append(dst.contributions, src.contributions...)
			for _, cat := range model.Categories() {
				dst.supporting[cat] = append(dst.supporting[cat], src.supporting[cat]...)
			}
		}
	}

	profiles := make(map[string]*model.EngineerProfile, len(merged))
	for _, id := range order {
		profiles[id] = a.finalize(id, merged[id])
	}
	return profiles
}

// finalize sums an engineer's contributions into subscores and the weighted
// composite. Contributions are summed in canonical (event id, category)
// order: float addition is not associative, so a canonical order is the only
// way to make composite scores bit-identical under input permutation.
func (a *Aggregator) finalize(engineerID string, prof *partialProfile) *model.EngineerProfile {
	contribs := make([]contribution, len(prof.contributions))
	copy(contribs, prof.contributions)
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].eventID != contribs[j].eventID {
			return contribs[i].eventID < contribs[j].eventID
		}
		return contribs[i].category < contribs[j].category
	})

	subscores := make(map[model.Category]float64, len(model.Categories()))
	for _, cat := range model.Categories() {
		subscores[cat] = 0
	}
	for _, c := range contribs {
		subscores[c.category] += c.points
	}

	supporting := make(map[model.Category][]string, len(prof.supporting))
	for _, cat := range model.Categories() {
		if len(prof.supporting[cat]) > 0 {
			supporting[cat] = prof.supporting[cat]
		}
	}

	return &model.EngineerProfile{
		EngineerID:     engineerID,
		Subscores:      subscores,
		CompositeScore: a.policy.Composite(subscores),
		Supporting:     supporting,
	}
}
