// Package scoring defines the per-category scoring policy.
//
// The numbers here are policy constants, not structural requirements: each
// category increment is a pure, swappable function so the weighting policy
// can change without touching classification or aggregation logic.
package scoring

import (
	"math"
	"regexp"
	"time"

	"github.com/prinsight/impactrank/internal/domain/model"
)

// Documented policy defaults.
const (
	// Feature increments follow log1p(lines changed): diminishing returns,
	// so one very large pull request does not dominate many small
	// well-scoped ones. minScorableSize floors the curve input so a zero
	// size can never produce a NaN or negative contribution.
	minScorableSize = 1

	// Infra work is systematically under-sized relative to its leverage; a
	// flat bonus above the marginal feature increment at small sizes
	// (log1p(25) ~= 3.26) corrects for this.
	infraEventWeight = 4.0

	// Review increments are flat per event. Verdict reviews (approve or
	// changes requested) carry decision responsibility and score higher
	// than comment-only reviews.
	reviewEventWeight   = 1.0
	verdictReviewFactor = 1.5

	// Bugfix deliveries run small in lines changed but their value is not
	// proportional to size; a flat title-based bonus offsets the curve.
	bugfixTitleBonus = 1.0

	// Reviews submitted within a day of the pull request's creation unblock
	// the author fastest and earn a small additive bonus.
	earlyReviewWindow = 24 * time.Hour
	earlyReviewBonus  = 0.25

	// Composite weights. Feature delivery is weighted highest but review and
	// infra are not negligible.
	defaultFeatureWeight = 0.5
	defaultReviewWeight  = 0.25
	defaultInfraWeight   = 0.25
)

// Increment computes the subscore contribution of one tagged event. It must
// be pure and must never return NaN or Inf.
type Increment func(e model.ContributionEvent) float64

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithWeights sets the composite weights per category. Callers are expected
// to have validated that the weights sum to 1.
func WithWeights(weights map[model.Category]float64) Option {
	return func(p *Policy) {
		for cat, w := range weights {
			if w >= 0 {
				p.weights[cat] = w
			}
		}
	}
}

// WithWeightMap sets composite weights from a string-keyed configuration map.
func WithWeightMap(weights map[string]float64) Option {
	return func(p *Policy) {
		for key, w := range weights {
			if w >= 0 {
				p.weights[model.Category(key)] = w
			}
		}
	}
}

// WithIncrement swaps the scoring function for one category.
func WithIncrement(cat model.Category, fn Increment) Option {
	return func(p *Policy) {
		if fn != nil {
			p.increments[cat] = fn
		}
	}
}

// Policy bundles the per-category increments and the composite weights.
type Policy struct {
	increments map[model.Category]Increment
	weights    map[model.Category]float64
}

// New creates a Policy with the documented default constants.
func New(opts ...Option) *Policy {
	p := &Policy{
		increments: map[model.Category]Increment{
			model.CategoryFeature: FeatureIncrement,
			model.CategoryReview:  ReviewIncrement,
			model.CategoryInfra:   InfraIncrement,
		},
		weights: map[model.Category]float64{
			model.CategoryFeature: defaultFeatureWeight,
			model.CategoryReview:  defaultReviewWeight,
			model.CategoryInfra:   defaultInfraWeight,
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Increment computes the subscore contribution of one event for one category.
// The result is clamped to a non-negative finite value so subscores can never
// go NaN or negative.
func (p *Policy) Increment(cat model.Category, e model.ContributionEvent) float64 {
	fn, ok := p.increments[cat]
	if !ok {
		return 0
	}
	v := fn(e)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Weight returns the composite weight for one category.
func (p *Policy) Weight(cat model.Category) float64 {
	return p.weights[cat]
}

// Composite folds subscores into the single weighted-sum ranking number,
// always iterating categories in canonical order so the sum is reproducible
// bit for bit.
func (p *Policy) Composite(subscores map[model.Category]float64) float64 {
	total := 0.0
	for _, cat := range model.Categories() {
		total += p.weights[cat] * subscores[cat]
	}
	return total
}

// bugfixTitle matches pull request titles announcing a fix.
var bugfixTitle = regexp.MustCompile(`(?i)\b(fix(es|ed)?|bug|bugfix|hotfix|patch)\b`)

// FeatureIncrement is the default feature scoring function: a
// diminishing-returns curve over the size metric, plus a flat bonus for
// bugfix-titled pull requests.
func FeatureIncrement(e model.ContributionEvent) float64 {
	size := e.SizeMetric
	if size < minScorableSize {
		size = minScorableSize
	}
	pts := math.Log1p(float64(size))
	if bugfixTitle.MatchString(e.TitleText) {
		pts += bugfixTitleBonus
	}
	return pts
}

// InfraIncrement is the default infra scoring function: flat per event.
func InfraIncrement(_ model.ContributionEvent) float64 {
	return infraEventWeight
}

// ReviewIncrement is the default review scoring function: flat per event,
// scaled up for verdict reviews, with a small bonus for early reviews.
func ReviewIncrement(e model.ContributionEvent) float64 {
	pts := reviewEventWeight
	if e.Verdict.Explicit() {
		pts *= verdictReviewFactor
	}
	if !e.TargetCreatedAt.IsZero() && e.Timestamp.Sub(e.TargetCreatedAt) <= earlyReviewWindow {
		pts += earlyReviewBonus
	}
	return pts
}
