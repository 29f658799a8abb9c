// Package engine orchestrates the scoring pipeline: normalize, classify,
// aggregate, rank.
//
// The pipeline is a single-pass, order-independent fold. Classification of
// one event never depends on another event, and aggregation is associative
// and commutative, so the classify+score stage fans out across workers. Each
// worker folds a contiguous chunk of the event slice into its own partial;
// partials merge in chunk index order, which keeps supporting-event
// sequences deterministic without any cross-worker coordination.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prinsight/impactrank/internal/domain/aggregate"
	"github.com/prinsight/impactrank/internal/domain/classify"
	"github.com/prinsight/impactrank/internal/domain/model"
	"github.com/prinsight/impactrank/internal/domain/normalize"
	"github.com/prinsight/impactrank/internal/domain/rank"
	"github.com/prinsight/impactrank/internal/domain/scoring"
	"github.com/prinsight/impactrank/pkg/logger"
	"github.com/prinsight/impactrank/pkg/metrics"
)

const (
	defaultWorkerCount = 4
	defaultWindowDays  = 90

	hoursPerDay = 24
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWorkerCount sets the number of fan-out workers.
func WithWorkerCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.workerCount = count
		}
	}
}

// WithWindowDays sets the trailing window applied when a dataset carries no
// explicit window bounds.
func WithWindowDays(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.windowDays = days
		}
	}
}

// WithNormalizer sets a custom normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(e *Engine) {
		if n != nil {
			e.normalizer = n
		}
	}
}

// WithClassifier sets a custom classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithPolicy sets a custom scoring policy.
func WithPolicy(p *scoring.Policy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithRanker sets a custom ranker.
func WithRanker(r *rank.Ranker) Option {
	return func(e *Engine) {
		if r != nil {
			e.ranker = r
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source used to derive implicit windows. Tests pin
// it for reproducible runs.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine runs the full pipeline over one dataset per call. It keeps no
// cross-run mutable state: profiles are created fresh per run and discarded
// once the result is emitted.
type Engine struct {
	normalizer  *normalize.Normalizer
	classifier  *classify.Classifier
	policy      *scoring.Policy
	ranker      *rank.Ranker
	workerCount int
	windowDays  int
	now         func() time.Time
	logger      logger.Logger
}

// New constructs an Engine with default components.
func New(opts ...Option) *Engine {
	e := &Engine{
		normalizer:  normalize.New(),
		classifier:  classify.New(),
		policy:      scoring.New(),
		ranker:      rank.New(),
		workerCount: defaultWorkerCount,
		windowDays:  defaultWindowDays,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	return e
}

// Run executes one scoring run. An empty ranking is a valid result, distinct
// from a failed run; the only failure modes are a cancelled context and a
// dataset with inverted window bounds.
func (e *Engine) Run(ctx context.Context, ds model.Dataset) (model.Result, error) {
	start := time.Now()

	windowStart, windowEnd, err := e.resolveWindow(ds)
	if err != nil {
		metrics.RecordRunFailed()
		return model.Result{}, err
	}

	events, summary, recordErrs := e.normalizer.Normalize(ctx, ds, windowStart, windowEnd)
	for _, rerr := range recordErrs {
		e.logger.Debug(ctx, "skipped malformed record", logger.Error(rerr))
	}
	if len(recordErrs) > 0 {
		e.logger.Warn(ctx, "some raw records were malformed and skipped",
			logger.Int("malformed", summary.MalformedRecords),
		)
	}

	profiles, err := e.fold(ctx, events)
	if err != nil {
		metrics.RecordRunFailed()
		return model.Result{}, err
	}
	summary.EngineersScored = len(profiles)

	ranking := e.ranker.Rank(profiles)

	result := model.Result{
		RunID:       uuid.NewString(),
		GeneratedAt: e.now().UTC(),
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Truncated:   ds.Truncated,
		Ranking:     ranking,
		Summary:     summary,
	}

	elapsed := time.Since(start)
	metrics.RecordRunCompleted()
	metrics.RecordRunDuration(float64(elapsed.Milliseconds()))
	metrics.UpdateEngineersRanked(len(ranking))
	metrics.UpdateEngineersScored(len(profiles))
	metrics.UpdateWorkerCount(e.workerCount)

	e.logger.Info(ctx, "scoring run completed",
		logger.String("runID", result.RunID),
		logger.Int("events", summary.Events),
		logger.Int("engineers", len(profiles)),
		logger.Int("ranked", len(ranking)),
		logger.Duration("elapsed", elapsed),
	)

	return result, nil
}

// resolveWindow returns the analysis window for a dataset. Explicit bounds
// win; otherwise a trailing window of windowDays ending now is applied.
func (e *Engine) resolveWindow(ds model.Dataset) (time.Time, time.Time, error) {
	start, end := ds.WindowStart, ds.WindowEnd
	if start.IsZero() && end.IsZero() {
		end = e.now().UTC()
		start = end.Add(-time.Duration(e.windowDays) * hoursPerDay * time.Hour)
		return start, end, nil
	}
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: window [%s, %s]", ErrInvalidWindow, start, end)
	}
	return start, end, nil
}

// fold classifies and scores events across workers and merges the partials.
func (e *Engine) fold(ctx context.Context, events []model.ContributionEvent) (map[string]*model.EngineerProfile, error) {
	workers := e.workerCount
	if workers > len(events) {
		workers = len(events)
	}
	if workers < 1 {
		workers = 1
	}

	partials := make([]*aggregate.Partial, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo, hi := chunkBounds(len(events), workers, w)
		partials[w] = aggregate.NewPartial(e.policy)

		wg.Add(1)
		go func(idx int, chunk []model.ContributionEvent) {
			defer wg.Done()
			chunkStart := time.Now()
			for i := range chunk {
				if ctx.Err() != nil {
					return
				}
				ev := chunk[i]
				partials[idx].Add(ev, e.classifier.Classify(ev))
			}
			metrics.RecordChunkLatency(float64(time.Since(chunkStart).Milliseconds()))
			e.logger.Debug(ctx, "chunk folded",
				logger.Int("chunk", idx),
				logger.Int("events", len(chunk)),
				logger.Int("engineers", partials[idx].Engineers()),
			)
		}(w, events[lo:hi])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring run cancelled: %w", err)
	}

	return aggregate.New(e.policy).Merge(partials...), nil
}

// chunkBounds splits n items into count contiguous chunks and returns the
// half-open bounds of chunk idx. Chunks differ in length by at most one.
func chunkBounds(n, count, idx int) (int, int) {
	base := n / count
	rem := n % count
	lo := idx*base + min(idx, rem)
	size := base
	if idx < rem {
		size++
	}
	return lo, lo + size
}
