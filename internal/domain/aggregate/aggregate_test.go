package aggregate_test

import (
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/prinsight/impactrank/internal/domain/aggregate"
	"github.com/prinsight/impactrank/internal/domain/classify"
	"github.com/prinsight/impactrank/internal/domain/model"
	"github.com/prinsight/impactrank/internal/domain/scoring"
)

func prEvent(id, engineer string, size int, paths ...string) model.ContributionEvent {
	return model.ContributionEvent{
		EventID:    id,
		EngineerID: engineer,
		Type:       model.EventTypePullRequest,
		Merged:     true,
		SizeMetric: size,
		Paths:      paths,
	}
}

func reviewEvent(id, engineer string) model.ContributionEvent {
	return model.ContributionEvent{
		EventID:    id,
		EngineerID: engineer,
		Type:       model.EventTypeReview,
		Verdict:    model.VerdictApprove,
	}
}

func TestAggregation(t *testing.T) {
	policy := scoring.New()
	classifier := classify.New()

	Convey("Given classified events for one engineer", t, func() {
		partial := aggregate.NewPartial(policy)
		events := []model.ContributionEvent{
			prEvent("pr:1", "alice", 100, "internal/a.go"),
			prEvent("pr:2", "alice", 60, "scripts/x.sh", "internal/b.go"),
			reviewEvent("rv:1", "alice"),
		}
		for _, e := range events {
			partial.Add(e, classifier.Classify(e))
		}

		Convey("When merging the single partial", func() {
			profiles := aggregate.New(policy).Merge(partial)

			Convey("Then subscores should accumulate per category", func() {
				So(profiles, ShouldHaveLength, 1)
				p := profiles["alice"]
				So(p, ShouldNotBeNil)
				So(p.Subscores[model.CategoryFeature], ShouldBeGreaterThan, 0)
				So(p.Subscores[model.CategoryInfra], ShouldAlmostEqual, 4.0)
				So(p.Subscores[model.CategoryReview], ShouldAlmostEqual, 1.5)
				So(p.CompositeScore, ShouldBeGreaterThan, 0)
			})

			Convey("Then a multi-tag event contributes to both subscores", func() {
				p := profiles["alice"]
				So(p.Supporting[model.CategoryFeature], ShouldContain, "pr:2")
				So(p.Supporting[model.CategoryInfra], ShouldContain, "pr:2")
			})
		})
	})

	Convey("Given a partial folding events from several engineers", t, func() {
		partial := aggregate.NewPartial(policy)
		partial.Add(prEvent("pr:1", "alice", 100, "internal/a.go"), model.CategorySet{model.CategoryFeature: true})
		partial.Add(prEvent("pr:2", "alice", 60, "internal/b.go"), model.CategorySet{model.CategoryFeature: true})
		partial.Add(reviewEvent("rv:1", "bob"), model.CategorySet{model.CategoryReview: true})
		partial.Add(prEvent("pr:3", "carol", 500, "internal/c.go"), model.CategorySet{})

		Convey("When counting engineers", func() {
			Convey("Then only engineers with tagged events count, once each", func() {
				So(partial.Engineers(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given an event with no tags", t, func() {
		partial := aggregate.NewPartial(policy)
		partial.Add(prEvent("pr:1", "alice", 500), model.CategorySet{})

		Convey("When merging", func() {
			profiles := aggregate.New(policy).Merge(partial)

			Convey("Then no profile should be created", func() {
				So(profiles, ShouldBeEmpty)
			})
		})
	})

	Convey("Given the same events in shuffled orders and splits", t, func() {
		events := make([]model.ContributionEvent, 0, 60)
		for i := 0; i < 20; i++ {
			events = append(events, prEvent(eventID("pr", i), engineer(i%5), 30+i*13, "internal/f.go"))
			events = append(events, prEvent(eventID("inf", i), engineer(i%3), 40, "ci/pipeline.yml"))
			events = append(events, reviewEvent(eventID("rv", i), engineer(i%4)))
		}

		run := func(shuffled []model.ContributionEvent, splits int) map[string]*model.EngineerProfile {
			partials := make([]*aggregate.Partial, splits)
			for i := range partials {
				partials[i] = aggregate.NewPartial(policy)
			}
			for i, e := range shuffled {
				partials[i%splits].Add(e, classifier.Classify(e))
			}
			return aggregate.New(policy).Merge(partials...)
		}

		baseline := run(events, 1)

		Convey("When aggregating permutations across varying partial counts", func() {
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))

			Convey("Then composite scores should be bit-for-bit identical", func() {
				for trial := 0; trial < 10; trial++ {
					shuffled := make([]model.ContributionEvent, len(events))
					copy(shuffled, events)
					rng.Shuffle(len(shuffled), func(i, j int) {
						shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
					})

					got := run(shuffled, 1+rng.Intn(7))
					So(got, ShouldHaveLength, len(baseline))
					for id, want := range baseline {
						So(got[id], ShouldNotBeNil)
						So(got[id].CompositeScore, ShouldEqual, want.CompositeScore)
						for _, cat := range model.Categories() {
							So(got[id].Subscores[cat], ShouldEqual, want.Subscores[cat])
						}
					}
				}
			})
		})
	})
}

func eventID(kind string, i int) string {
	return kind + ":" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26))
}

func engineer(i int) string {
	return "eng-" + string(rune('a'+i))
}
