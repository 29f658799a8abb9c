package repository_test

import (
	"context"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/prinsight/impactrank/internal/adapters/repository"
	"github.com/prinsight/impactrank/internal/domain/model"
)

func TestRunStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty run store", t, func() {
		store := repository.NewRunStore()

		Convey("When asking for the latest run", func() {
			_, err := store.Latest(ctx)

			Convey("Then it should report not found", func() {
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})

		Convey("When storing and fetching a run", func() {
			So(store.Put(ctx, model.Result{RunID: "run-1"}), ShouldBeNil)

			got, err := store.Get(ctx, "run-1")

			Convey("Then the stored run should come back", func() {
				So(err, ShouldBeNil)
				So(got.RunID, ShouldEqual, "run-1")
			})

			Convey("And the latest run should be the stored one", func() {
				latest, lerr := store.Latest(ctx)
				So(lerr, ShouldBeNil)
				So(latest.RunID, ShouldEqual, "run-1")
			})
		})

		Convey("When storing a run without an id", func() {
			err := store.Put(ctx, model.Result{})

			Convey("Then the put should be rejected", func() {
				So(err, ShouldWrap, repository.ErrEmptyRunID)
			})
		})

		Convey("When fetching an unknown run", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then it should report not found", func() {
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})
	})

	Convey("Given a store bounded to three runs", t, func() {
		store := repository.NewRunStore(repository.WithHistorySize(3))

		Convey("When storing five runs", func() {
			for i := 1; i <= 5; i++ {
				So(store.Put(ctx, model.Result{RunID: fmt.Sprintf("run-%d", i)}), ShouldBeNil)
			}

			Convey("Then only the newest three are retained", func() {
				count, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 3)

				_, err = store.Get(ctx, "run-1")
				So(err, ShouldWrap, repository.ErrNotFound)
				_, err = store.Get(ctx, "run-2")
				So(err, ShouldWrap, repository.ErrNotFound)

				latest, err := store.Latest(ctx)
				So(err, ShouldBeNil)
				So(latest.RunID, ShouldEqual, "run-5")
			})
		})

		Convey("When overwriting an existing run id", func() {
			So(store.Put(ctx, model.Result{RunID: "run-1", Truncated: false}), ShouldBeNil)
			So(store.Put(ctx, model.Result{RunID: "run-1", Truncated: true}), ShouldBeNil)

			Convey("Then no extra capacity is consumed", func() {
				count, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)

				got, err := store.Get(ctx, "run-1")
				So(err, ShouldBeNil)
				So(got.Truncated, ShouldBeTrue)
			})
		})
	})
}
