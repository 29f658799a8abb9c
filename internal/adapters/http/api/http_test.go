package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/prinsight/impactrank/internal/adapters/http/api"
	"github.com/prinsight/impactrank/internal/adapters/repository"
	"github.com/prinsight/impactrank/internal/app"
	"github.com/prinsight/impactrank/internal/domain/model"
	"github.com/prinsight/impactrank/internal/engine"
	"github.com/prinsight/impactrank/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newTestMux(opts ...api.Option) *http.ServeMux {
	svc, err := app.New(
		app.WithEngine(engine.New()),
		app.WithStore(repository.NewRunStore()),
	)
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	api.NewServer(svc, opts...).Register(context.Background(), mux)
	return mux
}

func datasetBody() string {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mergedAt := start.Add(48 * time.Hour)
	ds := model.Dataset{
		WindowStart: start,
		WindowEnd:   start.AddDate(0, 3, 0),
		PullRequests: []model.RawPullRequest{{
			ID:           "pr-1",
			AuthorID:     "alice",
			CreatedAt:    start.Add(24 * time.Hour),
			MergedAt:     &mergedAt,
			LinesChanged: 150,
			PathsTouched: []string{"internal/a.go"},
		}},
	}
	b, _ := json.Marshal(ds)
	return string(b)
}

func TestRunsEndpoints(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newTestMux()

		Convey("When posting a valid dataset", func() {
			req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(datasetBody()))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the run result should come back as 201", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)

				var result model.Result
				So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
				So(result.RunID, ShouldNotBeEmpty)
				So(result.Ranking, ShouldHaveLength, 1)
				So(result.Ranking[0].EngineerID, ShouldEqual, "alice")
			})

			Convey("And the run becomes fetchable by id and as latest", func() {
				var result model.Result
				So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)

				byID := httptest.NewRecorder()
				mux.ServeHTTP(byID, httptest.NewRequest(http.MethodGet, "/runs/"+result.RunID, nil))
				So(byID.Code, ShouldEqual, http.StatusOK)

				latest := httptest.NewRecorder()
				mux.ServeHTTP(latest, httptest.NewRequest(http.MethodGet, "/runs/latest", nil))
				So(latest.Code, ShouldEqual, http.StatusOK)

				var latestResult model.Result
				So(json.Unmarshal(latest.Body.Bytes(), &latestResult), ShouldBeNil)
				So(latestResult.RunID, ShouldEqual, result.RunID)
			})
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader("{nope"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the request should be rejected with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting a dataset with inverted window bounds", func() {
			body := `{"window_start": "2026-03-01T00:00:00Z", "window_end": "2026-01-01T00:00:00Z"}`
			req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then validation should reject it with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When fetching an unknown run id", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/nope", nil))

			Convey("Then the API should answer 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When fetching the latest run before any exist", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs/latest", nil))

			Convey("Then the API should answer 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When using the wrong method", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))

			Convey("Then the API should answer 405", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})

	Convey("Given a tight body size cap", t, func() {
		mux := newTestMux(api.WithMaxBodyBytes(16))

		Convey("When posting a dataset over the cap", func() {
			req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(datasetBody()))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then the API should answer 413", func() {
				So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
			})
		})
	})

	Convey("Given a strict rate limit", t, func() {
		mux := newTestMux(api.WithRateLimit(1, 1))

		Convey("When posting twice in quick succession", func() {
			first := httptest.NewRecorder()
			mux.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(datasetBody())))
			second := httptest.NewRecorder()
			mux.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(datasetBody())))

			Convey("Then the second request should be throttled", func() {
				So(first.Code, ShouldEqual, http.StatusCreated)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
			})
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newTestMux()

		Convey("When fetching stats on a fresh service", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then an empty snapshot should come back", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var stats api.Stats
				So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
				So(stats.RetainedRuns, ShouldEqual, 0)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given the API routes", t, func() {
		mux := newTestMux()

		Convey("When scraping the health endpoint", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then process metrics should be served", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "impactrank")
			})
		})
	})
}
