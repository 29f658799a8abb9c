package metrics_test

import (
	"testing"

	"github.com/prinsight/impactrank/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given the metrics package", t, func() {
		Convey("When a manager is created with a private registry", func() {
			reg := prometheus.NewRegistry()
			m := metrics.NewManager(
				metrics.WithPrometheusRegistry(reg),
				metrics.WithNamespace("testns"),
				metrics.WithSubsystem("testsub"),
			)

			Convey("Then it should not be nil", func() {
				So(m, ShouldNotBeNil)
			})

			Convey("And the registry should expose the registered metrics", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording pipeline metrics", func() {
			So(func() {
				metrics.RecordRecordNormalized()
				metrics.RecordRecordMalformed()
				metrics.RecordRecordOutOfWindow()
				metrics.RecordRecordBotFiltered()
				metrics.RecordRecordDuplicate()
				metrics.RecordEventTagged("feature")
				metrics.RecordEventDiscarded()
				metrics.RecordRunCompleted()
				metrics.RecordRunDuration(12.5)
				metrics.UpdateEngineersRanked(5)
				metrics.UpdateEngineersScored(12)
				metrics.RecordChunkLatency(3.0)
				metrics.UpdateWorkerCount(4)
				metrics.RecordHTTPRequest("runs", "POST", "202")
				metrics.RecordHTTPRequestDuration("runs", "POST", "202", 8.0)
				metrics.RecordHTTPRateLimited()
			}, ShouldNotPanic)
		})

		Convey("When reading the global registry", func() {
			reg := metrics.GetRegistry()

			Convey("Then it should gather without error", func() {
				families, err := reg.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
