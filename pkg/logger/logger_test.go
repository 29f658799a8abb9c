package logger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prinsight/impactrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an uninitialized logger package", t, func() {
		Convey("When Init is called", func() {
			err := logger.Init()

			Convey("Then it should succeed and Get should return a logger", func() {
				So(err, ShouldBeNil)
				So(logger.Get(), ShouldNotBeNil)
			})

			Convey("And the logger should accept all levels without panicking", func() {
				l := logger.Get()
				ctx := context.Background()
				So(func() {
					l.Debug(ctx, "debug message", logger.String("k", "v"))
					l.Info(ctx, "info message", logger.Int("count", 1))
					l.Warn(ctx, "warn message", logger.Float64("score", 1.5))
					l.Error(ctx, "error message", logger.Error(errors.New("boom")))
				}, ShouldNotPanic)
			})
		})
	})
}

func TestNamedLogger(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When a named logger is created", func() {
			named := logger.Named("engine")

			Convey("Then it should be usable independently", func() {
				So(named, ShouldNotBeNil)
				So(func() {
					named.Info(context.Background(), "named message",
						logger.Duration("elapsed", 5*time.Millisecond),
						logger.Time("at", time.Now()),
					)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When valid levels are set", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When an unknown level is set", func() {
			err := logger.SetLevelString("verbose")

			Convey("Then it should return an error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
