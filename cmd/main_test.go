package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smartystreets/goconvey/convey"

	app "github.com/okian/fika/internal/app"
	"github.com/okian/fika/internal/config"
	"github.com/okian/fika/pkg/logger"
	"github.com/okian/fika/pkg/metrics"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("FIKA_ADDR", ":8080")
			_ = os.Setenv("FIKA_MATCH_DAY", "Friday")
			defer func() {
				_ = os.Unsetenv("FIKA_ADDR")
				_ = os.Unsetenv("FIKA_MATCH_DAY")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MatchDay, convey.ShouldEqual, "Friday")
			})
		})

		convey.Convey("When selecting the store", func() {
			cfg := config.New()
			log := logger.Get()

			convey.Convey("Then an empty DSN falls back to the in-memory store", func() {
				store, cleanup, err := buildStore(ctx, cfg, log)
				defer cleanup()
				convey.So(err, convey.ShouldBeNil)
				convey.So(store, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When selecting the notifier", func() {
			cfg := config.New()
			log := logger.Get()

			convey.Convey("Then a missing token falls back to the log notifier", func() {
				sender, err := buildNotifier(ctx, cfg, log)
				convey.So(err, convey.ShouldBeNil)
				convey.So(sender, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When serving health and metrics", func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

			convey.Convey("Then the health endpoint answers", func() {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And the metrics endpoint answers", func() {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
