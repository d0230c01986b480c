package metrics_test

import (
	"testing"

	"github.com/okian/fika/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManager(t *testing.T) {
	Convey("Given a new metrics manager", t, func() {
		registry := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithPrometheusRegistry(registry))

		Convey("Then it should be created without error", func() {
			So(m, ShouldNotBeNil)
		})

		Convey("And the registry should expose the registered metrics", func() {
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording cycle and pairing metrics", func() {
			So(func() {
				metrics.RecordCycleRun(12.5)
				metrics.RecordCycleFailure()
				metrics.UpdateEligibleMembers(7)
				metrics.RecordPairingCreated()
				metrics.RecordTrioGroup()
				metrics.RecordPairingInsertError()
			}, ShouldNotPanic)
		})

		Convey("When recording lifecycle and notification metrics", func() {
			So(func() {
				metrics.RecordTransition("accepted")
				metrics.RecordNotificationSent("new_pairing")
				metrics.RecordNotificationFailure("reminder")
				metrics.RecordReminderPass()
				metrics.RecordTickError("matching")
			}, ShouldNotPanic)
		})

		Convey("When recording repository and system metrics", func() {
			So(func() {
				metrics.RecordRepositoryQueryLatency(1.2)
				metrics.RecordRepositoryUpdateLatency(0.8)
				metrics.UpdateSystemMemoryUsage(1024)
				metrics.UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry should be reachable", func() {
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
