package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with defaults on a private registry", func() {
			m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then defaults apply", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "teampicker")
				So(m.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			m := NewManager(
				WithNamespace("ns"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithRefreshInterval(3*time.Second),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then they are honoured", func() {
				So(m.namespace, ShouldEqual, "ns")
				So(m.subsystem, ShouldEqual, "sub")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 2, 3})
				So(m.RefreshInterval(), ShouldEqual, 3*time.Second)
				So(m.constLabels["env"], ShouldEqual, "test")
			})
		})

		Convey("When options get zero values", func() {
			m := NewManager(WithNamespace(""), WithRefreshInterval(0), WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "teampicker")
				So(m.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		Convey("When recording commands", func() {
			before := testutil.ToFloat64(globalManager.commands.WithLabelValues("join", "ok"))
			RecordCommand("join", "ok", 1.5)
			RecordCommand("join", "ok", 0.5)

			Convey("Then the counter moves", func() {
				So(testutil.ToFloat64(globalManager.commands.WithLabelValues("join", "ok"))-before, ShouldEqual, 2)
			})
		})

		Convey("When recording results and adjustments", func() {
			before := testutil.ToFloat64(globalManager.ratingAdjusted)
			RecordResult("team1")
			RecordRatingAdjustments(10)
			RecordMatchCommitted()

			Convey("Then the adjustment counter grows by ten", func() {
				So(testutil.ToFloat64(globalManager.ratingAdjusted)-before, ShouldEqual, 10)
			})
		})

		Convey("When updating gauges", func() {
			UpdateRooms(3)
			UpdateParticipants(27)
			UpdateShardCount(4)
			UpdateQueueDepth("0", 5)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.rooms), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.participants), ShouldEqual, 27)
				So(testutil.ToFloat64(globalManager.queueDepth.WithLabelValues("0")), ShouldEqual, 5)
			})
		})

		Convey("When recording the remaining series", func() {
			So(func() {
				RecordSearch(0.3, 0, 0.01)
				RecordQueueRejected("full")
				RecordTaskLatency(0.2)
				RecordDuplicateInput("discord")
				RecordHTTPRequest("join", "POST", "201", 1)
				RecordHTTPError("join", "POST", "client_error")
				RecordErrorByComponent("repository", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)
		})

		Convey("Then the registry gathers without error", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
