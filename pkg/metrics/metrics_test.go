package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the service namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "lingprofile")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewMetricsManager(
				WithNamespace("test"),
				WithSubsystem("radar"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "radar")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})

			Convey("Then the collectors are registered under the given names", func() {
				manager.renderFrames.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_radar_render_frames_total"], ShouldBeTrue)
			})
		})

		Convey("When metrics are disabled", func() {
			manager := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then the manager records nothing", func() {
				So(manager.enabled, ShouldBeFalse)
			})
		})

		Convey("When empty option values are passed", func() {
			manager := NewManager(WithNamespace(""), WithSubsystem(""), WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "lingprofile")
				So(manager.subsystem, ShouldEqual, "core")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording conversions", func() {
			before := testutil.ToFloat64(globalManager.conversions.WithLabelValues("perc", "ok"))
			RecordConversion("perc", "ok")

			Convey("Then the labelled counter grows by one", func() {
				So(testutil.ToFloat64(globalManager.conversions.WithLabelValues("perc", "ok")), ShouldEqual, before+1)
			})
		})

		Convey("When recording an empty analysis", func() {
			analyses := testutil.ToFloat64(globalManager.analyses)
			empty := testutil.ToFloat64(globalManager.emptyAnalyses)
			RecordAnalysis(0, true)

			Convey("Then only the empty counter moves", func() {
				So(testutil.ToFloat64(globalManager.analyses), ShouldEqual, analyses)
				So(testutil.ToFloat64(globalManager.emptyAnalyses), ShouldEqual, empty+1)
			})
		})

		Convey("When updating queue gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(64)

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 64)
			})
		})

		Convey("When recording the remaining series", func() {
			Convey("Then none of them panic", func() {
				So(func() {
					RecordHypothesis("PSF")
					RecordRenderFrame(1.2)
					RecordRenderTransition("full")
					RecordCaseOperation("save", "ok", 0.4)
					RecordExport("png", "ok", 12)
					RecordExportDuplicate()
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerActiveCount(2)
					RecordHTTPRequest("/convert", "POST", "200")
					RecordHTTPRequestDuration("/convert", "POST", "200", 0.3)
					RecordErrorByComponent("store", "not_found")
					RecordErrorByEndpoint("/cases", "GET", "not_found")
					UpdateSystemMetrics()
				}, ShouldNotPanic)
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}
