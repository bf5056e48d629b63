package metrics_test

import (
	"testing"

	"github.com/courtside/strokelab/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(metrics.WithRegistry(reg), metrics.WithNamespace("test"))
		So(m, ShouldNotBeNil)

		Convey("Then the collectors are registered and gatherable", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Counters without observations are still registered; gauges show up.
			So(families, ShouldNotBeEmpty)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then the recording helpers do not panic", func() {
			metrics.RecordFramesIngested(10)
			metrics.RecordMotionPointBuilt()
			metrics.RecordMotionPointDropped()
			metrics.RecordStrokeDetected("forehand")
			metrics.RecordAnalysisStarted()
			metrics.RecordAnalysisCompleted(0.42)
			metrics.UpdateQueueDepth(3)
			metrics.UpdateWorkerCount(4)
			metrics.RecordExportFailure()
			metrics.RecordFrameDuplicate()
			So(metrics.GetRegistry(), ShouldNotBeNil)
		})
	})
}
