// Package metrics provides Prometheus metrics for the stroke analysis
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	// Pipeline throughput
	framesIngested     prometheus.Counter
	motionPointsBuilt  prometheus.Counter
	motionPointsDropped prometheus.Counter
	strokesDetected    *prometheus.CounterVec
	analysesStarted    prometheus.Counter
	analysesCompleted  prometheus.Counter
	analysisDuration   prometheus.Histogram

	// Fork-join pool health
	queueDepth  prometheus.Gauge
	workerCount prometheus.Gauge

	// Degradations
	exportFailures prometheus.Counter
	framesDuplicate prometheus.Counter
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the metric namespace.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithBuckets overrides the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry sets the target registry.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry so the promhttp handler exposes only our collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "strokelab",
		subsystem: "pipeline",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.framesIngested = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frames_ingested_total",
		Help: "Pose frames received from the pose source.",
	})
	m.motionPointsBuilt = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "motion_points_built_total",
		Help: "Motion points with all metrics defined.",
	})
	m.motionPointsDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "motion_points_dropped_total",
		Help: "Frame pairs dropped because a metric was undefined.",
	})
	m.strokesDetected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "strokes_detected_total",
		Help: "Classified stroke segments by type.",
	}, []string{"type"})
	m.analysesStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "analyses_started_total",
		Help: "Analysis runs started.",
	})
	m.analysesCompleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "analyses_completed_total",
		Help: "Analysis runs completed (including degenerate zero results).",
	})
	m.analysisDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "analysis_duration_seconds",
		Help:    "Wall time of one full analysis run.",
		Buckets: m.buckets,
	})
	m.queueDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "extraction_queue_depth",
		Help: "Pending frame-pair jobs in the extraction queue.",
	})
	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "extraction_workers",
		Help: "Workers in the extraction pool.",
	})
	m.exportFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "clip_export_failures_total",
		Help: "Best-clip exports that degraded to the original video reference.",
	})
	m.framesDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "frames_duplicate_total",
		Help: "Pose frames skipped as duplicates of an already-seen frame id.",
	})

	return m
}

// Package-level helpers recording on the global manager.

func RecordFramesIngested(n int) {
	globalManager.framesIngested.Add(float64(n))
}

func RecordMotionPointBuilt() {
	globalManager.motionPointsBuilt.Inc()
}

func RecordMotionPointDropped() {
	globalManager.motionPointsDropped.Inc()
}

func RecordStrokeDetected(strokeType string) {
	globalManager.strokesDetected.WithLabelValues(strokeType).Inc()
}

func RecordAnalysisStarted() {
	globalManager.analysesStarted.Inc()
}

func RecordAnalysisCompleted(durationSeconds float64) {
	globalManager.analysesCompleted.Inc()
	globalManager.analysisDuration.Observe(durationSeconds)
}

func UpdateQueueDepth(n int) {
	globalManager.queueDepth.Set(float64(n))
}

func UpdateWorkerCount(n int) {
	globalManager.workerCount.Set(float64(n))
}

func RecordExportFailure() {
	globalManager.exportFailures.Inc()
}

func RecordFrameDuplicate() {
	globalManager.framesDuplicate.Inc()
}

// GetRegistry returns the registry backing the global manager, for the
// /metrics HTTP handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
