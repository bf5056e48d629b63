// Package segment delimits and classifies candidate stroke windows in
// the motion series.
//
// Segmentation is energy-driven: windows run from one energy valley to
// the next and must contain at least one interior peak. Classification
// carries hysteresis state across windows, so the whole pass is
// strictly sequential.
package segment

import (
	"context"
	"sort"

	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/courtside/strokelab/internal/domain/phase"
	"github.com/courtside/strokelab/pkg/logger"
	"github.com/courtside/strokelab/pkg/metrics"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// Energy landscape thresholds. Empirically tuned; carried over
// unchanged pending domain-expert validation.
const (
	baselinePercentile  = 0.20
	valleyBaselineRatio = 0.25
	peakBaselineRatio   = 1.3
	extremumEdgeMargin  = 2
)

// Engine finds, classifies and phase-segments stroke windows.
type Engine struct {
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a segmentation engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: logger.Get().Named("segment")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Baseline returns the 20th-percentile energy of the series, the
// reference level for valley and peak thresholds.
func Baseline(points []model.MotionPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	energies := make([]float64, len(points))
	for i, p := range points {
		energies[i] = p.Energy
	}
	sort.Float64s(energies)
	return stat.Quantile(baselinePercentile, stat.Empirical, energies, nil)
}

// Segment scans the motion series for stroke windows and emits one
// StrokeSegment per valley-pair window containing an interior energy
// peak. Fewer than two points produce zero segments.
func (e *Engine) Segment(ctx context.Context, points []model.MotionPoint) []model.StrokeSegment {
	if len(points) < 2 {
		return nil
	}

	baseline := Baseline(points)
	peaks, valleys := extrema(points, baseline)

	st := NewClassifierState()
	var segments []model.StrokeSegment
	for i := 0; i+1 < len(valleys); i++ {
		lo, hi := valleys[i], valleys[i+1]
		if !hasPeakBetween(peaks, lo, hi) {
			continue
		}
		window := points[lo : hi+1]

		var strokeType model.StrokeType
		strokeType, st = ClassifyWindow(window, st)

		phases := phase.Detect(strokeType, window)
		confidence := phase.StrokeConfidence(phases, window, baseline)

		run := make([]model.MotionPoint, len(window))
		copy(run, window)

		segments = append(segments, model.StrokeSegment{
			ID:         uuid.New().String(),
			Type:       strokeType,
			StartTime:  window[0].Timestamp,
			EndTime:    window[len(window)-1].Timestamp,
			Points:     run,
			Phases:     phases,
			Confidence: confidence,
		})
		metrics.RecordStrokeDetected(string(strokeType))
	}

	e.logger.Debug(ctx, "segmentation complete",
		logger.Int("points", len(points)),
		logger.Int("valleys", len(valleys)),
		logger.Int("peaks", len(peaks)),
		logger.Int("strokes", len(segments)),
	)
	return segments
}

// extrema finds energy peaks and valleys, leaving a two-sample margin
// at both edges of the series.
func extrema(points []model.MotionPoint, baseline float64) (peaks, valleys []int) {
	peakMin := peakBaselineRatio * baseline
	valleyMax := valleyBaselineRatio * baseline

	for i := extremumEdgeMargin; i < len(points)-extremumEdgeMargin; i++ {
		e := points[i].Energy
		prev, next := points[i-1].Energy, points[i+1].Energy
		switch {
		case e > prev && e > next && e > peakMin:
			peaks = append(peaks, i)
		case e < prev && e < next && e < valleyMax:
			valleys = append(valleys, i)
		}
	}
	return peaks, valleys
}

func hasPeakBetween(peaks []int, lo, hi int) bool {
	for _, p := range peaks {
		if p > lo && p < hi {
			return true
		}
	}
	return false
}
