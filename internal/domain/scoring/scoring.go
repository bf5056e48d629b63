// Package scoring grades individual strokes and aggregates them into
// per-hand and overall session scores.
package scoring

import (
	"github.com/courtside/strokelab/internal/domain/model"
)

// Default phase weights. The five weights sum to 1 so a complete,
// fully confident stroke scores its plain weighted phase sum.
const (
	defaultCoilWeight          = 0.25
	defaultAccelerationWeight  = 0.25
	defaultImpactWeight        = 0.20
	defaultFollowThroughWeight = 0.20
	defaultSplitStepWeight     = 0.10

	// trimMinSamples is the hand-average sample count at which the
	// single best and worst strokes are dropped before averaging.
	trimMinSamples = 3

	phaseKindCount = 5
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPhaseWeightsFromConfig sets phase weights from a configuration
// map keyed by phase kind name. Non-positive weights and unknown kinds
// are ignored, keeping the defaults for those phases.
func WithPhaseWeightsFromConfig(weights map[string]float64) Option {
	return func(e *Engine) {
		for name, weight := range weights {
			kind := model.PhaseKind(name)
			if weight <= 0 || model.PhaseOrder(kind) < 0 {
				continue
			}
			e.weights[kind] = weight
		}
	}
}

// Engine computes stroke and video scores.
type Engine struct {
	weights map[model.PhaseKind]float64
}

// NewEngine creates a scoring engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights: map[model.PhaseKind]float64{
			model.PhaseCoil:          defaultCoilWeight,
			model.PhaseAcceleration:  defaultAccelerationWeight,
			model.PhaseImpact:        defaultImpactWeight,
			model.PhaseFollowThrough: defaultFollowThroughWeight,
			model.PhaseSplitStep:     defaultSplitStepWeight,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScoreStroke grades one stroke: the weighted sum of its phase scores,
// discounted by phase completeness and by the mean phase confidence.
// Missing phases contribute zero to all three factors.
func (e *Engine) ScoreStroke(s model.StrokeSegment) model.StrokeScore {
	total := 0.0
	nonzero := 0
	confSum := 0.0
	subMetrics := make(map[string]float64, len(s.Phases)+2)

	for _, p := range s.Phases {
		total += e.weights[p.Kind] * p.Score
		confSum += p.Confidence
		subMetrics[string(p.Kind)] = p.Score
		if p.Score > 0 {
			nonzero++
		}
	}

	completeness := float64(nonzero) / phaseKindCount
	avgConfidence := 0.0
	if len(s.Phases) > 0 {
		avgConfidence = confSum / float64(len(s.Phases))
	}
	subMetrics["completeness"] = completeness
	subMetrics["confidence"] = avgConfidence

	return model.StrokeScore{
		StrokeID:   s.ID,
		Type:       s.Type,
		Phases:     s.Phases,
		TotalScore: total * completeness * avgConfidence,
		SubMetrics: subMetrics,
	}
}

// ScoreVideo grades every stroke and aggregates per-hand trimmed
// averages plus the overall score. A hand with no strokes has a nil
// average; the overall score is the mean of the hand averages that
// exist, or zero when neither does.
func (e *Engine) ScoreVideo(strokes []model.StrokeSegment) model.VideoScore {
	score := model.VideoScore{}
	totalsByType := map[model.StrokeType][]float64{}

	for _, s := range strokes {
		graded := e.ScoreStroke(s)
		score.Strokes = append(score.Strokes, graded)
		totalsByType[s.Type] = append(totalsByType[s.Type], graded.TotalScore)
	}

	if totals, ok := totalsByType[model.Forehand]; ok {
		avg := trimmedMean(totals)
		score.ForehandAvg = &avg
	}
	if totals, ok := totalsByType[model.Backhand]; ok {
		avg := trimmedMean(totals)
		score.BackhandAvg = &avg
	}

	switch {
	case score.ForehandAvg != nil && score.BackhandAvg != nil:
		score.Overall = (*score.ForehandAvg + *score.BackhandAvg) / 2
	case score.ForehandAvg != nil:
		score.Overall = *score.ForehandAvg
	case score.BackhandAvg != nil:
		score.Overall = *score.BackhandAvg
	}
	return score
}

// trimmedMean averages vals after dropping the single highest and
// single lowest value, provided at least three samples exist;
// otherwise it is the plain mean. An empty input yields zero.
func trimmedMean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	minVal, maxVal := vals[0], vals[0]
	for _, v := range vals {
		sum += v
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if len(vals) < trimMinSamples {
		return sum / float64(len(vals))
	}
	return (sum - minVal - maxVal) / float64(len(vals)-2)
}
