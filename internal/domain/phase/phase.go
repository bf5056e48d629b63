// Package phase locates the sub-phases of a single stroke window.
//
// Detection is anchor-driven: the impact frame is found first, then
// coil, acceleration, follow-through and split-step are searched
// outward from it. The thresholds below are empirically tuned values
// carried over unchanged; treat them as calibration data pending
// domain-expert validation, not as derivable quantities.
package phase

import (
	"math"

	"github.com/courtside/strokelab/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

const (
	// minWindowPoints is the exclusive lower bound on window size; at
	// or below it no phases are emitted.
	minWindowPoints = 5

	// Impact anchor gates.
	anchorCoilNeutralMax = 0.05
	anchorWristOffsetMax = 0.30

	// Coil search.
	coilSearchBackFrames = 20
	coilThreshold        = -0.08
	coilWristHeightMax   = -0.1
	coilSideOffsetMin    = 0.1

	// Follow-through.
	followSideThreshold = 0.20
	followDecayRatio    = 0.30
	followRecenterBand  = 0.15

	// Split-step stance gates.
	splitHipSpanMin      = 0.25
	splitShoulderSpanMin = 0.20
	splitWristHeightMax  = -0.05
	splitEnergyMax       = 0.20

	// Confidence.
	confVarianceScale   = 0.1
	impactSingletonConf = 0.6
	noPhaseConfDefault  = 0.8
	energyRatioDivisor  = 3.0
	baselineEpsilon     = 1e-3

	// Stroke confidence blend.
	phaseConfWeight   = 0.5
	energyConfWeight  = 0.3
	energyRatioWeight = 0.2
)

// indexRange is a closed run of window indices.
type indexRange struct {
	start, end int
}

// Detect returns the sub-phases of one stroke window, at most one per
// kind, strictly ordered by start time. Windows of five or fewer
// points produce no phases.
func Detect(strokeType model.StrokeType, points []model.MotionPoint) []model.PhaseSegment {
	if len(points) <= minWindowPoints {
		return nil
	}

	anchor := impactAnchor(points)
	peak := maxEnergy(points)

	var candidates []model.PhaseSegment

	coilEnd := -1
	if r, ok := coilRange(strokeType, points, anchor); ok {
		candidates = append(candidates, buildCoil(points, r))
		coilEnd = r.end
	}
	if r, ok := accelerationRange(points, coilEnd, anchor); ok {
		candidates = append(candidates, buildAcceleration(points, r))
	}
	candidates = append(candidates, buildImpact(points, anchor))
	followEnd := anchor
	if r, ok := followThroughRange(strokeType, points, anchor, peak); ok {
		candidates = append(candidates, buildFollowThrough(points, r))
		followEnd = r.end
	}
	if r, ok := splitStepRange(points, followEnd); ok {
		candidates = append(candidates, buildSplitStep(points, r))
	}

	return orderFilter(candidates)
}

// orderFilter keeps phases whose start time strictly increases;
// anything out of order is discarded.
func orderFilter(phases []model.PhaseSegment) []model.PhaseSegment {
	out := phases[:0]
	for _, p := range phases {
		if len(out) > 0 && p.Start() <= out[len(out)-1].Start() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// impactAnchor finds the first interior frame that looks like ball
// contact: a local energy peak with near-neutral or decelerating
// rotation, near-neutral shoulder coil, and the wrist near the body
// mid-line. Falls back to the globally most energetic frame.
func impactAnchor(points []model.MotionPoint) int {
	for i := 1; i < len(points)-1; i++ {
		p := points[i]
		if p.Energy <= points[i-1].Energy || p.Energy <= points[i+1].Energy {
			continue
		}
		rotOK := p.RotSign == 0 || p.RotSign < points[i-1].RotSign
		if !rotOK {
			continue
		}
		if math.Abs(p.ShoulderCoilFactor) >= anchorCoilNeutralMax {
			continue
		}
		if math.Abs(p.WristXOffsetRel) >= anchorWristOffsetMax {
			continue
		}
		return i
	}

	best := 0
	for i := 1; i < len(points); i++ {
		if points[i].Energy > points[best].Energy {
			best = i
		}
	}
	return best
}

// sideConsistent reports whether the wrist offset matches the stroke
// side for the given minimum magnitude.
func sideConsistent(t model.StrokeType, offset, minMagnitude float64) bool {
	if t == model.Backhand {
		return offset < -minMagnitude
	}
	return offset > minMagnitude
}

// coilRange searches backward from the anchor for the coil: a deeply
// coiled, backward-rotating posture with the wrist low and on the
// stroke side. Once the nearest such frame is found, the start extends
// backward while the coil stays deep and rotation has not flipped
// forward.
func coilRange(t model.StrokeType, points []model.MotionPoint, anchor int) (indexRange, bool) {
	lo := anchor - coilSearchBackFrames
	if lo < 0 {
		lo = 0
	}
	for j := anchor - 1; j >= lo; j-- {
		p := points[j]
		if p.ShoulderCoilFactor >= coilThreshold || p.RotSign >= 0 {
			continue
		}
		if p.WristHeightRel >= coilWristHeightMax {
			continue
		}
		if !sideConsistent(t, p.WristXOffsetRel, coilSideOffsetMin) {
			continue
		}
		start := j
		for start-1 >= 0 &&
			points[start-1].ShoulderCoilFactor < coilThreshold &&
			points[start-1].RotSign <= 0 {
			start--
		}
		return indexRange{start: start, end: j}, true
	}
	return indexRange{}, false
}

// accelerationRange starts at the first rotation-sign flip from <=0 to
// >0 strictly after the coil end and before the anchor, and ends at
// the last frame (scanning backward from just before impact) where the
// energy growth rate was still increasing.
func accelerationRange(points []model.MotionPoint, coilEnd, anchor int) (indexRange, bool) {
	from := coilEnd + 1
	if from < 1 {
		from = 1
	}
	start := -1
	for k := from; k < anchor; k++ {
		if points[k-1].RotSign <= 0 && points[k].RotSign > 0 {
			start = k
			break
		}
	}
	if start < 0 {
		return indexRange{}, false
	}

	end := anchor - 1
	for m := anchor - 1; m >= start+2; m-- {
		growth := points[m].Energy - points[m-1].Energy
		prevGrowth := points[m-1].Energy - points[m-2].Energy
		if growth > prevGrowth {
			end = m
			break
		}
		end = m - 1
	}
	if end < start {
		end = start
	}
	return indexRange{start: start, end: end}, true
}

// followThroughRange starts where the wrist crosses the stroke-side
// threshold after impact and ends when energy decays below 30% of the
// window peak or the wrist returns near center; otherwise it runs to
// the window end.
func followThroughRange(t model.StrokeType, points []model.MotionPoint, anchor int, peakEnergy float64) (indexRange, bool) {
	start := -1
	for k := anchor + 1; k < len(points); k++ {
		if sideConsistent(t, points[k].WristXOffsetRel, followSideThreshold) {
			start = k
			break
		}
	}
	if start < 0 {
		return indexRange{}, false
	}

	end := len(points) - 1
	for k := start + 1; k < len(points); k++ {
		if points[k].Energy < followDecayRatio*peakEnergy ||
			math.Abs(points[k].WristXOffsetRel) <= followRecenterBand {
			end = k
			break
		}
	}
	return indexRange{start: start, end: end}, true
}

// splitStepRange looks after the follow-through for a wide, low-energy
// ready stance and extends it while energy stays at that level.
func splitStepRange(points []model.MotionPoint, after int) (indexRange, bool) {
	for k := after + 1; k < len(points); k++ {
		p := points[k]
		if p.HipSpan <= splitHipSpanMin || p.ShoulderSpan <= splitShoulderSpanMin {
			continue
		}
		if p.WristHeightRel >= splitWristHeightMax {
			continue
		}
		if p.Energy >= splitEnergyMax {
			continue
		}
		end := k
		for end+1 < len(points) && points[end+1].Energy <= splitEnergyMax {
			end++
		}
		return indexRange{start: k, end: end}, true
	}
	return indexRange{}, false
}

func maxEnergy(points []model.MotionPoint) float64 {
	best := 0.0
	for _, p := range points {
		if p.Energy > best {
			best = p.Energy
		}
	}
	return best
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// spreadConfidence maps the population variance of the confidence
// source onto [0,1]: tight sources are trusted, noisy ones are not.
func spreadConfidence(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	v := stat.PopVariance(vals, nil)
	return clamp01(1 - math.Min(1, v/confVarianceScale))
}

func slicePoints(points []model.MotionPoint, r indexRange) []model.MotionPoint {
	out := make([]model.MotionPoint, r.end-r.start+1)
	copy(out, points[r.start:r.end+1])
	return out
}

func buildCoil(points []model.MotionPoint, r indexRange) model.PhaseSegment {
	run := slicePoints(points, r)
	coils := make([]float64, len(run))
	score := 0.0
	for i, p := range run {
		coils[i] = p.ShoulderCoilFactor
		if -p.ShoulderCoilFactor > score {
			score = -p.ShoulderCoilFactor
		}
	}
	return model.PhaseSegment{
		Kind:       model.PhaseCoil,
		Confidence: spreadConfidence(coils),
		Points:     run,
		Score:      score,
		Metrics:    map[string]float64{"max_coil_depth": score},
	}
}

func buildAcceleration(points []model.MotionPoint, r indexRange) model.PhaseSegment {
	run := slicePoints(points, r)
	var deltas []float64
	for i := 1; i < len(run); i++ {
		deltas = append(deltas, math.Abs(run[i].Energy-run[i-1].Energy))
	}
	return model.PhaseSegment{
		Kind:       model.PhaseAcceleration,
		Confidence: spreadConfidence(deltas),
		Points:     run,
		Score:      run[len(run)-1].Energy,
		Metrics:    map[string]float64{"end_energy": run[len(run)-1].Energy},
	}
}

func buildImpact(points []model.MotionPoint, anchor int) model.PhaseSegment {
	run := slicePoints(points, indexRange{start: anchor, end: anchor})
	return model.PhaseSegment{
		Kind: model.PhaseImpact,
		// A single sample has no spread to judge; use the fixed floor.
		Confidence: impactSingletonConf,
		Points:     run,
		Score:      run[0].Energy,
		Metrics:    map[string]float64{"impact_energy": run[0].Energy},
	}
}

func buildFollowThrough(points []model.MotionPoint, r indexRange) model.PhaseSegment {
	run := slicePoints(points, r)
	var decays []float64
	for i := 1; i < len(run); i++ {
		if d := run[i-1].Energy - run[i].Energy; d > 0 {
			decays = append(decays, d)
		}
	}
	return model.PhaseSegment{
		Kind:       model.PhaseFollowThrough,
		Confidence: spreadConfidence(decays),
		Points:     run,
		Score:      run[0].Energy,
		Metrics:    map[string]float64{"entry_energy": run[0].Energy},
	}
}

func buildSplitStep(points []model.MotionPoint, r indexRange) model.PhaseSegment {
	run := slicePoints(points, r)
	centered := make([]float64, len(run))
	score := 0.0
	for i, p := range run {
		centered[i] = 1 - math.Abs(p.WristXOffsetRel)
		if s := p.HipSpan + p.ShoulderSpan; s > score {
			score = s
		}
	}
	return model.PhaseSegment{
		Kind:       model.PhaseSplitStep,
		Confidence: spreadConfidence(centered),
		Points:     run,
		Score:      score,
		Metrics:    map[string]float64{"max_stance_width": score},
	}
}

// StrokeConfidence blends the mean phase confidence, the steadiness of
// the window's energy series, and how far the window's peak rises
// above the session baseline.
func StrokeConfidence(phases []model.PhaseSegment, points []model.MotionPoint, baseline float64) float64 {
	phaseConf := noPhaseConfDefault
	if len(phases) > 0 {
		sum := 0.0
		for _, p := range phases {
			sum += p.Confidence
		}
		phaseConf = sum / float64(len(phases))
	}

	energies := make([]float64, len(points))
	for i, p := range points {
		energies[i] = p.Energy
	}
	energyConf := spreadConfidence(energies)

	ratio := math.Min(1, (maxEnergy(points)/(baseline+baselineEpsilon))/energyRatioDivisor)

	return clamp01(phaseConfWeight*phaseConf + energyConfWeight*energyConf + energyRatioWeight*ratio)
}
