package segment

import (
	"math"

	"github.com/courtside/strokelab/internal/domain/model"
)

// Classifier thresholds. Empirically tuned; carried over unchanged.
const (
	minOffsetMagnitude = 0.05 // below this the wrist is effectively centered
	minShoulderSpan    = 0.05 // below this the pose is degenerate
	ambiguousOffsetMax = 0.1  // offsets in the ambiguous band retain the current type
	switchOffsetMin    = 0.2  // offsets beyond this argue for a side
	persistenceFrames  = 5    // consecutive qualifying frames to confirm a switch
	lockoutFrames      = 9    // qualifying frames during which no further switch confirms
)

// ClassifierState is the hysteresis state threaded through the fold
// over candidate stroke windows. Classification of a window depends on
// the previous confirmed type, so callers pass the state along
// explicitly rather than sharing a mutable classifier.
type ClassifierState struct {
	Current   model.StrokeType
	candidate model.StrokeType
	run       int
	lockout   int
}

// NewClassifierState seeds the fold; the first stroke defaults to
// forehand.
func NewClassifierState() ClassifierState {
	return ClassifierState{Current: model.Forehand}
}

// ClassifyWindow folds the window's frames through the hysteresis
// machine and returns the window's type (the final current type) plus
// the state to carry into the next window.
func ClassifyWindow(points []model.MotionPoint, st ClassifierState) (model.StrokeType, ClassifierState) {
	for _, p := range points {
		st = st.observe(p)
	}
	return st.Current, st
}

// observe advances the state by one frame.
func (st ClassifierState) observe(p model.MotionPoint) ClassifierState {
	off := p.WristXOffsetRel

	// Near-zero offsets and degenerate spans carry no information;
	// skip them entirely (they do not consume lockout).
	if math.Abs(off) < minOffsetMagnitude || p.ShoulderSpan < minShoulderSpan {
		return st
	}
	// Ambiguous band: retain the current type.
	if math.Abs(off) <= ambiguousOffsetMax {
		return st
	}
	if st.lockout > 0 {
		st.lockout--
		return st
	}

	switch {
	case off > switchOffsetMin:
		st = st.advance(model.Forehand)
	case off < -switchOffsetMin:
		st = st.advance(model.Backhand)
	default:
		// Mid-band offsets qualify for neither side and break the
		// consecutive run.
		st.candidate = ""
		st.run = 0
	}
	return st
}

func (st ClassifierState) advance(side model.StrokeType) ClassifierState {
	if st.candidate == side {
		st.run++
	} else {
		st.candidate = side
		st.run = 1
	}
	if st.run >= persistenceFrames && st.Current != side {
		st.Current = side
		st.lockout = lockoutFrames
		st.candidate = ""
		st.run = 0
	}
	return st
}
