package model

// StrokeType classifies a groundstroke. The set is closed; switch
// statements over it should be exhaustive.
type StrokeType string

const (
	Forehand StrokeType = "forehand"
	Backhand StrokeType = "backhand"
)

// Valid reports whether t is a known stroke type.
func (t StrokeType) Valid() bool {
	return t == Forehand || t == Backhand
}

// StrokeTypes lists all stroke types in a stable order.
func StrokeTypes() []StrokeType {
	return []StrokeType{Forehand, Backhand}
}

// PhaseKind names one of the five canonical sub-stages of a stroke.
type PhaseKind string

const (
	PhaseCoil          PhaseKind = "coil"
	PhaseAcceleration  PhaseKind = "acceleration"
	PhaseImpact        PhaseKind = "impact"
	PhaseFollowThrough PhaseKind = "follow_through"
	PhaseSplitStep     PhaseKind = "split_step"
)

// PhaseOrder returns the canonical position of k within a stroke
// (coil < acceleration < impact < followThrough < splitStep), or -1 for
// an unknown kind.
func PhaseOrder(k PhaseKind) int {
	switch k {
	case PhaseCoil:
		return 0
	case PhaseAcceleration:
		return 1
	case PhaseImpact:
		return 2
	case PhaseFollowThrough:
		return 3
	case PhaseSplitStep:
		return 4
	}
	return -1
}

// PhaseKinds lists all phase kinds in canonical order.
func PhaseKinds() []PhaseKind {
	return []PhaseKind{PhaseCoil, PhaseAcceleration, PhaseImpact, PhaseFollowThrough, PhaseSplitStep}
}

// PhaseSegment is one detected sub-phase of a stroke: a contiguous run
// of motion points with a confidence, a raw (unweighted) score, and
// free-form named metrics for presentation.
type PhaseSegment struct {
	Kind       PhaseKind
	Confidence float64 // in [0,1]
	Points     []MotionPoint
	Score      float64
	Metrics    map[string]float64
}

// Start returns the timestamp of the first point, or 0 if empty.
func (p PhaseSegment) Start() float64 {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[0].Timestamp
}

// End returns the timestamp of the last point, or 0 if empty.
func (p PhaseSegment) End() float64 {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[len(p.Points)-1].Timestamp
}

// StrokeSegment is one classified stroke: a valley-to-valley window of
// the motion series with its nested phases.
type StrokeSegment struct {
	ID         string
	Type       StrokeType
	StartTime  float64
	EndTime    float64
	Points     []MotionPoint
	Phases     []PhaseSegment
	Confidence float64 // in [0,1]
	// Metrics carries optional named aggregates (rotation efficiency,
	// timing consistency, ...) consumed by presentation layers.
	Metrics map[string]float64
}

// Phase returns the segment's phase of the given kind, if present.
func (s StrokeSegment) Phase(k PhaseKind) (PhaseSegment, bool) {
	for _, p := range s.Phases {
		if p.Kind == k {
			return p, true
		}
	}
	return PhaseSegment{}, false
}
