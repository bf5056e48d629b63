// Package biomech computes geometric and kinematic quantities from one
// or two pose frames.
//
// Every function is pure and fails closed: a missing joint or a
// non-positive denominator yields ok=false, and the caller must drop
// the derived sample rather than substitute a default. Imputing zeros
// here would bias the energy-threshold segmentation downstream.
package biomech

import (
	"math"

	"github.com/courtside/strokelab/internal/domain/model"
)

// Energy composite weights. The scalar is a weighted sum of squared
// terms, so it is non-negative whenever defined.
const (
	energyScale           = 0.5
	wristSpeedWeight      = 0.25
	forearmSpeedWeight    = 0.25
	shoulderCoilWeight    = 0.25
	hipCoilWeight         = 0.20
	comSpeedWeight        = 0.05
	rotationAngleDeadband = 0.01 // radians; shoulder-line deltas below this count as no rotation
)

// Span returns the Euclidean distance between two named joints.
func Span(f model.PoseFrame, a, b model.Joint) (float64, bool) {
	pa, oka := f.Joints[a]
	pb, okb := f.Joints[b]
	if !oka || !okb {
		return 0, false
	}
	return math.Hypot(pb.X-pa.X, pb.Y-pa.Y), true
}

// ShoulderSpan, HipSpan, and FootSpan are the three spans the motion
// series carries.
func ShoulderSpan(f model.PoseFrame) (float64, bool) {
	return Span(f, model.JointLeftShoulder, model.JointRightShoulder)
}

func HipSpan(f model.PoseFrame) (float64, bool) {
	return Span(f, model.JointLeftHip, model.JointRightHip)
}

func FootSpan(f model.PoseFrame) (float64, bool) {
	return Span(f, model.JointLeftAnkle, model.JointRightAnkle)
}

// CoilFactor is the relative change of a span between two frames:
// (next - prev) / prev. Undefined iff the earlier frame's span is
// missing or <= 0; it never divides by the later span.
func CoilFactor(prev, next model.PoseFrame, a, b model.Joint) (float64, bool) {
	sp, okp := Span(prev, a, b)
	sn, okn := Span(next, a, b)
	if !okp || !okn || sp <= 0 {
		return 0, false
	}
	return (sn - sp) / sp, true
}

// ShoulderCoilFactor and HipCoilFactor are the two coil factors used as
// torso-rotation proxies.
func ShoulderCoilFactor(prev, next model.PoseFrame) (float64, bool) {
	return CoilFactor(prev, next, model.JointLeftShoulder, model.JointRightShoulder)
}

func HipCoilFactor(prev, next model.PoseFrame) (float64, bool) {
	return CoilFactor(prev, next, model.JointLeftHip, model.JointRightHip)
}

// wrist returns the preferred wrist position: right if present, else
// left.
func wrist(f model.PoseFrame) (model.Point, bool) {
	if p, ok := f.Joints[model.JointRightWrist]; ok {
		return p, true
	}
	if p, ok := f.Joints[model.JointLeftWrist]; ok {
		return p, true
	}
	return model.Point{}, false
}

func midpoint(f model.PoseFrame, a, b model.Joint) (model.Point, bool) {
	pa, oka := f.Joints[a]
	pb, okb := f.Joints[b]
	if !oka || !okb {
		return model.Point{}, false
	}
	return model.Point{X: (pa.X + pb.X) / 2, Y: (pa.Y + pb.Y) / 2}, true
}

// WristXOffsetRel is the wrist's horizontal offset from the hip
// midpoint, normalized by shoulder span. Positive values put the wrist
// on the racket (right) side of the body.
func WristXOffsetRel(f model.PoseFrame) (float64, bool) {
	w, okw := wrist(f)
	root, okr := midpoint(f, model.JointLeftHip, model.JointRightHip)
	span, oks := ShoulderSpan(f)
	if !okw || !okr || !oks || span <= 0 {
		return 0, false
	}
	return (w.X - root.X) / span, true
}

// WristHeightRel is the wrist's height above the shoulder midline,
// normalized by shoulder span. Negative values mean the wrist sits
// below the shoulders (image y grows downward).
func WristHeightRel(f model.PoseFrame) (float64, bool) {
	w, okw := wrist(f)
	mid, okm := midpoint(f, model.JointLeftShoulder, model.JointRightShoulder)
	span, oks := ShoulderSpan(f)
	if !okw || !okm || !oks || span <= 0 {
		return 0, false
	}
	return (mid.Y - w.Y) / span, true
}

// forearmAngle is the angle between the upper arm (shoulder->elbow) and
// forearm (elbow->wrist) vectors. Right arm preferred, left fallback.
func forearmAngle(f model.PoseFrame) (float64, bool) {
	sides := [][3]model.Joint{
		{model.JointRightShoulder, model.JointRightElbow, model.JointRightWrist},
		{model.JointLeftShoulder, model.JointLeftElbow, model.JointLeftWrist},
	}
	for _, s := range sides {
		sh, ok1 := f.Joints[s[0]]
		el, ok2 := f.Joints[s[1]]
		wr, ok3 := f.Joints[s[2]]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		upper := math.Atan2(el.Y-sh.Y, el.X-sh.X)
		fore := math.Atan2(wr.Y-el.Y, wr.X-el.X)
		return wrapAngle(fore - upper), true
	}
	return 0, false
}

// wrapAngle maps an angle delta onto the minimal representation in
// [-pi, pi].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// ForearmAngularSpeed is the minimal-angle change of the forearm angle
// between two frames, divided by dt*pi. Undefined if dt <= 0 or any arm
// joint is missing in either frame.
func ForearmAngularSpeed(prev, next model.PoseFrame, dt float64) (float64, bool) {
	if dt <= 0 {
		return 0, false
	}
	ap, okp := forearmAngle(prev)
	an, okn := forearmAngle(next)
	if !okp || !okn {
		return 0, false
	}
	return wrapAngle(an-ap) / (dt * math.Pi), true
}

func pointSpeed(prev, next model.Point, dt float64) float64 {
	return math.Hypot(next.X-prev.X, next.Y-prev.Y) / dt
}

// WristLinearSpeed is the preferred wrist's displacement over dt.
func WristLinearSpeed(prev, next model.PoseFrame, dt float64) (float64, bool) {
	if dt <= 0 {
		return 0, false
	}
	wp, okp := wrist(prev)
	wn, okn := wrist(next)
	if !okp || !okn {
		return 0, false
	}
	return pointSpeed(wp, wn, dt), true
}

// ComSpeed approximates center-of-mass speed with the hip midpoint.
func ComSpeed(prev, next model.PoseFrame, dt float64) (float64, bool) {
	if dt <= 0 {
		return 0, false
	}
	mp, okp := midpoint(prev, model.JointLeftHip, model.JointRightHip)
	mn, okn := midpoint(next, model.JointLeftHip, model.JointRightHip)
	if !okp || !okn {
		return 0, false
	}
	return pointSpeed(mp, mn, dt), true
}

// HandSpeedRatio is the left wrist speed over the right wrist speed.
// Undefined when either wrist is missing or the right wrist did not
// move (division guard).
func HandSpeedRatio(prev, next model.PoseFrame, dt float64) (float64, bool) {
	if dt <= 0 {
		return 0, false
	}
	lp, ok1 := prev.Joints[model.JointLeftWrist]
	ln, ok2 := next.Joints[model.JointLeftWrist]
	rp, ok3 := prev.Joints[model.JointRightWrist]
	rn, ok4 := next.Joints[model.JointRightWrist]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	rightSpeed := pointSpeed(rp, rn, dt)
	if rightSpeed == 0 {
		return 0, false
	}
	return pointSpeed(lp, ln, dt) / rightSpeed, true
}

// RotationSign is the discrete -1/0/+1 direction of shoulder-line
// rotation between two frames, with a small deadband around zero.
func RotationSign(prev, next model.PoseFrame) (int, bool) {
	ap, okp := shoulderLineAngle(prev)
	an, okn := shoulderLineAngle(next)
	if !okp || !okn {
		return 0, false
	}
	d := wrapAngle(an - ap)
	switch {
	case d > rotationAngleDeadband:
		return 1, true
	case d < -rotationAngleDeadband:
		return -1, true
	}
	return 0, true
}

func shoulderLineAngle(f model.PoseFrame) (float64, bool) {
	l, okl := f.Joints[model.JointLeftShoulder]
	r, okr := f.Joints[model.JointRightShoulder]
	if !okl || !okr {
		return 0, false
	}
	return math.Atan2(r.Y-l.Y, r.X-l.X), true
}

// Energy is the composite kinematic scalar over a frame triple. The
// coil-factor deltas compare the (prevPrev->prev) pair against the
// (prev->next) pair. Undefined if any sub-term is undefined.
func Energy(prevPrev, prev, next model.PoseFrame, dt float64) (float64, bool) {
	wls, ok1 := WristLinearSpeed(prev, next, dt)
	fas, ok2 := ForearmAngularSpeed(prev, next, dt)
	cs, ok3 := ComSpeed(prev, next, dt)
	scPrev, ok4 := ShoulderCoilFactor(prevPrev, prev)
	scNext, ok5 := ShoulderCoilFactor(prev, next)
	hcPrev, ok6 := HipCoilFactor(prevPrev, prev)
	hcNext, ok7 := HipCoilFactor(prev, next)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		return 0, false
	}
	dShoulder := scNext - scPrev
	dHip := hcNext - hcPrev
	e := energyScale * (wristSpeedWeight*wls*wls +
		forearmSpeedWeight*fas*fas +
		shoulderCoilWeight*dShoulder*dShoulder +
		hipCoilWeight*dHip*dHip +
		comSpeedWeight*cs*cs)
	return e, true
}
