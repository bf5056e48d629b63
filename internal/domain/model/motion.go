package model

// MotionPoint is the per-frame-pair feature vector derived from two
// consecutive pose frames (plus one earlier frame for the energy
// deltas). Only fully-defined points are retained: any metric whose
// inputs were missing causes the whole point to be dropped upstream, so
// every field here is meaningful.
type MotionPoint struct {
	Timestamp float64 // timestamp of the later frame of the pair
	FrameID   string  // frame id of the later frame

	Energy float64 // composite kinematic scalar, >= 0

	ShoulderCoilFactor float64 // signed relative shoulder-span change
	HipCoilFactor      float64 // signed relative hip-span change
	RotSign            int     // -1/0/+1 shoulder rotation direction

	ShoulderSpan float64
	HipSpan      float64
	FootSpan     float64

	WristXOffsetRel float64 // wrist x offset from hip midpoint / shoulder span
	WristHeightRel  float64 // wrist height above shoulder midline / shoulder span

	ForearmAngularSpeed float64
	WristLinearSpeed    float64
	ComSpeed            float64
	HandSpeedRatio      float64
}
