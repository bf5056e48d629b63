// Package model contains domain models passed between pipeline stages.
//
// Every stage of the analysis pipeline consumes the previous stage's
// records and returns fresh collections; nothing here is mutated after
// construction.
package model

// Joint identifies a tracked body landmark in a pose frame.
type Joint string

// Joints recognized by the pipeline. Coordinates are 2D, normalized to
// [0,1] in both axes with y growing downward (image convention).
const (
	JointLeftShoulder  Joint = "left_shoulder"
	JointRightShoulder Joint = "right_shoulder"
	JointLeftElbow     Joint = "left_elbow"
	JointRightElbow    Joint = "right_elbow"
	JointLeftWrist     Joint = "left_wrist"
	JointRightWrist    Joint = "right_wrist"
	JointLeftHip       Joint = "left_hip"
	JointRightHip      Joint = "right_hip"
	JointLeftKnee      Joint = "left_knee"
	JointRightKnee     Joint = "right_knee"
	JointLeftAnkle     Joint = "left_ankle"
	JointRightAnkle    Joint = "right_ankle"
)

// Point is a 2D normalized coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PoseFrame is one detected pose at a point in video time, as supplied
// by the external pose source. Joints may be missing; per-joint
// confidence mirrors the detector's output. Timestamp is in seconds of
// video time.
type PoseFrame struct {
	FrameID    string            `json:"frame_id"`
	Timestamp  float64           `json:"timestamp"`
	Joints     map[Joint]Point   `json:"joints"`
	Confidence map[Joint]float64 `json:"confidence,omitempty"`
}

// Has reports whether the frame carries the named joint.
func (f PoseFrame) Has(j Joint) bool {
	_, ok := f.Joints[j]
	return ok
}
