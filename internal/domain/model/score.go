package model

// StrokeScore is the graded result for a single stroke.
type StrokeScore struct {
	StrokeID string
	Type     StrokeType
	Phases   []PhaseSegment
	// TotalScore is the weighted phase sum discounted by completeness
	// and mean phase confidence.
	TotalScore float64
	// SubMetrics holds the per-phase raw scores plus "completeness" and
	// "confidence".
	SubMetrics map[string]float64
}

// VideoScore aggregates all stroke scores of one video.
type VideoScore struct {
	Strokes []StrokeScore
	// ForehandAvg and BackhandAvg are trimmed means of the per-stroke
	// totals; nil when the video contains no stroke of that hand.
	ForehandAvg *float64
	BackhandAvg *float64
	Overall     float64
}

// ClipRange is a closed time range within the source video, in seconds.
type ClipRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ClipRef points at an exported best-stroke clip. Artifact is the
// exporter's reference, or the original video identifier when export
// was skipped or failed.
type ClipRef struct {
	Artifact string    `json:"artifact"`
	Range    ClipRange `json:"range"`
}

// SessionResult is the complete output of one analysis run. It holds
// everything the report surface needs: the raw inputs, every derived
// stage, and the best-clip references per stroke type.
type SessionResult struct {
	VideoID      string
	Frames       []PoseFrame
	MotionPoints []MotionPoint
	Strokes      []StrokeSegment
	Score        VideoScore
	BestClips    map[StrokeType]ClipRef
}

// ZeroSessionResult is the degenerate all-zero result returned for
// inputs too short to analyze.
func ZeroSessionResult(videoID string) SessionResult {
	return SessionResult{
		VideoID:   videoID,
		BestClips: map[StrokeType]ClipRef{},
	}
}
