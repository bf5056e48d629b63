// Package posesource supplies pose frame sequences for a video.
//
// The pipeline core never runs pose detection itself; it consumes the
// output of an external detector through the Source interface. The
// file implementation reads a JSON pose dump where the video
// identifier is the dump's path.
package posesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/courtside/strokelab/internal/domain/model"
)

// minJointConfidence is the detection confidence floor below which a
// joint is treated as missing. Suppliers should already filter at this
// level; the source re-applies it as well.
const minJointConfidence = 0.1

// Sentinel kinds for pose source errors.
var (
	ErrOpenDump   = errors.New("open pose dump")
	ErrDecodeDump = errors.New("decode pose dump")
)

// Source supplies the ordered pose frames of one video.
type Source interface {
	// Frames returns the video's pose frames sorted by timestamp.
	Frames(ctx context.Context, videoID string) ([]model.PoseFrame, error)
}

// Dump is the on-disk pose dump format: detector output for one video.
type Dump struct {
	VideoID string            `json:"video_id,omitempty"`
	Frames  []model.PoseFrame `json:"frames"`
}

// FileSource reads pose dumps from the local filesystem. The video
// identifier is the dump file's path.
type FileSource struct{}

// NewFileSource creates a file-backed pose source.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Frames reads and decodes the dump at videoID, sorts the frames by
// timestamp, and strips joints whose detection confidence falls below
// the floor.
func (s *FileSource) Frames(ctx context.Context, videoID string) ([]model.PoseFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(videoID)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrOpenDump, videoID, err)
	}

	var dump Dump
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrDecodeDump, videoID, err)
	}

	frames := make([]model.PoseFrame, 0, len(dump.Frames))
	for _, f := range dump.Frames {
		frames = append(frames, filterLowConfidence(f))
	}
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].Timestamp < frames[j].Timestamp
	})
	return frames, nil
}

// filterLowConfidence returns a copy of f without joints whose
// confidence is below the floor. Joints with no confidence entry are
// kept; absence of a reading is not evidence of a bad detection.
func filterLowConfidence(f model.PoseFrame) model.PoseFrame {
	if len(f.Confidence) == 0 {
		return f
	}
	joints := make(map[model.Joint]model.Point, len(f.Joints))
	conf := make(map[model.Joint]float64, len(f.Confidence))
	for j, p := range f.Joints {
		c, ok := f.Confidence[j]
		if ok && c < minJointConfidence {
			continue
		}
		joints[j] = p
		if ok {
			conf[j] = c
		}
	}
	out := f
	out.Joints = joints
	out.Confidence = conf
	return out
}
