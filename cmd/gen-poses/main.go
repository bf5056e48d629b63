// Command gen-poses emits a synthetic pose dump for exercising the
// analyzer end to end.
//
// The generated sequence is a static torso with the racket-hand wrist
// jittering around a ready position, going briefly still between
// swings, and snapping through a fast forward stroke once per swing.
// That shape gives the pipeline clean energy valleys and peaks, so
// every requested swing segments into one stroke.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/courtside/strokelab/internal/adapters/posesource"
	"github.com/courtside/strokelab/internal/domain/model"
)

// Default generation parameters.
const (
	defaultForehands = 2
	defaultBackhands = 1
	defaultFPS       = 10
	defaultSeed      = 42

	// Wrist choreography, in normalized image units around the ready
	// position. Snap magnitudes mirror for backhands.
	readyWristX   = 0.55
	jitterAmp     = 0.01
	stillAmp      = 0.0005
	snapReach     = 0.30
	snapRecoil1   = 0.10
	snapRecoil2   = 0.18
	rampFrames    = 8
	recoverFrames = 8
	settleFrames  = 3
)

func main() {
	var (
		forehands = flag.Int("forehands", defaultForehands, "Number of forehand swings to generate")
		backhands = flag.Int("backhands", defaultBackhands, "Number of backhand swings to generate")
		fps       = flag.Int("fps", defaultFPS, "Frames per second of the synthetic video")
		seed      = flag.Int64("seed", defaultSeed, "Random seed for reproducible jitter")
		output    = flag.String("output", "", "Output file (default: stdout)")
		videoID   = flag.String("video-id", "synthetic-rally", "Video identifier embedded in the dump")
	)
	flag.Parse()

	if *fps <= 0 || *forehands+*backhands == 0 {
		os.Stderr.WriteString("gen-poses: need fps > 0 and at least one swing\n")
		os.Exit(2)
	}

	gen := &generator{
		rng: rand.New(rand.NewSource(*seed)), //nolint:gosec // deterministic test data
		dt:  1.0 / float64(*fps),
	}
	dump := posesource.Dump{VideoID: *videoID, Frames: gen.session(*forehands, *backhands)}

	raw, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		os.Stderr.WriteString("gen-poses: " + err.Error() + "\n")
		os.Exit(1)
	}
	raw = append(raw, '\n')

	if *output == "" {
		_, _ = os.Stdout.Write(raw)
		return
	}
	if err := os.WriteFile(*output, raw, 0o600); err != nil {
		os.Stderr.WriteString("gen-poses: " + err.Error() + "\n")
		os.Exit(1)
	}
}

type generator struct {
	rng   *rand.Rand
	dt    float64
	frame int
	side  float64 // +1 while jittering right of ready, -1 left
}

// session interleaves the requested swings, forehands first, separated
// by still frames so each swing lands in its own stroke window.
func (g *generator) session(forehands, backhands int) []model.PoseFrame {
	g.side = 1
	var frames []model.PoseFrame
	frames = append(frames, g.stillBlock()...)
	for i := 0; i < forehands; i++ {
		frames = append(frames, g.swing(+1)...)
		frames = append(frames, g.stillBlock()...)
	}
	for i := 0; i < backhands; i++ {
		frames = append(frames, g.swing(-1)...)
		frames = append(frames, g.stillBlock()...)
	}
	return frames
}

// stillBlock is a short run of near-motionless frames, the energy
// valley separating swings. The wrist keeps a hair of motion so every
// derived metric stays defined.
func (g *generator) stillBlock() []model.PoseFrame {
	frames := make([]model.PoseFrame, 0, settleFrames)
	for i := 0; i < settleFrames; i++ {
		g.side = -g.side
		frames = append(frames, g.poseFrame(readyWristX+g.side*stillAmp))
	}
	return frames
}

// swing is one stroke: jitter ramp, snap to full reach, two recoil
// frames back toward ready, then recovery jitter. sign is +1 for a
// forehand, -1 for a backhand.
func (g *generator) swing(sign float64) []model.PoseFrame {
	frames := make([]model.PoseFrame, 0, rampFrames+recoverFrames+3)
	for i := 0; i < rampFrames; i++ {
		frames = append(frames, g.jitterFrame())
	}
	frames = append(frames,
		g.poseFrame(readyWristX+sign*snapReach),
		g.poseFrame(readyWristX+sign*(snapReach-snapRecoil1)),
		g.poseFrame(readyWristX+sign*(snapReach-snapRecoil2)),
	)
	for i := 0; i < recoverFrames; i++ {
		frames = append(frames, g.jitterFrame())
	}
	return frames
}

func (g *generator) jitterFrame() model.PoseFrame {
	g.side = -g.side
	amp := jitterAmp * (0.8 + 0.4*g.rng.Float64())
	return g.poseFrame(readyWristX + g.side*amp)
}

func (g *generator) poseFrame(wristX float64) model.PoseFrame {
	f := model.PoseFrame{
		FrameID:   fmt.Sprintf("frame-%05d", g.frame),
		Timestamp: g.dt * float64(g.frame),
		Joints: map[model.Joint]model.Point{
			model.JointLeftShoulder:  {X: 0.4, Y: 0.3},
			model.JointRightShoulder: {X: 0.6, Y: 0.3},
			model.JointLeftElbow:     {X: 0.38, Y: 0.4},
			model.JointRightElbow:    {X: 0.6, Y: 0.1},
			model.JointLeftWrist:     {X: 0.35, Y: 0.5},
			model.JointRightWrist:    {X: wristX, Y: 0.52},
			model.JointLeftHip:       {X: 0.42, Y: 0.5},
			model.JointRightHip:      {X: 0.58, Y: 0.5},
			model.JointLeftKnee:      {X: 0.44, Y: 0.7},
			model.JointRightKnee:     {X: 0.56, Y: 0.7},
			model.JointLeftAnkle:     {X: 0.44, Y: 0.9},
			model.JointRightAnkle:    {X: 0.56, Y: 0.9},
		},
	}
	g.frame++
	return f
}
