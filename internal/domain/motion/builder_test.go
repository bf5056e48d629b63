package motion_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/courtside/strokelab/internal/domain/motion"
	"github.com/courtside/strokelab/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// movingFrame builds a fully-jointed frame in which both wrists drift a
// little every step, so every derived metric stays defined.
func movingFrame(i int) model.PoseFrame {
	d := 0.005 * float64(i)
	return model.PoseFrame{
		FrameID:   fmt.Sprintf("frame-%03d", i),
		Timestamp: 0.1 * float64(i),
		Joints: map[model.Joint]model.Point{
			model.JointLeftShoulder:  {X: 0.40, Y: 0.30},
			model.JointRightShoulder: {X: 0.60, Y: 0.30},
			model.JointLeftElbow:     {X: 0.38, Y: 0.42},
			model.JointRightElbow:    {X: 0.62, Y: 0.42},
			model.JointLeftWrist:     {X: 0.36 - d, Y: 0.52},
			model.JointRightWrist:    {X: 0.64 + d, Y: 0.52},
			model.JointLeftHip:       {X: 0.42, Y: 0.55},
			model.JointRightHip:      {X: 0.58, Y: 0.55},
			model.JointLeftKnee:      {X: 0.42, Y: 0.72},
			model.JointRightKnee:     {X: 0.58, Y: 0.72},
			model.JointLeftAnkle:     {X: 0.40, Y: 0.90},
			model.JointRightAnkle:    {X: 0.60, Y: 0.90},
		},
	}
}

func frames(n int) []model.PoseFrame {
	out := make([]model.PoseFrame, n)
	for i := range out {
		out[i] = movingFrame(i)
	}
	return out
}

func TestSeries(t *testing.T) {
	Convey("Given a builder over a clean frame sequence", t, func() {
		ctx := context.Background()
		b := motion.NewBuilder(motion.WithWorkers(4), motion.WithQueueSize(16))

		Convey("When building from 12 frames", func() {
			points := b.Series(ctx, frames(12))

			Convey("Then one point per frame triple comes back in order", func() {
				So(len(points), ShouldEqual, 10)
				for i := 1; i < len(points); i++ {
					So(points[i].Timestamp, ShouldBeGreaterThan, points[i-1].Timestamp)
				}
				So(points[0].FrameID, ShouldEqual, "frame-002")
			})

			Convey("Then energy is non-negative everywhere", func() {
				for _, p := range points {
					So(p.Energy, ShouldBeGreaterThanOrEqualTo, 0)
				}
			})
		})

		Convey("When a frame misses a required joint", func() {
			fs := frames(12)
			delete(fs[5].Joints, model.JointLeftHip)
			points := b.Series(ctx, fs)

			Convey("Then every triple touching it is dropped, not zeroed", func() {
				So(len(points), ShouldEqual, 7)
				for _, p := range points {
					So(p.FrameID, ShouldNotEqual, "frame-005")
				}
			})
		})

		Convey("When the supplier repeats a frame id", func() {
			fs := frames(10)
			dup := fs[4]
			dup.Timestamp += 0.001
			fs = append(fs, dup)
			points := b.Series(ctx, fs)

			Convey("Then the duplicate is ignored", func() {
				So(len(points), ShouldEqual, 8)
			})
		})

		Convey("When fewer than three usable frames exist", func() {
			So(b.Series(ctx, frames(2)), ShouldBeEmpty)
			So(b.Series(ctx, nil), ShouldBeEmpty)
		})

		Convey("When frames arrive out of order", func() {
			fs := frames(10)
			fs[2], fs[7] = fs[7], fs[2]
			points := b.Series(ctx, fs)

			Convey("Then the series is still strictly time-ordered", func() {
				So(len(points), ShouldEqual, 8)
				for i := 1; i < len(points); i++ {
					So(points[i].Timestamp, ShouldBeGreaterThan, points[i-1].Timestamp)
				}
			})
		})
	})
}
