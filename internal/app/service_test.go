package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/courtside/strokelab/internal/adapters/repository"
	service "github.com/courtside/strokelab/internal/app"
	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/courtside/strokelab/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type stubSource struct {
	frames []model.PoseFrame
	err    error
}

func (s *stubSource) Frames(_ context.Context, _ string) ([]model.PoseFrame, error) {
	return s.frames, s.err
}

type stubExporter struct {
	artifact string
	err      error
	calls    int
}

func (e *stubExporter) Export(_ context.Context, videoID string, _ model.ClipRange) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return e.artifact, nil
}

// rightWristX drives the synthetic swing: steady jitter around the
// body mid-line, a near-still frame at 6 and 36, and a fast forward
// snap peaking at frame 21.
func rightWristX(i int) float64 {
	switch i {
	case 6:
		return 0.5405
	case 21:
		return 0.85
	case 22:
		return 0.75
	case 23:
		return 0.57
	case 36:
		return 0.5605
	}
	even := i%2 == 0
	if i > 6 && i < 36 {
		even = !even
	}
	if even {
		return 0.56
	}
	return 0.54
}

// swingFrames is a 40-frame, 10 fps pose sequence with a static torso
// and a single right-hand swing: low-energy stills bracket a sharp
// energy peak, which the pipeline should read as one forehand stroke.
func swingFrames() []model.PoseFrame {
	frames := make([]model.PoseFrame, 40)
	for i := range frames {
		frames[i] = model.PoseFrame{
			FrameID:   fmt.Sprintf("frame-%03d", i),
			Timestamp: 0.1 * float64(i),
			Joints: map[model.Joint]model.Point{
				model.JointLeftShoulder:  {X: 0.4, Y: 0.3},
				model.JointRightShoulder: {X: 0.6, Y: 0.3},
				model.JointLeftElbow:     {X: 0.38, Y: 0.4},
				model.JointRightElbow:    {X: 0.6, Y: 0.1},
				model.JointLeftWrist:     {X: 0.35, Y: 0.5},
				model.JointRightWrist:    {X: rightWristX(i), Y: 0.52},
				model.JointLeftHip:       {X: 0.42, Y: 0.5},
				model.JointRightHip:      {X: 0.58, Y: 0.5},
				model.JointLeftAnkle:     {X: 0.44, Y: 0.9},
				model.JointRightAnkle:    {X: 0.56, Y: 0.9},
			},
		}
	}
	return frames
}

func TestService_Analyze(t *testing.T) {
	Convey("Given a service over a synthetic swing", t, func() {
		ctx := context.Background()
		exporter := &stubExporter{artifact: "clip://best-forehand"}
		store := repository.NewMemoryStore()
		svc := service.New(
			service.WithSource(&stubSource{frames: swingFrames()}),
			service.WithExporter(exporter),
			service.WithStore(store),
			service.WithWorkerCount(4),
		)

		var reported []float64
		progress := func(v float64) { reported = append(reported, v) }

		result, err := svc.Analyze(ctx, "rally-1", progress)
		So(err, ShouldBeNil)

		Convey("Then exactly one forehand stroke is detected", func() {
			So(len(result.Strokes), ShouldEqual, 1)
			So(result.Strokes[0].Type, ShouldEqual, model.Forehand)
			So(result.Strokes[0].StartTime, ShouldAlmostEqual, 0.6, 1e-9)
			So(result.Strokes[0].EndTime, ShouldAlmostEqual, 3.6, 1e-9)
		})

		Convey("Then the stroke carries an impact phase at the snap", func() {
			imp, ok := result.Strokes[0].Phase(model.PhaseImpact)
			So(ok, ShouldBeTrue)
			So(imp.Points[0].Timestamp, ShouldAlmostEqual, 2.1, 1e-9)
		})

		Convey("Then the video score reflects the single hand", func() {
			So(result.Score.ForehandAvg, ShouldNotBeNil)
			So(result.Score.BackhandAvg, ShouldBeNil)
			So(result.Score.Overall, ShouldBeGreaterThan, 0)
		})

		Convey("Then the best forehand clip was exported", func() {
			So(exporter.calls, ShouldEqual, 1)
			clip, ok := result.BestClips[model.Forehand]
			So(ok, ShouldBeTrue)
			So(clip.Artifact, ShouldEqual, "clip://best-forehand")
			So(clip.Range.Start, ShouldAlmostEqual, 0.6, 1e-9)
			So(clip.Range.End, ShouldAlmostEqual, 3.6, 1e-9)
		})

		Convey("Then progress is monotonic from 0 to 1", func() {
			So(len(reported), ShouldBeGreaterThanOrEqualTo, 2)
			So(reported[0], ShouldEqual, 0)
			So(reported[len(reported)-1], ShouldEqual, 1)
			for i := 1; i < len(reported); i++ {
				So(reported[i], ShouldBeGreaterThanOrEqualTo, reported[i-1])
			}
		})

		Convey("Then the result is retrievable from the store", func() {
			stored, err := svc.Result(ctx, "rally-1")
			So(err, ShouldBeNil)
			So(len(stored.Strokes), ShouldEqual, 1)
			So(stored.VideoID, ShouldEqual, "rally-1")
		})
	})
}

func TestService_AnalyzeExportFailure(t *testing.T) {
	Convey("Given a service whose exporter always fails", t, func() {
		exporter := &stubExporter{err: errors.New("encoder unavailable")}
		svc := service.New(
			service.WithSource(&stubSource{frames: swingFrames()}),
			service.WithExporter(exporter),
		)

		result, err := svc.Analyze(context.Background(), "rally-2", nil)
		So(err, ShouldBeNil)

		Convey("Then the clip falls back to the original video", func() {
			clip, ok := result.BestClips[model.Forehand]
			So(ok, ShouldBeTrue)
			So(clip.Artifact, ShouldEqual, "rally-2")
		})
	})
}

func TestService_AnalyzeDegenerateInput(t *testing.T) {
	Convey("Given a single-frame video", t, func() {
		svc := service.New(
			service.WithSource(&stubSource{frames: swingFrames()[:1]}),
		)

		var reported []float64
		result, err := svc.Analyze(context.Background(), "short", func(v float64) {
			reported = append(reported, v)
		})
		So(err, ShouldBeNil)

		Convey("Then the zero result is returned with progress 1.0", func() {
			So(result.VideoID, ShouldEqual, "short")
			So(result.Strokes, ShouldBeEmpty)
			So(result.MotionPoints, ShouldBeEmpty)
			So(result.Score.Overall, ShouldEqual, 0)
			So(result.BestClips, ShouldBeEmpty)
			So(reported[len(reported)-1], ShouldEqual, 1)
		})

		Convey("Then the zero result is still stored", func() {
			stored, err := svc.Result(context.Background(), "short")
			So(err, ShouldBeNil)
			So(stored.VideoID, ShouldEqual, "short")
		})
	})

	Convey("Given a pose source that fails outright", t, func() {
		srcErr := errors.New("no such dump")
		svc := service.New(service.WithSource(&stubSource{err: srcErr}))

		result, err := svc.Analyze(context.Background(), "broken", nil)

		Convey("Then the error surfaces once with a zero result", func() {
			So(errors.Is(err, srcErr), ShouldBeTrue)
			So(result.VideoID, ShouldEqual, "broken")
			So(result.Strokes, ShouldBeEmpty)
		})
	})
}

func TestService_Options(t *testing.T) {
	Convey("Given custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithPhaseWeights(map[string]float64{"impact": 0.5}),
		)

		Convey("Then the service is created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}
