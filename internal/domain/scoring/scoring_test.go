package scoring_test

import (
	"testing"

	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/courtside/strokelab/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func phaseSeg(kind model.PhaseKind, score, conf float64) model.PhaseSegment {
	return model.PhaseSegment{
		Kind:       kind,
		Score:      score,
		Confidence: conf,
		Points:     []model.MotionPoint{{Timestamp: float64(model.PhaseOrder(kind))}},
	}
}

func strokeWith(t model.StrokeType, phases ...model.PhaseSegment) model.StrokeSegment {
	return model.StrokeSegment{ID: "stroke-1", Type: t, Phases: phases}
}

func TestScoreStroke(t *testing.T) {
	Convey("Given a scoring engine with default weights", t, func() {
		eng := scoring.NewEngine()

		Convey("When scoring a fully complete, fully confident stroke", func() {
			s := strokeWith(model.Forehand,
				phaseSeg(model.PhaseCoil, 1, 1),
				phaseSeg(model.PhaseAcceleration, 1, 1),
				phaseSeg(model.PhaseImpact, 1, 1),
				phaseSeg(model.PhaseFollowThrough, 1, 1),
				phaseSeg(model.PhaseSplitStep, 1, 1),
			)
			graded := eng.ScoreStroke(s)

			Convey("Then the total is the plain weighted sum", func() {
				So(graded.TotalScore, ShouldAlmostEqual, 1.0, 1e-9)
				So(graded.SubMetrics["completeness"], ShouldEqual, 1.0)
				So(graded.SubMetrics["confidence"], ShouldEqual, 1.0)
				So(graded.StrokeID, ShouldEqual, "stroke-1")
				So(graded.Type, ShouldEqual, model.Forehand)
			})
		})

		Convey("When phases are missing", func() {
			s := strokeWith(model.Backhand,
				phaseSeg(model.PhaseImpact, 0.5, 0.6),
				phaseSeg(model.PhaseFollowThrough, 0.4, 0.8),
			)
			graded := eng.ScoreStroke(s)

			Convey("Then completeness discounts the total", func() {
				// total 0.20*0.5 + 0.20*0.4 = 0.18; completeness 2/5;
				// confidence (0.6+0.8)/2 = 0.7.
				So(graded.SubMetrics["completeness"], ShouldAlmostEqual, 0.4, 1e-9)
				So(graded.SubMetrics["confidence"], ShouldAlmostEqual, 0.7, 1e-9)
				So(graded.TotalScore, ShouldAlmostEqual, 0.18*0.4*0.7, 1e-9)
			})
		})

		Convey("When a phase has a zero score", func() {
			s := strokeWith(model.Forehand,
				phaseSeg(model.PhaseImpact, 0.5, 0.6),
				phaseSeg(model.PhaseSplitStep, 0, 0.9),
			)
			graded := eng.ScoreStroke(s)

			Convey("Then it does not count toward completeness", func() {
				So(graded.SubMetrics["completeness"], ShouldAlmostEqual, 0.2, 1e-9)
			})
		})

		Convey("When the stroke has no phases at all", func() {
			graded := eng.ScoreStroke(strokeWith(model.Forehand))

			Convey("Then everything grades zero", func() {
				So(graded.TotalScore, ShouldEqual, 0)
				So(graded.SubMetrics["completeness"], ShouldEqual, 0)
				So(graded.SubMetrics["confidence"], ShouldEqual, 0)
			})
		})

		Convey("Then completeness takes only fifth-step values", func() {
			allowed := map[float64]bool{0: true, 0.2: true, 0.4: true, 0.6: true, 0.8: true, 1.0: true}
			phases := []model.PhaseSegment{}
			for _, k := range model.PhaseKinds() {
				graded := eng.ScoreStroke(model.StrokeSegment{Type: model.Forehand, Phases: phases})
				So(allowed[graded.SubMetrics["completeness"]], ShouldBeTrue)
				phases = append(phases, phaseSeg(k, 1, 1))
			}
		})
	})

	Convey("Given custom phase weights from configuration", t, func() {
		eng := scoring.NewEngine(scoring.WithPhaseWeightsFromConfig(map[string]float64{
			"impact":     0.5,
			"bogus":      0.9,
			"coil":       -1,
			"split_step": 0.0,
		}))

		Convey("Then valid entries override and invalid ones are ignored", func() {
			s := strokeWith(model.Forehand,
				phaseSeg(model.PhaseImpact, 1, 1),
				phaseSeg(model.PhaseCoil, 1, 1),
			)
			graded := eng.ScoreStroke(s)
			// impact 0.5 overridden, coil keeps its 0.25 default.
			So(graded.SubMetrics["impact"], ShouldEqual, 1)
			So(graded.TotalScore, ShouldAlmostEqual, (0.5+0.25)*0.4*1.0, 1e-9)
		})
	})
}

func TestScoreVideo(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		eng := scoring.NewEngine()

		// impactOnly builds a stroke whose total works out to
		// total = 0.20*score * 0.2 * conf.
		impactOnly := func(id string, t model.StrokeType, score, conf float64) model.StrokeSegment {
			s := strokeWith(t, phaseSeg(model.PhaseImpact, score, conf))
			s.ID = id
			return s
		}

		Convey("When a hand has three or more strokes", func() {
			// totals 0.04*1, 0.04*2, 0.04*3 via score 1,2,3 at conf 1.
			strokes := []model.StrokeSegment{
				impactOnly("a", model.Forehand, 1, 1),
				impactOnly("b", model.Forehand, 2, 1),
				impactOnly("c", model.Forehand, 3, 1),
			}
			score := eng.ScoreVideo(strokes)

			Convey("Then the trimmed mean keeps only the middle value", func() {
				So(score.ForehandAvg, ShouldNotBeNil)
				So(*score.ForehandAvg, ShouldAlmostEqual, 0.20*2*0.2, 1e-9)
				So(score.BackhandAvg, ShouldBeNil)
				So(score.Overall, ShouldAlmostEqual, *score.ForehandAvg, 1e-9)
			})
		})

		Convey("When a hand has fewer than three strokes", func() {
			strokes := []model.StrokeSegment{
				impactOnly("a", model.Backhand, 1, 1),
				impactOnly("b", model.Backhand, 3, 1),
			}
			score := eng.ScoreVideo(strokes)

			Convey("Then the plain mean is used", func() {
				So(score.BackhandAvg, ShouldNotBeNil)
				So(*score.BackhandAvg, ShouldAlmostEqual, 0.20*2*0.2, 1e-9)
				So(score.ForehandAvg, ShouldBeNil)
			})
		})

		Convey("When both hands are present", func() {
			strokes := []model.StrokeSegment{
				impactOnly("a", model.Forehand, 2, 1),
				impactOnly("b", model.Backhand, 4, 1),
			}
			score := eng.ScoreVideo(strokes)

			Convey("Then overall is the mean of the hand averages", func() {
				So(score.Overall, ShouldAlmostEqual, (0.20*2*0.2+0.20*4*0.2)/2, 1e-9)
				So(len(score.Strokes), ShouldEqual, 2)
			})
		})

		Convey("When no strokes exist", func() {
			score := eng.ScoreVideo(nil)

			Convey("Then both averages are nil and overall is zero", func() {
				So(score.ForehandAvg, ShouldBeNil)
				So(score.BackhandAvg, ShouldBeNil)
				So(score.Overall, ShouldEqual, 0)
			})
		})
	})
}
