// Package service wires the analysis pipeline end to end: pose frames
// in, graded session result out.
package service

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/courtside/strokelab/internal/adapters/clipexport"
	"github.com/courtside/strokelab/internal/adapters/posesource"
	"github.com/courtside/strokelab/internal/adapters/repository"
	"github.com/courtside/strokelab/internal/domain/dedupe"
	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/courtside/strokelab/internal/domain/motion"
	"github.com/courtside/strokelab/internal/domain/scoring"
	"github.com/courtside/strokelab/internal/domain/segment"
	"github.com/courtside/strokelab/pkg/logger"
	"github.com/courtside/strokelab/pkg/metrics"
)

// Progress checkpoints reported during one analysis run. The reported
// fraction never decreases; callers treat the callback as advisory.
const (
	progressStart    = 0.0
	progressFrames   = 0.2
	progressMotion   = 0.55
	progressScored   = 0.8
	progressComplete = 1.0
)

// minUsableFrames is the frame count below which analysis
// short-circuits to the zero result.
const minUsableFrames = 2

// ProgressFunc receives the analysis progress fraction in [0,1].
type ProgressFunc func(fraction float64)

// Service orchestrates the full analysis pipeline for one video at a
// time: frame extraction, motion series construction, stroke
// segmentation, scoring, and best-clip export.
type Service struct {
	// Core components
	source   posesource.Source
	exporter clipexport.Exporter
	store    repository.Store
	segments *segment.Engine
	scorer   *scoring.Engine

	// Configuration
	workerCount  int
	queueSize    int
	dedupeSize   int
	phaseWeights map[string]float64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the pose frame source.
func WithSource(src posesource.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithExporter sets the clip exporter.
func WithExporter(exp clipexport.Exporter) Option {
	return func(s *Service) {
		if exp != nil {
			s.exporter = exp
		}
	}
}

// WithStore sets the session result store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the number of motion extraction workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the extraction queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the frame deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithPhaseWeights sets the scoring phase weights.
func WithPhaseWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.phaseWeights = weights
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		source:      posesource.NewFileSource(),
		exporter:    clipexport.Noop{},
		store:       repository.NewMemoryStore(),
		workerCount: runtime.NumCPU(),
		queueSize:   4096,
		dedupeSize:  100000,
		logger:      logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.segments = segment.NewEngine(segment.WithLogger(s.logger.Named("segment")))
	s.scorer = scoring.NewEngine(scoring.WithPhaseWeightsFromConfig(s.phaseWeights))
	return s
}

// Analyze runs the full pipeline over one video and returns its
// session result. Progress is reported at the stage checkpoints;
// degenerate input yields the zero result with progress 1.0 rather
// than an error. The only returned error is the pose source failing to
// produce frames at all.
func (s *Service) Analyze(ctx context.Context, videoID string, progress ProgressFunc) (model.SessionResult, error) {
	report := monotonic(progress)
	started := time.Now()
	metrics.RecordAnalysisStarted()
	report(progressStart)

	frames, err := s.source.Frames(ctx, videoID)
	if err != nil {
		s.logger.Error(ctx, "pose source failed",
			logger.String("video_id", videoID),
			logger.Error(err),
		)
		report(progressComplete)
		return model.ZeroSessionResult(videoID), err
	}
	metrics.RecordFramesIngested(len(frames))

	if len(frames) < minUsableFrames {
		s.logger.Warn(ctx, "not enough frames to analyze",
			logger.String("video_id", videoID),
			logger.Int("frames", len(frames)),
		)
		report(progressComplete)
		result := model.ZeroSessionResult(videoID)
		s.save(ctx, result)
		return result, nil
	}
	report(progressFrames)

	builder := motion.NewBuilder(
		motion.WithWorkers(s.workerCount),
		motion.WithQueueSize(s.queueSize),
		motion.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))),
	)
	points := builder.Series(ctx, frames)
	report(progressMotion)

	strokes := s.segments.Segment(ctx, points)
	score := s.scorer.ScoreVideo(strokes)
	report(progressScored)

	result := model.SessionResult{
		VideoID:      videoID,
		Frames:       frames,
		MotionPoints: points,
		Strokes:      strokes,
		Score:        score,
		BestClips:    s.exportBest(ctx, videoID, strokes, score),
	}
	report(progressComplete)

	s.save(ctx, result)
	metrics.RecordAnalysisCompleted(time.Since(started).Seconds())
	s.logger.Info(ctx, "analysis complete",
		logger.String("video_id", videoID),
		logger.Int("frames", len(frames)),
		logger.Int("motion_points", len(points)),
		logger.Int("strokes", len(strokes)),
		logger.Float64("overall_score", score.Overall),
	)
	return result, nil
}

// exportBest picks the highest-scoring stroke of each type and
// requests a clip export for its time range. The two exports are
// independent and run concurrently; a failed export degrades to the
// original video identifier.
func (s *Service) exportBest(ctx context.Context, videoID string, strokes []model.StrokeSegment, score model.VideoScore) map[model.StrokeType]model.ClipRef {
	totals := make(map[string]float64, len(score.Strokes))
	for _, sc := range score.Strokes {
		totals[sc.StrokeID] = sc.TotalScore
	}

	best := map[model.StrokeType]model.StrokeSegment{}
	for _, stroke := range strokes {
		cur, ok := best[stroke.Type]
		if !ok || totals[stroke.ID] > totals[cur.ID] {
			best[stroke.Type] = stroke
		}
	}

	clips := make(map[model.StrokeType]model.ClipRef, len(best))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for strokeType, stroke := range best {
		wg.Add(1)
		go func(strokeType model.StrokeType, stroke model.StrokeSegment) {
			defer wg.Done()
			r := model.ClipRange{Start: stroke.StartTime, End: stroke.EndTime}
			artifact, err := s.exporter.Export(ctx, videoID, r)
			if err != nil {
				metrics.RecordExportFailure()
				s.logger.Warn(ctx, "clip export failed, keeping original video",
					logger.String("video_id", videoID),
					logger.String("stroke_type", string(strokeType)),
					logger.Error(err),
				)
				artifact = videoID
			}
			mu.Lock()
			clips[strokeType] = model.ClipRef{Artifact: artifact, Range: r}
			mu.Unlock()
		}(strokeType, stroke)
	}
	wg.Wait()
	return clips
}

func (s *Service) save(ctx context.Context, result model.SessionResult) {
	if err := s.store.Save(ctx, result); err != nil {
		s.logger.Warn(ctx, "failed to store session result",
			logger.String("video_id", result.VideoID),
			logger.Error(err),
		)
	}
}

// Result returns a previously analyzed video's session result.
func (s *Service) Result(ctx context.Context, videoID string) (model.SessionResult, error) {
	return s.store.Get(ctx, videoID)
}

// monotonic wraps a progress callback so the reported fraction is
// clamped to [0,1] and never decreases. A nil callback is absorbed.
func monotonic(fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return func(float64) {}
	}
	last := math.Inf(-1)
	return func(v float64) {
		v = math.Max(0, math.Min(1, v))
		if v < last {
			v = last
		}
		last = v
		fn(v)
	}
}
