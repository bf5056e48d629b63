// Package motion builds the ordered motion-point series from a pose
// frame sequence.
//
// Extraction over frame triples is embarrassingly parallel, so the
// builder forks it onto the bounded worker pool and restores timestamp
// order with a sort after the join. Everything downstream of the series
// (segmentation, classification, phase search) is order-dependent and
// strictly sequential.
package motion

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/courtside/strokelab/internal/adapters/mq/queue"
	"github.com/courtside/strokelab/internal/adapters/mq/worker"
	"github.com/courtside/strokelab/internal/domain/biomech"
	"github.com/courtside/strokelab/internal/domain/dedupe"
	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/courtside/strokelab/pkg/logger"
	"github.com/courtside/strokelab/pkg/metrics"
)

const defaultQueueSize = 4096

// Builder turns pose frames into an ordered motion-point series.
type Builder struct {
	workers   int
	queueSize int
	deduper   dedupe.Deduper
	logger    logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithWorkers bounds the extraction pool.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithQueueSize bounds the job queue.
func WithQueueSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithDeduper sets the frame-id deduper.
func WithDeduper(d dedupe.Deduper) Option {
	return func(b *Builder) {
		if d != nil {
			b.deduper = d
		}
	}
}

// NewBuilder creates a Builder with defaults.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		workers:   runtime.NumCPU(),
		queueSize: defaultQueueSize,
		deduper:   dedupe.NewInMemoryDeduper(),
		logger:    logger.Get().Named("motion"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Series computes the motion-point series for the given frames. Frames
// are sorted by timestamp and deduplicated by frame id first; triples
// with any undefined metric are dropped. The result is strictly
// ordered by timestamp.
func (b *Builder) Series(ctx context.Context, frames []model.PoseFrame) []model.MotionPoint {
	usable := b.prepare(ctx, frames)
	if len(usable) < 3 {
		// Energy needs a frame triple; nothing to derive.
		return nil
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(b.queueSize))
	col := &collector{}
	pool := worker.NewPool(b.workers, q, extractor{}, col)
	pool.Start(ctx)

	for i := 2; i < len(usable); i++ {
		j := queue.Job{
			Index:    i,
			PrevPrev: usable[i-2],
			Prev:     usable[i-1],
			Next:     usable[i],
		}
		for !q.Enqueue(ctx, j) {
			if ctx.Err() != nil {
				break
			}
			// Queue full; yield until workers drain some jobs.
			runtime.Gosched()
		}
		if ctx.Err() != nil {
			break
		}
	}
	_ = q.Close()
	pool.Wait()

	points := col.take()
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })

	// The series invariant is strictly increasing timestamps; drop ties.
	out := points[:0]
	for i, p := range points {
		if i > 0 && p.Timestamp <= out[len(out)-1].Timestamp {
			continue
		}
		out = append(out, p)
	}

	b.logger.Debug(ctx, "motion series built",
		logger.Int("frames", len(usable)),
		logger.Int("points", len(out)),
	)
	return out
}

// prepare sorts incoming frames by timestamp and keeps the first
// occurrence of each frame id.
func (b *Builder) prepare(ctx context.Context, frames []model.PoseFrame) []model.PoseFrame {
	sorted := make([]model.PoseFrame, len(frames))
	copy(sorted, frames)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	usable := sorted[:0]
	for _, f := range sorted {
		if f.FrameID != "" && b.deduper.SeenAndRecord(ctx, f.FrameID) {
			metrics.RecordFrameDuplicate()
			continue
		}
		usable = append(usable, f)
	}
	return usable
}

// extractor composes the biomech metrics into one motion point. Any
// undefined metric fails the whole point.
type extractor struct{}

func (extractor) Extract(_ context.Context, j queue.Job) (model.MotionPoint, bool) {
	dt := j.Next.Timestamp - j.Prev.Timestamp
	if dt <= 0 {
		return model.MotionPoint{}, false
	}

	energy, ok := biomech.Energy(j.PrevPrev, j.Prev, j.Next, dt)
	if !ok {
		return model.MotionPoint{}, false
	}
	shoulderCoil, ok := biomech.ShoulderCoilFactor(j.Prev, j.Next)
	if !ok {
		return model.MotionPoint{}, false
	}
	hipCoil, ok := biomech.HipCoilFactor(j.Prev, j.Next)
	if !ok {
		return model.MotionPoint{}, false
	}
	rotSign, ok := biomech.RotationSign(j.Prev, j.Next)
	if !ok {
		return model.MotionPoint{}, false
	}
	shoulderSpan, ok := biomech.ShoulderSpan(j.Next)
	if !ok {
		return model.MotionPoint{}, false
	}
	hipSpan, ok := biomech.HipSpan(j.Next)
	if !ok {
		return model.MotionPoint{}, false
	}
	footSpan, ok := biomech.FootSpan(j.Next)
	if !ok {
		return model.MotionPoint{}, false
	}
	wristX, ok := biomech.WristXOffsetRel(j.Next)
	if !ok {
		return model.MotionPoint{}, false
	}
	wristH, ok := biomech.WristHeightRel(j.Next)
	if !ok {
		return model.MotionPoint{}, false
	}
	forearmSpeed, ok := biomech.ForearmAngularSpeed(j.Prev, j.Next, dt)
	if !ok {
		return model.MotionPoint{}, false
	}
	wristSpeed, ok := biomech.WristLinearSpeed(j.Prev, j.Next, dt)
	if !ok {
		return model.MotionPoint{}, false
	}
	comSpeed, ok := biomech.ComSpeed(j.Prev, j.Next, dt)
	if !ok {
		return model.MotionPoint{}, false
	}
	handRatio, ok := biomech.HandSpeedRatio(j.Prev, j.Next, dt)
	if !ok {
		return model.MotionPoint{}, false
	}

	return model.MotionPoint{
		Timestamp:           j.Next.Timestamp,
		FrameID:             j.Next.FrameID,
		Energy:              energy,
		ShoulderCoilFactor:  shoulderCoil,
		HipCoilFactor:       hipCoil,
		RotSign:             rotSign,
		ShoulderSpan:        shoulderSpan,
		HipSpan:             hipSpan,
		FootSpan:            footSpan,
		WristXOffsetRel:     wristX,
		WristHeightRel:      wristH,
		ForearmAngularSpeed: forearmSpeed,
		WristLinearSpeed:    wristSpeed,
		ComSpeed:            comSpeed,
		HandSpeedRatio:      handRatio,
	}, true
}

// collector gathers points from concurrent workers.
type collector struct {
	mu     sync.Mutex
	points []model.MotionPoint
}

func (c *collector) Collect(p model.MotionPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.points = append(c.points, p)
}

func (c *collector) take() []model.MotionPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.points
	c.points = nil
	return out
}
