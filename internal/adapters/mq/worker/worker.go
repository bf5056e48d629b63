// Package worker runs the bounded pool that turns frame-triple jobs
// into motion points.
//
// Workers are pure consumers: each extraction is independent, so the
// pool may run jobs in any order. The caller restores timestamp order
// after the join (see the motion builder).
package worker

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"github.com/courtside/strokelab/internal/adapters/mq/queue"
	"github.com/courtside/strokelab/internal/domain/model"
	"github.com/courtside/strokelab/pkg/logger"
	"github.com/courtside/strokelab/pkg/metrics"
)

// Extractor computes a motion point from one job. ok=false means a
// required metric was undefined and the point must be dropped.
type Extractor interface {
	Extract(ctx context.Context, j queue.Job) (model.MotionPoint, bool)
}

// Collector receives successfully extracted points. Implementations
// must be safe for concurrent use.
type Collector interface {
	Collect(p model.MotionPoint)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker drains jobs until its channel closes or ctx is canceled.
type Worker struct {
	queue     Queue
	extractor Extractor
	collector Collector
	name      string
	logger    logger.Logger
}

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker bound to the given queue.
func NewWorker(q Queue, e Extractor, c Collector, opts ...Option) *Worker {
	w := &Worker{
		queue:     q,
		extractor: e,
		collector: c,
		name:      "worker",
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes jobs until the queue drains or ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if p, defined := w.extractor.Extract(ctx, j); defined {
				w.collector.Collect(p)
				metrics.RecordMotionPointBuilt()
			} else {
				metrics.RecordMotionPointDropped()
				w.logger.Debug(ctx, "dropped undefined motion point",
					logger.Int("index", j.Index),
					logger.String("frame", j.Next.FrameID),
				)
			}
		}
	}
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates a pool of count workers; count < 1 defaults to
// runtime.NumCPU().
func NewPool(count int, q Queue, e Extractor, c Collector) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*Worker, count),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(q, e, c, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(count)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has drained. Close the queue first:
// this is the join side of the fork-join barrier.
func (p *Pool) Wait() {
	p.wg.Wait()
	metrics.UpdateWorkerCount(0)
}

// Size returns the worker count.
func (p *Pool) Size() int {
	return len(p.workers)
}
