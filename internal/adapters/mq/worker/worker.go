package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/pkg/logger"
	"github.com/okian/drowsy/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount     = 2
	defaultDeliveryTimeout = 5 * time.Second
	poolShutdownTimeout    = 30 * time.Second
)

// Delivery is what workers read off the queue.
type Delivery = model.Delivery

// Notifier delivers one alert over one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, alert model.AlertEvent) error
}

// Queue defines how workers receive deliveries.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Delivery
}

// Worker processes deliveries.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the delivery in progress.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker fans every alert out to all notifiers concurrently.
// Failures are logged and counted, never retried.
type InMemoryWorker struct {
	queue     Queue
	notifiers []Notifier
	name      string
	timeout   time.Duration
	processed *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, notifiers []Notifier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		notifiers: notifiers,
		name:      "worker",
		timeout:   defaultDeliveryTimeout,
		processed: &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	deliveries := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := w.process(ctx, d); err != nil {
				w.logger.Error(ctx, "alert delivery incomplete",
					logger.String("alert_id", d.Alert.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	stopped := true
	w.shutdownOnce.Do(func() {
		close(w.shutdown)
		stopped = false
	})
	if stopped {
		return ErrStopped
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Processed returns how many deliveries this worker has handled.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, d Delivery) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		w.processed.Add(1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var g errgroup.Group
	errs := make([]error, len(w.notifiers))
	for i, n := range w.notifiers {
		g.Go(func() error {
			errs[i] = w.notify(ctx, n, d.Alert)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (w *InMemoryWorker) notify(ctx context.Context, n Notifier, alert model.AlertEvent) error { //nolint:gocritic // hugeParam
	nctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	err := n.Notify(nctx, alert)
	latency := float64(time.Since(start).Milliseconds())
	metrics.RecordDelivery(n.Name(), err == nil, latency)

	if err != nil {
		metrics.RecordErrorByComponent("notify", n.Name())
		return fmt.Errorf("%w: %s: %w", ErrDelivery, n.Name(), err)
	}
	w.logger.Debug(ctx, "alert delivered",
		logger.String("channel", n.Name()),
		logger.String("alert_id", alert.ID),
		logger.Float64("latency_ms", latency),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed atomic.Int64
	logger    logger.Logger
}

// NewPool creates a worker pool. Options are applied to every worker.
func NewPool(workerCount int, queue Queue, notifiers []Notifier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append(append([]Option{}, opts...), WithName("worker-"+strconv.Itoa(i)))
		w := NewInMemoryWorker(queue, notifiers, wopts...)
		w.processed = &pool.processed
		pool.workers[i] = w
	}

	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many deliveries the pool has handled.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
