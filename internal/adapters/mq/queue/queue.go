// Package queue buffers alert deliveries between the frame pipeline and the
// delivery workers. Enqueue never blocks: when the buffer is full the
// delivery is dropped and the caller is told so.
package queue

import (
	"context"
	"sync"

	"github.com/okian/drowsy/internal/domain/model"
	"github.com/okian/drowsy/pkg/metrics"
)

const defaultQueueCapacity = 256

// Delivery is the payload type flowing through the queue.
type Delivery = model.Delivery

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a delivery to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, d Delivery) bool

	// Dequeue returns a channel that receives deliveries as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Delivery

	// Len returns the current number of queued deliveries.
	Len(ctx context.Context) int

	// Close stops accepting deliveries.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Delivery
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Delivery, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a delivery to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, d Delivery) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.items <- d:
		metrics.RecordQueueEnqueue()
		q.updateGauges()
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives deliveries as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Delivery {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-q.items:
				if !ok {
					return
				}
				select {
				case out <- d:
					metrics.RecordQueueDequeue()
					q.updateGauges()
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued deliveries.
func (q *InMemoryQueue) Len(_ context.Context) int {
	q.updateGauges()
	return len(q.items)
}

// Close stops accepting deliveries. Pending deliveries stay readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
