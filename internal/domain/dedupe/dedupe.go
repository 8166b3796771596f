// Package dedupe remembers recently processed frame IDs so a retried frame
// submission cannot advance the detection streaks twice.
package dedupe

import (
	"context"
	"sync"
)

// DefaultMaxSize is the number of frame IDs remembered by default.
// At 30 frames per second it covers a little over five minutes.
const DefaultMaxSize = 10000

// Deduper records seen frame IDs.
type Deduper interface {
	// SeenAndRecord reports whether id was already seen and records it if not.
	// Empty IDs are never recorded and never reported as seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so the frame can be submitted again. Used when the
	// frame was rejected after being recorded.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// frameWindow is a FIFO ring of IDs backed by a map for lookups.
type frameWindow struct {
	mu      sync.Mutex
	maxSize int
	ring    []string
	next    int // slot the next ID is written to
	count   int
	index   map[string]int // id -> slot
}

// NewFrameWindow creates a bounded, concurrency-safe Deduper.
func NewFrameWindow(opts ...Option) Deduper {
	w := &frameWindow{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(w)
	}
	w.ring = make([]string, w.maxSize)
	w.index = make(map[string]int, w.maxSize)
	return w
}

func (w *frameWindow) SeenAndRecord(_ context.Context, id string) bool {
	if id == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index[id]; ok {
		return true
	}

	if old := w.ring[w.next]; old != "" {
		delete(w.index, old)
		w.count--
	}
	w.ring[w.next] = id
	w.index[id] = w.next
	w.next = (w.next + 1) % w.maxSize
	w.count++
	return false
}

func (w *frameWindow) Unrecord(_ context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	slot, ok := w.index[id]
	if !ok {
		return
	}
	delete(w.index, id)
	w.ring[slot] = ""
	w.count--
}

func (w *frameWindow) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(w.count)
}
