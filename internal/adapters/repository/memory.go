package repository

import (
	"context"
	"sync"

	"github.com/okian/drowsy/internal/domain/model"
)

const defaultCapacity = 100

// MemoryStore is a fixed size ring of the most recent records.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	ring     []model.LogRecord
	next     int
	size     int
	total    int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]model.LogRecord, s.capacity)
	return s
}

// Append stores rec, evicting the oldest record when full.
func (s *MemoryStore) Append(_ context.Context, rec model.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = rec
	s.next = (s.next + 1) % s.capacity
	if s.size < s.capacity {
		s.size++
	}
	s.total++
	return nil
}

// Recent returns up to limit records, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]model.LogRecord, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, s.size)
	out := make([]model.LogRecord, 0, n)
	for i := 1; i <= n; i++ {
		idx := (s.next - i + s.capacity) % s.capacity
		out = append(out, s.ring[idx])
	}
	return out, nil
}

// Count returns the number of records appended since creation.
func (s *MemoryStore) Count(_ context.Context) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
