package feed

import (
	"context"
	"sync"
	"time"
)

// snapshot holds the last loaded copy of one record kind. The same backing
// slice is handed out until it expires, which lets filter.Memo recognise an
// unchanged input.
type snapshot[T any] struct {
	load func(ctx context.Context) ([]T, error)
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	items    []T
	loadedAt time.Time
	loaded   bool
}

func newSnapshot[T any](load func(ctx context.Context) ([]T, error), ttl time.Duration, now func() time.Time) *snapshot[T] {
	return &snapshot[T]{load: load, ttl: ttl, now: now}
}

// Get returns the cached records, reloading them when the ttl has passed.
// A non-positive ttl keeps records until invalidate is called.
// The returned slice must not be modified.
func (s *snapshot[T]) Get(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded && (s.ttl <= 0 || s.now().Sub(s.loadedAt) < s.ttl) {
		return s.items, nil
	}

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.items, s.loadedAt, s.loaded = items, s.now(), true
	return s.items, nil
}

func (s *snapshot[T]) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.items = nil
}
