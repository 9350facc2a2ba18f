package filter

import (
	"sync"
)

// Memo caches the last Apply of an engine. A call is served from the cache
// when it receives the same backing record slice (same first element and
// length) and a config with the same fingerprint. Callers must treat record
// slices passed to a Memo as immutable.
type Memo[T any] struct {
	engine *Engine[T]

	mu     sync.Mutex
	first  *T
	length int
	key    string
	valid  bool
	result Result[T]

	hits   uint64
	misses uint64
}

// NewMemo wraps engine with a single-entry cache.
func NewMemo[T any](engine *Engine[T]) *Memo[T] {
	return &Memo[T]{engine: engine}
}

// Engine returns the wrapped engine.
func (m *Memo[T]) Engine() *Engine[T] {
	return m.engine
}

// Apply behaves as Engine.Apply.
func (m *Memo[T]) Apply(records []T, cfg Config) (Result[T], error) {
	var first *T
	if len(records) > 0 {
		first = &records[0]
	}
	key := cfg.Fingerprint()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.valid && key != "" && m.first == first && m.length == len(records) && m.key == key {
		m.hits++
		return m.result, nil
	}
	m.misses++

	res, err := m.engine.Apply(records, cfg)
	if err != nil {
		return res, err
	}

	m.first, m.length, m.key = first, len(records), key
	m.result, m.valid = res, true
	return res, nil
}

// Reset drops the cached result.
func (m *Memo[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
	m.first = nil
	m.result = Result[T]{}
}

// Stats returns cache hit and miss counts.
func (m *Memo[T]) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
