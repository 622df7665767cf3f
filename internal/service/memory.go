package service

import (
	"context"
	mathrand "math/rand"
	"sync"
	"time"
)

// Memory implements Resource with an in-process collection and optional
// artificial latency, standing in for a remote backend. Placement on create
// is append by default; collections that present most-recent-first prepend.
type Memory[R Record] struct {
	mu      sync.Mutex
	items   []R
	prepend bool

	minLatency time.Duration
	maxLatency time.Duration
}

// MemoryOption configures a Memory service.
type MemoryOption[R Record] func(*Memory[R])

// WithPrepend makes Create insert new records at the front.
func WithPrepend[R Record]() MemoryOption[R] {
	return func(m *Memory[R]) { m.prepend = true }
}

// WithLatency makes every call sleep a random duration in [min, max].
func WithLatency[R Record](min, max time.Duration) MemoryOption[R] {
	return func(m *Memory[R]) {
		if min < 0 || max < min {
			return
		}
		m.minLatency = min
		m.maxLatency = max
	}
}

// NewMemory creates an empty in-memory resource service.
func NewMemory[R Record](opts ...MemoryOption[R]) *Memory[R] {
	m := &Memory[R]{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Seed replaces the collection contents. Intended for fixtures.
func (m *Memory[R]) Seed(recs ...R) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]R{}, recs...)
}

// Len reports the collection size.
func (m *Memory[R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory[R]) List(ctx context.Context) ([]R, error) {
	if err := m.sleep(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]R{}, m.items...), nil
}

func (m *Memory[R]) Create(ctx context.Context, rec R) (R, error) {
	if err := m.sleep(ctx); err != nil {
		var zero R
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prepend {
		m.items = append([]R{rec}, m.items...)
	} else {
		m.items = append(m.items, rec)
	}
	return rec, nil
}

func (m *Memory[R]) Update(ctx context.Context, id string, rec R) (R, error) {
	if err := m.sleep(ctx); err != nil {
		var zero R
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.items {
		if existing.RecordID() == id {
			m.items[i] = rec
			break
		}
	}
	return rec, nil
}

func (m *Memory[R]) Delete(ctx context.Context, id string) error {
	if err := m.sleep(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.items {
		if existing.RecordID() == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory[R]) sleep(ctx context.Context) error {
	if m.maxLatency == 0 {
		return ctx.Err()
	}
	d := m.minLatency
	if spread := m.maxLatency - m.minLatency; spread > 0 {
		d += time.Duration(mathrand.Int63n(int64(spread)))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
