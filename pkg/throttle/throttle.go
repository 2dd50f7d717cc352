package throttle

import (
	"context"
	"sync"
	"time"
)

// Limit caps executions per fixed window.
type Limit struct {
	Events int
	Window time.Duration
}

// Limiter grants or delays one execution for a job-type key.
type Limiter interface {
	// Take consumes one slot from the key's current window. Returns a
	// RetryAfterError when the window is exhausted.
	Take(ctx context.Context, key string) error
}

type window struct {
	start time.Time
	count int
}

// Memory is a process-local fixed-window limiter.
type Memory struct {
	limit   Limit
	windows map[string]*window
	now     func() time.Time
	mu      sync.Mutex
}

// MemoryOption configures a Memory limiter.
type MemoryOption func(*Memory)

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates a process-local limiter with the given limit.
func NewMemory(limit Limit, opts ...MemoryOption) *Memory {
	m := &Memory{
		limit:   limit,
		windows: make(map[string]*window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Take(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	w, ok := m.windows[key]
	if !ok || now.Sub(w.start) >= m.limit.Window {
		w = &window{start: now}
		m.windows[key] = w
	}

	if w.count >= m.limit.Events {
		return &RetryAfterError{
			Key:   key,
			After: w.start.Add(m.limit.Window).Sub(now),
		}
	}

	w.count++
	return nil
}

var _ Limiter = (*Memory)(nil)
