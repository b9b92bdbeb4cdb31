// Package mirror holds a local copy of a server-owned resource that is only
// ever replaced wholesale by server responses.
package mirror

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

var ErrClosed = errors.New("mirror: closed")

const fetchKey = "fetch"

// Call performs one server round trip and returns the resource state the
// server reported.
type Call[T any] func(ctx context.Context) (T, error)

// Mirror serializes calls so responses are applied in issue order. A
// response that arrives after Reset or Close is discarded.
type Mirror[T any] struct {
	clone func(T) T
	sem   *semaphore.Weighted
	group singleflight.Group

	mu     sync.RWMutex
	value  T
	loaded bool
	gen    uint64
	closed bool

	inflight atomic.Int32
}

// New returns an empty mirror. clone copies a value so readers never share
// memory with the mirror; nil means values are copied by assignment.
func New[T any](clone func(T) T) *Mirror[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Mirror[T]{clone: clone, sem: semaphore.NewWeighted(1)}
}

// Snapshot returns a copy of the current value and whether one was ever
// applied since the last Reset.
func (m *Mirror[T]) Snapshot() (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clone(m.value), m.loaded
}

func (m *Mirror[T]) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Loading reports whether a call is queued or in flight.
func (m *Mirror[T]) Loading() bool {
	return m.inflight.Load() > 0
}

func (m *Mirror[T]) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Mutate runs call after every earlier call has finished and replaces the
// value with its result. On error the value is unchanged. If the mirror was
// Reset while call ran, the result is dropped and Mutate returns nil.
func (m *Mirror[T]) Mutate(ctx context.Context, call Call[T]) error {
	return m.run(ctx, call)
}

// Fetch is Mutate for reads: concurrent Fetch calls share one round trip.
// The shared call ignores cancellation so one caller giving up does not
// fail the others; each caller stops waiting when its own ctx is done.
func (m *Mirror[T]) Fetch(ctx context.Context, call Call[T]) error {
	if m.Closed() {
		return ErrClosed
	}
	shared := context.WithoutCancel(ctx)
	ch := m.group.DoChan(fetchKey, func() (any, error) {
		return nil, m.run(shared, call)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror[T]) run(ctx context.Context, call Call[T]) error {
	m.inflight.Add(1)
	defer m.inflight.Add(-1)

	if m.Closed() {
		return ErrClosed
	}
	if err := m.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer m.sem.Release(1)

	m.mu.RLock()
	gen, closed := m.gen, m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	v, err := call(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.gen != gen {
		return nil
	}
	m.value = m.clone(v)
	m.loaded = true
	return nil
}

// Reset forgets the value. Calls already in flight finish but their results
// are not applied.
func (m *Mirror[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value = zero
	m.loaded = false
	m.gen++
}

// Close resets the mirror and makes every later call fail with ErrClosed.
func (m *Mirror[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value = zero
	m.loaded = false
	m.gen++
	m.closed = true
}
