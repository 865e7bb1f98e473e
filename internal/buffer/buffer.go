// Package buffer provides the in-memory accumulator between log ingestion
// and tier flushes. Appends never wait on flush I/O: taking the pending
// items swaps in a fresh slice under the lock, and the flush happens outside.
package buffer

import (
	"sync"
	"time"

	"github.com/rxtech-lab/tradelog/internal/utils"
)

// Buffer accumulates items in insertion order until a size or age threshold
// is reached.
type Buffer[T any] struct {
	mu      sync.Mutex
	items   []T
	firstAt time.Time
	clock   utils.Clock
}

// New creates an empty buffer.
func New[T any](clock utils.Clock) *Buffer[T] {
	return &Buffer[T]{clock: clock}
}

// Add appends an item and returns the buffered count including it.
func (b *Buffer[T]) Add(item T) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		b.firstAt = b.clock.Now()
	}

	b.items = append(b.items, item)

	return len(b.items)
}

// Len returns the buffered count.
func (b *Buffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.items)
}

// TakeIfReady swaps out and returns the buffered items when the buffer has
// reached batchSize or its oldest item is at least maxAge old. Returns nil
// when neither threshold is met.
func (b *Buffer[T]) TakeIfReady(batchSize int, maxAge time.Duration) []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		return nil
	}

	sizeReady := batchSize > 0 && len(b.items) >= batchSize
	ageReady := maxAge > 0 && b.clock.Now().Sub(b.firstAt) >= maxAge

	if !sizeReady && !ageReady {
		return nil
	}

	return b.take()
}

// TakeAll swaps out and returns everything buffered, regardless of thresholds.
func (b *Buffer[T]) TakeAll() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.take()
}

// Requeue puts items back at the front of the buffer, preserving their
// original order ahead of anything added since. Used for at-least-once
// redelivery after transient flush failures.
func (b *Buffer[T]) Requeue(items []T) {
	if len(items) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) == 0 {
		b.firstAt = b.clock.Now()
	}

	b.items = append(append([]T{}, items...), b.items...)
}

func (b *Buffer[T]) take() []T {
	taken := b.items
	b.items = nil

	return taken
}
