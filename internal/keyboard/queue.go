package keyboard

import (
	"errors"
	"sync"
)

// ErrQueueClosed is returned when enqueueing on a closed queue.
var ErrQueueClosed = errors.New("keyboard event queue closed")

// Queue is a FIFO safe for concurrent producers and consumers.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
}

// NewQueue creates a queue with room for capacity items before growing.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{items: make([]T, 0, max(capacity, 0))}
}

// Enqueue appends item.
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, item)
	return nil
}

// TryDequeue removes and returns the oldest item.
func (q *Queue[T]) TryDequeue() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// Drain removes every queued item and calls fn for each, oldest first.
// Items enqueued while fn runs are left for the next call. It returns the
// number of items handled.
func (q *Queue[T]) Drain(fn func(T)) int {
	q.mu.Lock()
	items := q.items
	q.items = make([]T, 0, cap(items))
	q.mu.Unlock()

	for _, item := range items {
		fn(item)
	}
	return len(items)
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops every queued item.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.items)
	q.items = q.items[:0]
}

// Close makes later Enqueue calls fail. Queued items can still be drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// Closed reports whether Close was called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
