package scheduler

import (
	"sync"
	"sync/atomic"
)

// BoundedQueue is a fixed-capacity FIFO ring shared by any number of producers
// and the single worker.
//
// Put blocks while the queue is full and Take blocks while it is empty. Peek and
// TryTake never block; the batch accumulator uses them to look at the head before
// deciding whether it belongs to the group being built.
type BoundedQueue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	ring  []T
	head  int
	count int

	// Mirror of count readable without the lock.
	size atomic.Int64
}

// NewBoundedQueue creates a queue holding at most capacity items.
// It panics if capacity is not positive.
func NewBoundedQueue[T any](capacity int) *BoundedQueue[T] {
	if capacity <= 0 {
		panic(ErrInvalidCapacity)
	}

	q := &BoundedQueue[T]{
		ring: make([]T, capacity),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Put appends value to the tail, blocking while the queue is full.
func (q *BoundedQueue[T]) Put(value T) {
	q.mu.Lock()
	for q.count == len(q.ring) {
		q.notFull.Wait()
	}

	q.ring[(q.head+q.count)%len(q.ring)] = value
	q.count++
	q.size.Store(int64(q.count))

	q.notEmpty.Signal()
	q.mu.Unlock()
}

// Take removes and returns the head, blocking while the queue is empty.
func (q *BoundedQueue[T]) Take() T {
	q.mu.Lock()
	for q.count == 0 {
		q.notEmpty.Wait()
	}

	value := q.removeHead()
	q.mu.Unlock()
	return value
}

// TryTake removes and returns the head if there is one.
func (q *BoundedQueue[T]) TryTake() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.removeHead(), true
}

// Peek returns the head without removing it.
func (q *BoundedQueue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.ring[q.head], true
}

// Len returns the number of queued items.
func (q *BoundedQueue[T]) Len() int {
	return int(q.size.Load())
}

// Cap returns the fixed capacity.
func (q *BoundedQueue[T]) Cap() int {
	return len(q.ring)
}

// removeHead must be called with mu held and count > 0.
func (q *BoundedQueue[T]) removeHead() T {
	var zero T
	value := q.ring[q.head]
	q.ring[q.head] = zero
	q.head = (q.head + 1) % len(q.ring)
	q.count--
	q.size.Store(int64(q.count))

	q.notFull.Signal()
	return value
}
