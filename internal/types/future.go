package types

import (
	"errors"
	"sync/atomic"
)

// ErrAlreadyResolved is the panic value raised when a Future is resolved more than once.
var ErrAlreadyResolved = errors.New("future already resolved")

// Result is the outcome a Future is resolved with.
//
// Type parameters:
//   - R: The type of the produced value
//   - K: The type of the key identifying the unit of work
type Result[R any, K comparable] struct {
	Value R
	Key   K
	Error error
}

// NewResult builds a Result from its parts.
func NewResult[R any, K comparable](value R, key K, err error) Result[R, K] {
	return Result[R, K]{Value: value, Key: key, Error: err}
}

// Future is a one-shot, write-once / read-many result cell.
//
// Exactly one goroutine resolves it; any number of goroutines may wait on it and
// all of them observe the same Result. Closing the done channel after the result
// is stored gives every waiter a happens-before edge on the stored value.
type Future[R any, K comparable] struct {
	done     chan struct{}
	resolved atomic.Bool
	result   Result[R, K]
}

// NewFuture creates an unresolved Future.
func NewFuture[R any, K comparable]() *Future[R, K] {
	return &Future[R, K]{
		done: make(chan struct{}),
	}
}

// Resolve stores the result and releases all waiters.
// A second call is a programming error and panics with ErrAlreadyResolved.
func (f *Future[R, K]) Resolve(r Result[R, K]) {
	if !f.resolved.CompareAndSwap(false, true) {
		panic(ErrAlreadyResolved)
	}
	f.result = r
	close(f.done)
}

// Get blocks until the Future is resolved and returns its value, key and error.
// There is deliberately no timeout variant.
func (f *Future[R, K]) Get() (R, K, error) {
	<-f.done
	return f.result.Value, f.result.Key, f.result.Error
}

// TryGet returns the result without blocking. The last return value reports
// whether the Future was resolved; the other values are zero when it was not.
func (f *Future[R, K]) TryGet() (R, K, error, bool) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Key, f.result.Error, true
	default:
		var zeroR R
		var zeroK K
		return zeroR, zeroK, nil, false
	}
}

// Done returns a channel that is closed once the Future is resolved.
func (f *Future[R, K]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the Future has been resolved.
func (f *Future[R, K]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
