package scheduler

import (
	"sync/atomic"

	"github.com/utkarsh5026/commitlog/internal/cpu"
	"github.com/utkarsh5026/commitlog/internal/types"
)

// Worker owns the pending queue and the single goroutine that drains it.
//
// All task side effects and all Syncer calls happen on the goroutine running
// Run, which gives appends and syncs a total order without any locking around
// the log itself.
type Worker[R any] struct {
	conf   *Config
	queue  *BoundedQueue[*types.SubmittedTask[R]]
	policy syncPolicy[R]

	// Written only by the Run goroutine.
	completed atomic.Int64
	syncs     atomic.Int64
}

// NewWorker validates conf and builds a worker. Call Run to start draining.
func NewWorker[R any](conf *Config) (*Worker[R], error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return &Worker[R]{
		conf:   conf,
		queue:  NewBoundedQueue[*types.SubmittedTask[R]](conf.QueueCapacity),
		policy: newSyncPolicy[R](conf),
	}, nil
}

// Submit enqueues a task, blocking while the queue is full.
func (w *Worker[R]) Submit(t *types.SubmittedTask[R]) {
	w.queue.Put(t)
}

// Run drains the queue forever. It returns only when a fatal fault stops the
// worker, and the returned error is always a *FatalError.
func (w *Worker[R]) Run() error {
	if w.conf.CPUAffinity >= 0 {
		release, err := cpu.PinCurrentThread(w.conf.CPUAffinity)
		if err != nil {
			w.conf.Logger.Warn("commit log worker not pinned", "cpu", w.conf.CPUAffinity, "err", err)
		}
		defer release()
	}

	w.conf.Logger.Debug("commit log worker started",
		"mode", w.conf.SyncMode.String(),
		"capacity", w.conf.QueueCapacity,
		"window", w.conf.BatchWindow,
	)

	for {
		c, err := w.policy.Drain(w.queue)
		if err != nil {
			w.conf.Logger.Error("commit log worker stopped", "err", err, "pending", w.queue.Len())
			return err
		}

		if c.synced > 0 {
			w.syncs.Add(1)
		}
		w.completed.Add(int64(c.completed))
	}
}

// Pending returns the number of queued tasks not yet taken by the worker.
func (w *Worker[R]) Pending() int64 {
	return int64(w.queue.Len())
}

// Completed returns the number of tasks whose futures have been resolved.
func (w *Worker[R]) Completed() int64 {
	return w.completed.Load()
}

// Syncs returns the number of group syncs issued.
func (w *Worker[R]) Syncs() int64 {
	return w.syncs.Load()
}

// Capacity returns the fixed queue capacity.
func (w *Worker[R]) Capacity() int {
	return w.queue.Cap()
}
