package commitlog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/commitlog/internal/scheduler"
	"github.com/utkarsh5026/commitlog/internal/types"
)

// Executor serializes commit log work through a single dedicated worker.
//
// Units of work are queued in a bounded FIFO and executed one at a time by the
// worker goroutine. In batch mode consecutive appends that are already queued
// share one call to the log's Syncer, and none of their handles is resolved
// before that call succeeds.
//
// There is no shutdown. The worker runs for the life of the process and stops
// only on a fatal fault, after which Done is closed and Err reports the cause.
//
// Type parameters:
//   - R: The value produced by a unit of work, typically a log position
type Executor[R any] struct {
	worker  *scheduler.Worker[R]
	logger  *slog.Logger
	onFatal func(error)

	taskIDCounter atomic.Int64

	done chan struct{} // closed when the worker has stopped
	err  error         // set before done is closed
}

// NewExecutor creates an executor and starts its worker.
//
// syncer is the log's sync primitive. It is required in batch mode and never
// called in per-operation mode, where it may be nil.
//
// Example:
//
//	exec, err := commitlog.NewExecutor[Position](segment,
//	    commitlog.WithSyncMode(commitlog.SyncBatch),
//	    commitlog.WithBatchWindow(2*time.Millisecond),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	future, _ := exec.Append(func() (Position, error) { return segment.Append(record) })
//	pos, _, err := future.Get()
func NewExecutor[R any](syncer Syncer, opts ...ExecutorOption) (*Executor[R], error) {
	cfg := createConfig(opts...)

	conf := &scheduler.Config{
		SyncMode:      cfg.syncMode,
		QueueCapacity: cfg.queueCapacity,
		BatchWindow:   cfg.batchWindow,
		Syncer:        syncer,
		CPUAffinity:   cfg.cpuAffinity,
		Logger:        cfg.logger,
		OnSync:        cfg.onSync,
		Clock:         cfg.clock,
	}

	worker, err := scheduler.NewWorker[R](conf)
	if err != nil {
		return nil, fmt.Errorf("commit log executor: %w", err)
	}

	e := &Executor[R]{
		worker:  worker,
		logger:  conf.Logger,
		onFatal: cfg.onFatal,
		done:    make(chan struct{}),
	}

	go func() {
		e.stop(worker.Run())
	}()

	return e, nil
}

// stop records the fault that ended the worker and notifies the owner.
func (e *Executor[R]) stop(err error) {
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		fatal = &FatalError{Err: err}
	}

	e.err = fatal
	close(e.done)

	if e.onFatal != nil {
		e.onFatal(fatal)
	}
}

// Submit queues a unit of work and returns its handle.
//
// It blocks while the queue is full and returns as soon as the unit is queued.
// Once the worker has stopped it fails with ErrWorkerStopped.
func (e *Executor[R]) Submit(task Task[R]) (*Future[R], error) {
	if task.Fn == nil {
		return nil, ErrNilTask
	}

	select {
	case <-e.done:
		return nil, fmt.Errorf("%w: %w", ErrWorkerStopped, e.err)
	default:
	}

	st := types.NewSubmittedTask[R](e.taskIDCounter.Add(1), task.Kind, task.Fn)
	e.worker.Submit(st)
	return st.Future, nil
}

// Append submits a log append.
func (e *Executor[R]) Append(fn func() (R, error)) (*Future[R], error) {
	return e.Submit(Task[R]{Kind: KindLogAppend, Fn: fn})
}

// Execute submits any other deferred operation. It never joins a batch group.
func (e *Executor[R]) Execute(fn func() (R, error)) (*Future[R], error) {
	return e.Submit(Task[R]{Kind: KindOther, Fn: fn})
}

// Done returns a channel closed when a fatal fault has stopped the worker.
func (e *Executor[R]) Done() <-chan struct{} {
	return e.done
}

// Err returns the *FatalError that stopped the worker, or nil while it runs.
func (e *Executor[R]) Err() error {
	select {
	case <-e.done:
		return e.err
	default:
		return nil
	}
}

// ActiveCount returns the number of workers, which is always one.
func (e *Executor[R]) ActiveCount() int {
	return 1
}

// PendingTasks returns the number of queued units not yet taken by the worker.
func (e *Executor[R]) PendingTasks() int64 {
	return e.worker.Pending()
}

// CompletedTasks returns the number of units whose handles have been resolved.
// A batch group of N appends counts N.
func (e *Executor[R]) CompletedTasks() int64 {
	return e.worker.Completed()
}

// SyncCount returns the number of group syncs issued in batch mode.
func (e *Executor[R]) SyncCount() int64 {
	return e.worker.Syncs()
}

// QueueCapacity returns the fixed queue capacity.
func (e *Executor[R]) QueueCapacity() int {
	return e.worker.Capacity()
}

// Stats returns a snapshot of all counters.
func (e *Executor[R]) Stats() Stats {
	return Stats{
		ActiveCount:    e.ActiveCount(),
		PendingTasks:   e.PendingTasks(),
		CompletedTasks: e.CompletedTasks(),
		SyncCount:      e.SyncCount(),
		QueueCapacity:  e.QueueCapacity(),
	}
}

// Shutdown is not supported and always returns ErrUnsupported.
func (e *Executor[R]) Shutdown() error {
	return ErrUnsupported
}

// ShutdownNow is not supported and always returns ErrUnsupported.
func (e *Executor[R]) ShutdownNow() ([]Task[R], error) {
	return nil, ErrUnsupported
}

// AwaitTermination is not supported and always returns ErrUnsupported.
func (e *Executor[R]) AwaitTermination(time.Duration) error {
	return ErrUnsupported
}

// IsShutdown always reports false.
func (e *Executor[R]) IsShutdown() bool {
	return false
}

// IsTerminated always reports false.
func (e *Executor[R]) IsTerminated() bool {
	return false
}
