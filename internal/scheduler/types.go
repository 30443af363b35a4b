package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// SyncMode selects how the worker confirms durability of log appends.
type SyncMode int

const (
	// SyncPerOperation executes every unit on its own and never calls the Syncer.
	// Durability of each write is the log's own responsibility in this mode.
	SyncPerOperation SyncMode = iota

	// SyncBatch folds queued appends into a group that shares one Syncer call.
	SyncBatch
)

func (m SyncMode) String() string {
	switch m {
	case SyncPerOperation:
		return "periodic"
	case SyncBatch:
		return "batch"
	default:
		return fmt.Sprintf("SyncMode(%d)", int(m))
	}
}

// Syncer makes everything written to the log since the previous call durable.
// A returned error is treated as all-or-nothing.
type Syncer interface {
	Sync() error
}

// SyncFunc adapts an ordinary function to the Syncer interface.
type SyncFunc func() error

// Sync calls f.
func (f SyncFunc) Sync() error {
	return f()
}

var (
	ErrInvalidCapacity = errors.New("queue capacity must be positive")
	ErrInvalidWindow   = errors.New("batch window must not be negative")
	ErrNoSyncer        = errors.New("batch sync mode requires a syncer")
	ErrInvalidSyncMode = errors.New("unknown sync mode")
)

// Config holds everything the worker needs. It is read once when the worker is
// built and never mutated afterwards.
type Config struct {
	// How appends are made durable.
	SyncMode SyncMode

	// Fixed capacity of the pending task queue.
	QueueCapacity int

	// Upper bound on how long a batch group keeps admitting queued appends.
	BatchWindow time.Duration

	// The log's sync primitive. Required in batch mode, unused otherwise.
	Syncer Syncer

	// CPU the worker thread is pinned to; negative leaves the goroutine unpinned.
	CPUAffinity int

	// Structured logger for fatal faults and debug-level group tracing.
	Logger *slog.Logger

	// Hook called after every successful group sync with the group size and
	// the time the sync call took.
	OnSync func(groupSize int, took time.Duration)

	// Clock used for the batch deadline and sync timing.
	Clock clockwork.Clock
}

// Validate checks the configuration and fills in defaults for optional fields.
func (c *Config) Validate() error {
	if c.SyncMode != SyncPerOperation && c.SyncMode != SyncBatch {
		return fmt.Errorf("%w: %v", ErrInvalidSyncMode, c.SyncMode)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, c.QueueCapacity)
	}
	if c.BatchWindow < 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidWindow, c.BatchWindow)
	}
	if c.SyncMode == SyncBatch && c.Syncer == nil {
		return ErrNoSyncer
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

// FatalOp names the step that failed fatally.
type FatalOp string

const (
	FatalOpAppend FatalOp = "append"
	FatalOpSync   FatalOp = "sync"
)

// FatalError reports a fault that stopped the worker. Once it is returned the
// log accepts no further progress and the members of the affected group are
// never resolved.
type FatalError struct {
	Op        FatalOp
	GroupSize int
	Err       error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("commit log worker: fatal %s fault (group of %d): %v", e.Op, e.GroupSize, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
