package commitlog

import (
	"fmt"
	"strings"

	"github.com/utkarsh5026/commitlog/internal/scheduler"
	"github.com/utkarsh5026/commitlog/internal/types"
)

// Kind discriminates log appends from other deferred operations.
type Kind = types.Kind

const (
	// KindOther units always run on their own and are never batched.
	KindOther = types.KindOther
	// KindLogAppend units may share a sync with queued neighbours in batch mode.
	KindLogAppend = types.KindLogAppend
)

// Future is the deferred result handle returned by Submit. Its key is the
// submission sequence number of the unit of work.
type Future[R any] = types.Future[R, int64]

// Task is a unit of work: a kind and the side effect producing its value.
type Task[R any] struct {
	Kind Kind
	Fn   func() (R, error)
}

// Syncer is the log's sync primitive.
type Syncer = scheduler.Syncer

// SyncFunc adapts a function to Syncer.
type SyncFunc = scheduler.SyncFunc

// SyncMode selects per-operation or windowed batch syncing.
type SyncMode = scheduler.SyncMode

const (
	// SyncPerOperation executes every unit immediately. The executor never
	// calls the Syncer in this mode.
	SyncPerOperation = scheduler.SyncPerOperation
	// SyncBatch shares one Syncer call among the appends queued within a window.
	SyncBatch = scheduler.SyncBatch
)

// ParseSyncMode parses a configuration value into a SyncMode.
// It accepts "periodic" or "per-operation", and "batch".
func ParseSyncMode(s string) (SyncMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "periodic", "per-operation", "peroperation":
		return SyncPerOperation, nil
	case "batch":
		return SyncBatch, nil
	default:
		return 0, fmt.Errorf("unknown commit log sync mode %q", s)
	}
}

// Stats is a point-in-time snapshot of the executor counters.
type Stats struct {
	ActiveCount    int
	PendingTasks   int64
	CompletedTasks int64
	SyncCount      int64
	QueueCapacity  int
}
