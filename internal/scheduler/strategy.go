package scheduler

import (
	"github.com/utkarsh5026/commitlog/internal/types"
)

// cycle describes one completed pass of a sync policy.
type cycle struct {
	// Units whose futures were resolved during the pass.
	completed int

	// Size of the group confirmed by a Syncer call, zero when no sync was issued.
	synced int
}

// syncPolicy is one way of draining the queue. Each call to Drain blocks until at
// least one task is available, processes it (and, for batching policies, any
// eligible followers) and reports what was completed.
//
// A non-nil error is fatal: the worker stops and nothing else is drained.
type syncPolicy[R any] interface {
	Drain(q *BoundedQueue[*types.SubmittedTask[R]]) (cycle, error)
}

// newSyncPolicy selects the policy once, from the configured sync mode.
// conf must have passed Validate.
func newSyncPolicy[R any](conf *Config) syncPolicy[R] {
	switch conf.SyncMode {
	case SyncBatch:
		return newWindowedBatch[R](conf)

	default:
		return newPerOperation[R](conf)
	}
}
