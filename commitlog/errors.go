package commitlog

import (
	"errors"

	"github.com/utkarsh5026/commitlog/internal/scheduler"
	"github.com/utkarsh5026/commitlog/internal/types"
)

var (
	// ErrUnsupported is returned by every shutdown entrypoint. The commit log
	// is crash-only: there is no drain and no orderly stop.
	ErrUnsupported = errors.New("commit log executor: operation not supported (crash-only)")

	// ErrWorkerStopped is returned by Submit once a fatal fault stopped the worker.
	ErrWorkerStopped = errors.New("commit log executor: worker stopped")

	// ErrNilTask is returned when a task has no function.
	ErrNilTask = errors.New("commit log executor: nil task function")

	// ErrAlreadyResolved is the panic value raised when a handle is resolved twice.
	ErrAlreadyResolved = types.ErrAlreadyResolved

	// ErrNoSyncer is returned by NewExecutor when batch mode is requested
	// without a Syncer.
	ErrNoSyncer = scheduler.ErrNoSyncer

	// ErrInvalidSyncMode is returned by NewExecutor for a SyncMode other than
	// SyncPerOperation or SyncBatch.
	ErrInvalidSyncMode = scheduler.ErrInvalidSyncMode
)

// FatalError describes the fault that stopped the worker: a failed append
// inside a batch group, or a failed group sync.
type FatalError = scheduler.FatalError

const (
	FatalOpAppend = scheduler.FatalOpAppend
	FatalOpSync   = scheduler.FatalOpSync
)
