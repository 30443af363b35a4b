package commitlog

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultBatchWindow       = time.Millisecond
	defaultConcurrentWriters = 32
	perCPUQueueCapacity      = 1024
)

// ExecutorOption is a functional option for configuring the executor.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	syncMode          SyncMode
	queueCapacity     int
	concurrentWriters int
	batchWindow       time.Duration
	cpuAffinity       int
	logger            *slog.Logger
	onFatal           func(error)
	onSync            func(groupSize int, took time.Duration)
	clock             clockwork.Clock
}

// WithSyncMode selects per-operation or windowed batch syncing.
// If not specified, defaults to SyncPerOperation.
func WithSyncMode(mode SyncMode) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.syncMode = mode
	}
}

// WithQueueCapacity fixes the number of pending units the queue can hold.
// Submit blocks once that many units are waiting.
// If not specified, the capacity is derived from the sync mode: the number of
// concurrent writers in batch mode, 1024 per CPU otherwise.
func WithQueueCapacity(capacity int) ExecutorOption {
	return func(cfg *executorConfig) {
		if capacity > 0 {
			cfg.queueCapacity = capacity
		}
	}
}

// WithConcurrentWriters sets the expected number of concurrent writers, which
// sizes the queue in batch mode when no explicit capacity is given.
func WithConcurrentWriters(n int) ExecutorOption {
	return func(cfg *executorConfig) {
		if n > 0 {
			cfg.concurrentWriters = n
		}
	}
}

// WithBatchWindow sets how long a batch group keeps admitting already queued
// appends. Only meaningful in batch mode. Defaults to 1ms.
func WithBatchWindow(window time.Duration) ExecutorOption {
	return func(cfg *executorConfig) {
		if window >= 0 {
			cfg.batchWindow = window
		}
	}
}

// WithCPUAffinity runs the worker on a dedicated OS thread pinned to cpuID.
// On platforms without pinning support the thread is only locked.
func WithCPUAffinity(cpuID int) ExecutorOption {
	return func(cfg *executorConfig) {
		if cpuID >= 0 {
			cfg.cpuAffinity = cpuID
		}
	}
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(cfg *executorConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithOnFatal registers a hook that runs once, on its own goroutine, when a
// fatal fault stops the worker. A crash-only host typically exits here.
func WithOnFatal(fn func(error)) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.onFatal = fn
	}
}

// WithOnSync registers a hook called on the worker after each successful group
// sync with the group size and the duration of the sync call.
// The hook must not block.
func WithOnSync(fn func(groupSize int, took time.Duration)) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.onSync = fn
	}
}

// WithClock sets the clock used for the batch deadline and sync timing.
// Defaults to the real clock.
func WithClock(clock clockwork.Clock) ExecutorOption {
	return func(cfg *executorConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

func createConfig(opts ...ExecutorOption) *executorConfig {
	cfg := &executorConfig{
		syncMode:          SyncPerOperation,
		concurrentWriters: defaultConcurrentWriters,
		batchWindow:       defaultBatchWindow,
		cpuAffinity:       -1,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.queueCapacity == 0 {
		cfg.queueCapacity = defaultQueueCapacity(cfg.syncMode, cfg.concurrentWriters)
	}

	return cfg
}

func defaultQueueCapacity(mode SyncMode, concurrentWriters int) int {
	if mode == SyncBatch {
		return concurrentWriters
	}
	return perCPUQueueCapacity * runtime.NumCPU()
}
