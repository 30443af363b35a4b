// Package commitlog provides the write-path executor of a crash-only commit log.
//
// The primary type is Executor[R], which accepts units of work, queues them in a
// bounded FIFO and runs them one at a time on a single dedicated worker. Units
// are either log appends or other deferred operations; R is the value an append
// produces, usually its position in the log.
//
// # Basic Usage
//
//	exec, err := commitlog.NewExecutor[segment.Position](seg,
//	    commitlog.WithSyncMode(commitlog.SyncBatch),
//	    commitlog.WithBatchWindow(time.Millisecond),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	future, err := exec.Append(func() (segment.Position, error) {
//	    return seg.Append(record)
//	})
//	pos, id, err := future.Get() // returns once the record is durable
//
// # Sync Modes
//
//   - SyncPerOperation: every unit runs on its own and its handle is resolved
//     right after it runs. The executor never calls the Syncer; per-write
//     durability is the log's business.
//   - SyncBatch: the worker takes the head of the queue and, if it is an append,
//     keeps folding already queued appends into a group until the queue is
//     empty, the head is not an append, or the batch window has elapsed. It then
//     calls Syncer.Sync exactly once and resolves every member, in submission
//     order. The window bounds accumulation only; the worker never waits for
//     more work to arrive.
//
// # Backpressure
//
// Submit blocks while the queue is full. Capacity is fixed at construction:
// by default the number of concurrent writers in batch mode and 1024 per CPU in
// per-operation mode.
//
// # Failure Model
//
// The executor is crash-only. A fault in an append that is part of a batch
// group, or a failed group sync, stops the worker: no member of the group is
// resolved, Done is closed, Err returns a *FatalError and the WithOnFatal hook
// runs. Faults in units that run on their own are delivered through their
// handle instead. Shutdown, ShutdownNow and AwaitTermination always return
// ErrUnsupported.
//
// # Monitoring
//
// ActiveCount is always one, PendingTasks is the live queue depth and
// CompletedTasks counts resolved units (a batch of N counts N). SyncCount
// reports how many group syncs were issued. Publish exposes the same counters
// through expvar.
package commitlog
