package scheduler

import (
	"time"

	"github.com/utkarsh5026/commitlog/internal/types"
)

const defaultGroupCapacity = 64

// groupEntry is a batched task together with the value its side effect produced.
type groupEntry[R any] struct {
	task  *types.SubmittedTask[R]
	value R
}

// batchGroup is the ordered set of appends waiting on one shared sync.
// Entries keep submission order; the backing array is reused between groups.
type batchGroup[R any] struct {
	entries []groupEntry[R]
}

func (g *batchGroup[R]) add(t *types.SubmittedTask[R], value R) {
	g.entries = append(g.entries, groupEntry[R]{task: t, value: value})
}

func (g *batchGroup[R]) len() int {
	return len(g.entries)
}

// reset empties the group, dropping references to the previous members.
func (g *batchGroup[R]) reset() {
	clear(g.entries)
	g.entries = g.entries[:0]
}

// resolve hands every member its value, in submission order.
// It must only be called after the group's sync succeeded.
func (g *batchGroup[R]) resolve() {
	for _, e := range g.entries {
		e.task.Resolve(e.value, nil)
	}
}

// windowedBatch groups queued appends behind a single sync.
//
// The window is a soft cap on accumulation: the group admits appends that are
// already queued while the deadline has not passed and never waits for new ones.
// Non-append tasks are never grouped; they run on their own.
type windowedBatch[R any] struct {
	conf  *Config
	group batchGroup[R]
}

func newWindowedBatch[R any](conf *Config) *windowedBatch[R] {
	return &windowedBatch[R]{
		conf: conf,
		group: batchGroup[R]{
			entries: make([]groupEntry[R], 0, min(conf.QueueCapacity, defaultGroupCapacity)),
		},
	}
}

// Drain runs one accumulate, sync, resolve cycle.
func (b *windowedBatch[R]) Drain(q *BoundedQueue[*types.SubmittedTask[R]]) (cycle, error) {
	first := q.Take()
	if !first.IsAppend() {
		runImmediate(first)
		return cycle{completed: 1}, nil
	}

	b.group.reset()
	deadline := b.conf.Clock.Now().Add(b.conf.BatchWindow)

	if err := b.accumulate(first); err != nil {
		return cycle{}, err
	}

	for b.admits(q, deadline) {
		next, _ := q.TryTake()
		if err := b.accumulate(next); err != nil {
			return cycle{}, err
		}
	}

	size := b.group.len()
	start := b.conf.Clock.Now()
	if err := syncWithRecovery(b.conf.Syncer); err != nil {
		return cycle{}, &FatalError{Op: FatalOpSync, GroupSize: size, Err: err}
	}
	took := b.conf.Clock.Since(start)

	if b.conf.OnSync != nil {
		b.conf.OnSync(size, took)
	}
	b.conf.Logger.Debug("commit log group synced", "size", size, "took", took)

	b.group.resolve()
	return cycle{completed: size, synced: size}, nil
}

// admits reports whether the queue head may join the current group.
func (b *windowedBatch[R]) admits(q *BoundedQueue[*types.SubmittedTask[R]], deadline time.Time) bool {
	head, ok := q.Peek()
	if !ok || !head.IsAppend() {
		return false
	}
	return b.conf.Clock.Now().Before(deadline)
}

// accumulate executes an append's side effect and adds it to the group.
// A fault here is fatal.
func (b *windowedBatch[R]) accumulate(t *types.SubmittedTask[R]) error {
	value, err := executeTask(t)
	if err != nil {
		return &FatalError{Op: FatalOpAppend, GroupSize: b.group.len() + 1, Err: err}
	}

	b.group.add(t, value)
	debugLog("task %d joined group (size %d)", t.Id, b.group.len())
	return nil
}
