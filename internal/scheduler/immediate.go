package scheduler

import (
	"github.com/utkarsh5026/commitlog/internal/types"
)

// perOperation runs every task on its own as soon as it is dequeued.
type perOperation[R any] struct {
	conf *Config
}

func newPerOperation[R any](conf *Config) *perOperation[R] {
	return &perOperation[R]{conf: conf}
}

// Drain takes the head task, runs it and resolves its future.
func (p *perOperation[R]) Drain(q *BoundedQueue[*types.SubmittedTask[R]]) (cycle, error) {
	runImmediate(q.Take())
	return cycle{completed: 1}, nil
}
