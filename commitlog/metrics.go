package commitlog

import (
	"expvar"
	"fmt"
)

// Vars returns an expvar.Map whose entries read the live executor counters.
func (e *Executor[R]) Vars() *expvar.Map {
	m := new(expvar.Map).Init()
	m.Set("active_count", expvar.Func(func() any { return e.ActiveCount() }))
	m.Set("pending_tasks", expvar.Func(func() any { return e.PendingTasks() }))
	m.Set("completed_tasks", expvar.Func(func() any { return e.CompletedTasks() }))
	m.Set("sync_total", expvar.Func(func() any { return e.SyncCount() }))
	m.Set("queue_capacity", expvar.Func(func() any { return e.QueueCapacity() }))
	return m
}

// Publish exposes Vars under name in the global expvar namespace, so the
// counters show up on /debug/vars. It fails if name is already taken.
func (e *Executor[R]) Publish(name string) error {
	if expvar.Get(name) != nil {
		return fmt.Errorf("commit log executor: expvar %q already published", name)
	}
	expvar.Publish(name, e.Vars())
	return nil
}
