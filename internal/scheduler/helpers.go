package scheduler

import (
	"fmt"
	"runtime"

	"github.com/utkarsh5026/commitlog/internal/types"
)

// executeTask runs the task's side effect. A panic is converted to an error with
// the stack attached so the caller can decide whether it is fatal.
func executeTask[R any](t *types.SubmittedTask[R]) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()

	return t.Fn()
}

// runImmediate executes a task and resolves its future with whatever it produced.
// Faults are delivered to the caller through the future; the worker carries on.
func runImmediate[R any](t *types.SubmittedTask[R]) {
	result, err := executeTask(t)
	debugLog("task %d (%s) executed immediately, err=%v", t.Id, t.Kind, err)
	t.Resolve(result, err)
}

// syncWithRecovery invokes the log's sync primitive, converting a panic to an error.
func syncWithRecovery(s Syncer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()

	return s.Sync()
}

func panicError(r any) error {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return fmt.Errorf("worker panic: %v\nstack trace:\n%s", r, buf[:n])
}
