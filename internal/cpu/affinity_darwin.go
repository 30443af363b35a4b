//go:build darwin

package cpu

import (
	"runtime"
)

// PinCurrentThread locks the goroutine to an OS thread.
// CPU pinning is not available on macOS, so cpuID is ignored.
func PinCurrentThread(cpuID int) (release func(), err error) {
	runtime.LockOSThread()

	return runtime.UnlockOSThread, nil
}
