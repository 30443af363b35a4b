//go:build !linux && !darwin && !windows

package cpu

import (
	"runtime"
)

// PinCurrentThread locks the goroutine to an OS thread; cpuID is ignored.
func PinCurrentThread(cpuID int) (release func(), err error) {
	runtime.LockOSThread()

	return runtime.UnlockOSThread, nil
}
