//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// cpuID is wrapped into [0, runtime.NumCPU()-1].
func pinToCore(cpuID int) (int, error) {
	numCPU := runtime.NumCPU()
	if cpuID < 0 || cpuID >= numCPU {
		cpuID = ((cpuID % numCPU) + numCPU) % numCPU
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return 0, err
	}
	return cpuID, nil
}

// PinCurrentThread locks the calling goroutine to its OS thread and pins that
// thread to cpuID. The goroutine stays locked even if pinning fails.
// The returned release function unlocks the thread and must be deferred.
func PinCurrentThread(cpuID int) (release func(), err error) {
	runtime.LockOSThread()
	_, err = pinToCore(cpuID)

	return runtime.UnlockOSThread, err
}
