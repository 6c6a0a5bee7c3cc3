// Package platform isolates the two OS-specific primitives the scheduler
// needs: a bounded user-space wait/wake pair backing Counter.UnsafeWait
// (a real futex on Linux) and best-effort worker-thread affinity.
package platform

import "time"

// FutexWait blocks the calling goroutine until another goroutine calls
// FutexWakeAll on the same address, or until timeout elapses, or
// immediately if *addr != expected (the value already changed since the
// caller last observed it, so there is nothing to wait for). On Linux that
// comparison covers the low 32 bits of *addr; the non-Linux fallback makes
// no comparison and waits for the next FutexWakeAll or the timeout.
func FutexWait(addr *int64, expected int64, timeout time.Duration) {
	futexWait(addr, expected, timeout)
}

// FutexWakeAll wakes every goroutine parked in FutexWait on addr.
func FutexWakeAll(addr *int64) {
	futexWakeAll(addr)
}

// SetAffinity pins the calling OS thread to the given CPU index. Best
// effort: platforms without a native affinity syscall silently no-op —
// advisory only, like the fiber stack size hint in Config.
func SetAffinity(cpu int) error {
	return setAffinity(cpu)
}

// SetThreadName names the calling OS thread, for debuggability in
// profilers and /proc — every worker thread is named "Jobs Worker".
// Best effort, same as SetAffinity.
func SetThreadName(name string) error {
	return setThreadName(name)
}
