// Package fibermutex implements the scheduler's fiber-aware lock: a mutex
// whose owner is a Fiber, not an OS thread, so contention parks the
// calling fiber in the wait pool instead of blocking the thread under it.
//
// This package only owns the atomic flag and the try-lock/unlock
// contract. The parking discipline on contention — acquiring a
// fresh fiber, marking needs_wait_enqueue, and scheduling away — needs
// the fiber pool and worker state, so it lives in internal/fiber's
// implementation of job.Handle.Lock, not here. Keeping this package free
// of that dependency avoids a fiber<->fibermutex import cycle.
package fibermutex

import "sync/atomic"

// FiberMutex is a fiber-aware mutual-exclusion lock.
type FiberMutex struct {
	locked atomic.Bool
}

// New returns an unlocked FiberMutex.
func New() *FiberMutex {
	return &FiberMutex{}
}

// TryLock attempts to acquire the lock without parking. Returns true iff
// it was previously unlocked.
func (m *FiberMutex) TryLock() bool {
	return m.locked.CompareAndSwap(false, true)
}

// Unlock releases the lock. It deliberately wakes no one: parked
// contenders already sit in the wait pool and are retried the next time
// it drains, so there is no thundering herd on unlock.
func (m *FiberMutex) Unlock() {
	m.locked.Store(false)
}
