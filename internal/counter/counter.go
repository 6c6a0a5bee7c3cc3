// Package counter implements the scheduler's completion-signaling
// primitive: a monotonic-per-epoch integer with two wait disciplines, one
// for ordinary OS-blocking callers (the main goroutine awaiting a batch of
// jobs) and one bounded, non-blocking-the-thread wait for fibers.
package counter

import (
	"sync"
	"time"

	"github.com/fibersched/fibersched/internal/platform"
)

// Counter is a caller-owned completion signal. Jobs increment it when they
// are enqueued and decrement it exactly once after their entry returns; a
// dependency with threshold T is satisfied once Get() <= T.
type Counter struct {
	mu    sync.Mutex
	cond  *sync.Cond
	value int64
}

// New creates a Counter starting at zero.
func New() *Counter {
	return NewWithInitial(0)
}

// NewWithInitial creates a Counter starting at the given value, for
// callers that need a non-zero starting threshold rather than the
// zero-value form New provides.
func NewWithInitial(initial int64) *Counter {
	c := &Counter{value: initial}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Increment bumps the value. Non-notifying — used at enqueue time, when
// no one can yet be waiting on the new, higher value to become true
// ("value <= threshold" predicates only get harder to satisfy on
// increment).
func (c *Counter) Increment() {
	c.mu.Lock()
	c.value++
	c.mu.Unlock()
}

// Decrement lowers the value by one and wakes both wait channels: OS
// waiters parked in Wait/WaitFor, and fiber waiters parked in the
// platform futex used by UnsafeWait.
func (c *Counter) Decrement() {
	c.mu.Lock()
	c.value--
	addr := &c.value
	c.mu.Unlock()

	c.cond.Broadcast()
	platform.FutexWakeAll(addr)
}

// Get returns the current value.
func (c *Counter) Get() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Wait blocks the calling goroutine (parking it on the runtime scheduler,
// not spinning) until Get() <= expected. Intended for non-fiber callers.
func (c *Counter) Wait(expected int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.value > expected {
		c.cond.Wait()
	}
}

// WaitFor is Wait with a timeout. It returns false if the timeout elapses
// before the predicate is satisfied. The deadline is computed once up
// front as now + timeout, and every re-check measures elapsed time
// against that fixed deadline rather than re-adding durations.
func (c *Counter) WaitFor(expected int64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	c.mu.Lock()
	defer c.mu.Unlock()

	for c.value > expected {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if !condWaitTimeout(c.cond, remaining) {
			// Timed out inside the helper; re-check the predicate once
			// more before reporting failure, since a Decrement may have
			// landed concurrently with the timer firing.
			if c.value > expected {
				return false
			}
		}
	}
	return true
}

// UnsafeWait is the bounded, user-space wait reserved for fibers: it never
// blocks the calling OS thread for more than timeout. Captures value at
// entry; if already satisfied, returns true immediately. Otherwise it
// parks on a futex keyed to the counter's storage until either the
// predicate holds or the time budget is exhausted.
//
// Named "unsafe" because it is unsafe to call from anything but a
// fiber's own dispatch loop: a genuine blocking wait here would stall
// the OS thread underneath every other fiber multiplexed onto it.
func (c *Counter) UnsafeWait(expected int64, timeout time.Duration) bool {
	if c.Get() <= expected {
		return true
	}
	deadline := time.Now().Add(timeout)
	addr := &c.value
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return c.Get() <= expected
		}
		current := c.Get()
		if current <= expected {
			return true
		}
		platform.FutexWait(addr, current, remaining)
		if c.Get() <= expected {
			return true
		}
	}
}
