// Package fiber implements the scheduler's unit of cooperative execution.
//
// A Fiber is one goroutine that lives for the lifetime of its pool slot —
// Go already gives every goroutine its own growable stack, so there is no
// need for a separately allocated stack and a context-switch primitive.
// schedule(target, from) is a rendezvous: from sends a handoff token on
// target's unbuffered resume channel (which does not complete until
// target's goroutine is ready to receive it, giving the same "does not
// return until scheduled back" contract a stack-swap primitive would),
// then from blocks receiving on its own resume channel.
package fiber

import (
	"sync/atomic"
	"time"

	"github.com/fibersched/fibersched/internal/assert"
	"github.com/fibersched/fibersched/internal/counter"
	"github.com/fibersched/fibersched/internal/fibermutex"
	"github.com/fibersched/fibersched/internal/job"
)

// defaultDepWaitTimeout is the bounded user-space wait budget spent per
// dependency, per pass, before a fiber self-parks, used when a pool is
// constructed without an explicit override. Reference value: 1ms.
const defaultDepWaitTimeout = time.Millisecond

// WorkerState is the minimal per-thread context a Fiber needs: which
// worker it is currently running on, and that worker's driver shell
// (the Fiber-less "from_this_thread" wrapper) to schedule back to at
// shutdown.
type WorkerState struct {
	ID     int
	Driver *Fiber
}

// Owner is the subset of Manager a Fiber needs to drive its own dispatch
// loop. Manager implements this; keeping it as an interface here (rather
// than importing the manager package directly) avoids a fiber<->manager
// import cycle, since Manager necessarily holds a Pool of Fibers.
type Owner interface {
	AcquireFiber() (int, bool)
	MarkAvailable(idx int)
	Fiber(idx int) *Fiber
	WaitPoolPush(idx int)
	WaitPoolPop() (int, bool)
	WaitPoolApproxEmpty() bool
	TryDequeueJob(workerID int) (job.Job, bool)
	IsShutdown() bool
	// SleepOnQueueCV blocks the calling goroutine until the Manager
	// notifies (enqueue or shutdown) or shutdown is already set.
	SleepOnQueueCV()

	// EnqueueOnWorker places j on workerID's own queue — how job entries
	// (which always know their own fiber's current worker) enqueue
	// further work, preserving producer-consumer affinity.
	EnqueueOnWorker(j job.Job, workerID int)
	EnqueueWithCounterOnWorker(j job.Job, c *counter.Counter, workerID int) *counter.Counter
	EnqueueGroupOnWorker(j job.Job, group string, workerID int) *counter.Counter
}

// handoff is what crosses a schedule rendezvous: which worker the
// receiving fiber is now running on.
type handoff struct {
	worker *WorkerState
}

// Fiber is one pool slot's execution context.
type Fiber struct {
	index     int
	resume    chan handoff
	available atomic.Bool

	previousFiberIndex atomic.Int64
	needsWaitEnqueue   atomic.Bool

	// waitPoolPriority is touched only by this fiber's own goroutine.
	// waitMutex is set by this fiber before it parks and read/cleared by
	// whichever fiber later pops it from the wait pool; the wait pool's
	// lock orders those accesses, so neither field needs synchronization.
	waitPoolPriority bool
	waitMutex        *fibermutex.FiberMutex

	// cur is the worker this fiber is presently executing on. Set from the
	// handoff each time this fiber is resumed: at the start of Run and on
	// return from parkAndWait.
	cur *WorkerState

	// depWaitTimeout is the bounded user-space wait budget this fiber
	// spends per dependency, per dispatch pass, before self-parking.
	depWaitTimeout time.Duration

	owner Owner
}

func newFiber(index int, depWaitTimeout time.Duration) *Fiber {
	if depWaitTimeout <= 0 {
		depWaitTimeout = defaultDepWaitTimeout
	}
	f := &Fiber{
		index:          index,
		resume:         make(chan handoff),
		depWaitTimeout: depWaitTimeout,
	}
	f.previousFiberIndex.Store(-1)
	return f
}

// Index returns this fiber's pool slot.
func (f *Fiber) Index() int { return f.index }

// scheduleTo performs the rendezvous send half of schedule(target, self).
func scheduleTo(target, self *Fiber, h handoff) {
	assert.Require(target != self, "fiber %d scheduled to itself", self.index)
	target.resume <- h
}

// Run starts this fiber's dispatch loop. It blocks immediately on its own
// resume channel until a driver or another fiber schedules into it, which
// is how a freshly-acquired pool slot waits to be given its first worker.
// Callers should invoke this in its own goroutine: go f.Run().
func (f *Fiber) Run() {
	h := <-f.resume
	f.cur = h.worker
	for {
		f.cleanupPredecessor()

		f.waitPoolPriority = !f.waitPoolPriority
		tryWorkFirst := !f.waitPoolPriority || f.owner.WaitPoolApproxEmpty()

		satisfied := false
		if tryWorkFirst {
			satisfied = f.tryWork()
			if !satisfied {
				satisfied = f.tryWaitPool()
			}
		} else {
			satisfied = f.tryWaitPool()
			if !satisfied {
				satisfied = f.tryWork()
			}
		}
		if satisfied {
			continue
		}

		if f.owner.IsShutdown() {
			scheduleTo(f.cur.Driver, f, handoff{worker: f.cur})
			return
		}
		f.owner.SleepOnQueueCV()
	}
}

// cleanupPredecessor is dispatch protocol Step A: finish the bookkeeping
// of whoever most recently scheduled into this fiber, since that fiber's
// own goroutine is no longer the one executing.
func (f *Fiber) cleanupPredecessor() {
	prev := f.previousFiberIndex.Swap(-1)
	if prev < 0 {
		return
	}
	predecessor := f.owner.Fiber(int(prev))
	if predecessor.needsWaitEnqueue.Swap(false) {
		f.owner.WaitPoolPush(int(prev))
	} else {
		predecessor.available.Store(true)
	}
}

// parkAndWait hands this fiber off to target (marking target as this
// fiber's successor) and blocks until some future schedule resumes this
// fiber, returning the WorkerState it was resumed on.
func (f *Fiber) parkAndWait(target *Fiber) *WorkerState {
	target.previousFiberIndex.Store(int64(f.index))
	scheduleTo(target, f, handoff{worker: f.cur})
	h := <-f.resume
	f.cur = h.worker
	return f.cur
}

// tryWork is dispatch protocol Step C. It refuses to start a new job once
// shutdown has been observed — in-flight entries (already past this
// point) still run to completion, but queued-but-not-started jobs are
// discarded rather than drained one by one after the Manager has begun
// tearing down.
func (f *Fiber) tryWork() bool {
	if f.owner.IsShutdown() {
		return false
	}
	j, ok := f.owner.TryDequeueJob(f.cur.ID)
	if !ok {
		return false
	}
	for !dependenciesHold(j, f.depWaitTimeout) {
		newIdx, ok := f.owner.AcquireFiber()
		assert.Require(ok, "fiber pool exhausted")
		f.needsWaitEnqueue.Store(true)
		f.parkAndWait(f.owner.Fiber(newIdx))
		f.cleanupPredecessor()
	}

	j.Entry(f, j.Data)
	if j.CompletionCounter != nil {
		j.CompletionCounter.Decrement()
	}
	return true
}

// dependenciesHold performs one bounded-wait pass over every dependency:
// each wait gets timeout; a single timeout in the pass means the fiber
// should self-park and retry from the top.
func dependenciesHold(j job.Job, timeout time.Duration) bool {
	for _, d := range j.Dependencies {
		if d.Counter == nil {
			continue
		}
		if !d.Counter.UnsafeWait(d.Threshold, timeout) {
			return false
		}
	}
	return true
}

// tryWaitPool is dispatch protocol Step D.
func (f *Fiber) tryWaitPool() bool {
	idx, ok := f.owner.WaitPoolPop()
	if !ok {
		return false
	}
	waiting := f.owner.Fiber(idx)

	if mtx := waiting.waitMutex; mtx != nil {
		if !mtx.TryLock() {
			f.owner.WaitPoolPush(idx)
			return false
		}
		waiting.waitMutex = nil
	}

	f.parkAndWait(waiting)
	f.cleanupPredecessor()
	return true
}

// Lock implements job.Handle: acquire m, parking this fiber (not the OS
// thread) on contention.
func (f *Fiber) Lock(m *fibermutex.FiberMutex) {
	for !m.TryLock() {
		f.waitMutex = m
		newIdx, ok := f.owner.AcquireFiber()
		assert.Require(ok, "fiber pool exhausted")
		f.needsWaitEnqueue.Store(true)
		f.parkAndWait(f.owner.Fiber(newIdx))
		f.cleanupPredecessor()
	}
}

// Enqueue implements job.Handle, placing j on the current worker's own
// queue.
func (f *Fiber) Enqueue(j job.Job) { f.owner.EnqueueOnWorker(j, f.cur.ID) }

// EnqueueWithCounter implements job.Handle.
func (f *Fiber) EnqueueWithCounter(j job.Job, c *counter.Counter) *counter.Counter {
	return f.owner.EnqueueWithCounterOnWorker(j, c, f.cur.ID)
}

// EnqueueGroup implements job.Handle.
func (f *Fiber) EnqueueGroup(j job.Job, group string) *counter.Counter {
	return f.owner.EnqueueGroupOnWorker(j, group, f.cur.ID)
}
