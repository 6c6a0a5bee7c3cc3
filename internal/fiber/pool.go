package fiber

import (
	"time"

	"github.com/fibersched/fibersched/internal/job"
)

var _ job.Handle = (*Fiber)(nil)

// Pool is the Manager's fixed array of fiber slots. The reference default
// pool size is 64.
type Pool struct {
	fibers []*Fiber
}

// NewPool constructs size fiber slots, each spending depWaitTimeout per
// dependency per dispatch pass before self-parking (zero or negative
// falls back to defaultDepWaitTimeout). Their goroutines are not started
// until Start is called with the Owner they should drive against.
func NewPool(size int, depWaitTimeout time.Duration) *Pool {
	p := &Pool{fibers: make([]*Fiber, size)}
	for i := range p.fibers {
		p.fibers[i] = newFiber(i, depWaitTimeout)
	}
	return p
}

// Len returns the pool size.
func (p *Pool) Len() int { return len(p.fibers) }

// Start assigns owner to every fiber and launches each one's dispatch
// loop goroutine. Every fiber begins life available and parked on its own
// resume channel.
func (p *Pool) Start(owner Owner) {
	for _, f := range p.fibers {
		f.owner = owner
		f.available.Store(true)
		go f.Run()
	}
}

// Acquire scans the pool from index 0 for an available slot: CAS
// available true->false, returning the first captured index, or
// (-1, false) if the pool is exhausted.
func (p *Pool) Acquire() (int, bool) {
	for i, f := range p.fibers {
		if f.available.CompareAndSwap(true, false) {
			return i, true
		}
	}
	return -1, false
}

// MarkAvailable returns a slot to the pool.
func (p *Pool) MarkAvailable(idx int) {
	p.fibers[idx].available.Store(true)
}

// Fiber returns the fiber at idx.
func (p *Pool) Fiber(idx int) *Fiber {
	return p.fibers[idx]
}

// NewDriver constructs the "from_this_thread" shell: a Fiber-shaped
// handle with no owned stack and no pool slot, used only as the target a
// terminating worker fiber schedules back into. id is the owning
// worker's numeric ID, carried only for debugging. It never waits on a
// dependency itself, so its timeout is irrelevant and left at default.
func NewDriver(id int) *Fiber {
	d := newFiber(-1-id, 0)
	return d
}

// ScheduleInitial performs the worker-to-fiber handoff that starts a
// freshly-acquired fiber running on worker ws, blocking until that fiber
// eventually schedules back to ws.Driver (only happens at shutdown).
func ScheduleInitial(target *Fiber, ws *WorkerState) {
	target.resume <- handoff{worker: ws}
	<-ws.Driver.resume
}
