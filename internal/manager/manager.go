// Package manager implements the scheduler's single owning object: the
// Manager owns the fiber pool, worker pool, wait pool, shared condition
// variable, job intake API, and shutdown protocol.
package manager

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fibersched/fibersched/internal/assert"
	"github.com/fibersched/fibersched/internal/config"
	"github.com/fibersched/fibersched/internal/counter"
	"github.com/fibersched/fibersched/internal/events"
	"github.com/fibersched/fibersched/internal/fiber"
	"github.com/fibersched/fibersched/internal/job"
	"github.com/fibersched/fibersched/internal/logsink"
	"github.com/fibersched/fibersched/internal/worker"
)

var _ fiber.Owner = (*Manager)(nil)

// Manager is the scheduler's single owning object. Construct with New,
// then Initialize before any Enqueue call.
type Manager struct {
	id uuid.UUID

	cfg config.Config
	log logsink.Sink

	pool    *fiber.Pool
	workers []*worker.Worker
	wait    *waitPool

	ready    atomic.Bool
	shutdown atomic.Bool

	enqueueIndex atomic.Uint64

	cvMu sync.Mutex
	cv   *sync.Cond

	groupMu sync.Mutex
	groups  map[string]*counter.Counter

	bus *events.Bus
	eg  *errgroup.Group
}

// Option configures optional Manager collaborators.
type Option func(*Manager)

// WithLogSink overrides the default no-op log sink with an
// explicitly-injected one.
func WithLogSink(sink logsink.Sink) Option {
	return func(m *Manager) { m.log = sink }
}

// WithEventBus overrides the default private Bus with a caller-supplied
// one, letting tests and the demo CLI subscribe to scheduler activity.
func WithEventBus(bus *events.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// New constructs an uninitialized Manager. Call Initialize before use.
func New(cfg config.Config, opts ...Option) *Manager {
	m := &Manager{
		id:     uuid.New(),
		cfg:    cfg,
		log:    logsink.Nop,
		wait:   newWaitPool(),
		groups: make(map[string]*counter.Counter),
		bus:    events.NewBus(),
	}
	m.cv = sync.NewCond(&m.cvMu)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ID returns this Manager instance's UUID, useful for disambiguating log
// lines when a process runs more than one Manager (typical in tests).
func (m *Manager) ID() uuid.UUID { return m.id }

// Events returns the Manager's event bus for Subscribe calls.
func (m *Manager) Events() *events.Bus { return m.bus }

// ThreadCount returns the resolved number of worker threads (post
// Initialize, after "0 means one per core" has been applied).
func (m *Manager) ThreadCount() int { return len(m.workers) }

// Initialize performs startup: validates the thread count, builds the
// fiber pool, resolves "0 means one per core", constructs and launches
// every worker, then publishes ready.
func (m *Manager) Initialize(threadCount int) error {
	hw := runtime.GOMAXPROCS(0)
	assert.Require(threadCount <= hw, "manager: thread_count %d exceeds hardware concurrency %d", threadCount, hw)
	if threadCount == 0 {
		threadCount = hw
	}

	fiberCount := m.cfg.FiberCount
	if fiberCount <= 0 {
		fiberCount = 64
	}
	m.pool = fiber.NewPool(fiberCount, m.cfg.DependencyWaitTimeout)

	m.workers = make([]*worker.Worker, threadCount)
	for i := 0; i < threadCount; i++ {
		m.workers[i] = worker.New(i, m.cfg.QueueCapacityHint)
	}

	m.shutdown.Store(false)
	m.pool.Start(m)

	m.eg = &errgroup.Group{}
	for _, w := range m.workers {
		w := w
		firstIdx, ok := m.pool.Acquire()
		if !ok {
			return fmt.Errorf("manager: fiber pool exhausted during initialize")
		}
		firstFiber := m.pool.Fiber(firstIdx)
		m.eg.Go(func() error {
			w.Run(firstFiber)
			return nil
		})
	}

	m.ready.Store(true)
	m.log(logsink.Info, fmt.Sprintf("manager %s initialized with %d workers, %d fibers", m.id, threadCount, fiberCount))
	return nil
}

// Shutdown takes the queue_cv lock, sets shutdown under lock, notifies
// all, releases, then joins every worker. Holding the
// lock across the flag write and the notify closes the race where a
// worker about to sleep could otherwise miss the wake.
func (m *Manager) Shutdown() error {
	m.cvMu.Lock()
	m.shutdown.Store(true)
	m.cv.Broadcast()
	m.cvMu.Unlock()

	m.bus.Emit(events.New(events.ManagerShuttingDown, "", -1))
	return m.eg.Wait()
}

// --- fiber.Owner ---

// AcquireFiber implements fiber.Owner.
func (m *Manager) AcquireFiber() (int, bool) { return m.pool.Acquire() }

// MarkAvailable implements fiber.Owner.
func (m *Manager) MarkAvailable(idx int) { m.pool.MarkAvailable(idx) }

// Fiber implements fiber.Owner.
func (m *Manager) Fiber(idx int) *fiber.Fiber { return m.pool.Fiber(idx) }

// WaitPoolPush implements fiber.Owner.
func (m *Manager) WaitPoolPush(idx int) { m.wait.Push(idx) }

// WaitPoolPop implements fiber.Owner.
func (m *Manager) WaitPoolPop() (int, bool) { return m.wait.Pop() }

// WaitPoolApproxEmpty implements fiber.Owner.
func (m *Manager) WaitPoolApproxEmpty() bool { return m.wait.ApproxEmpty() }

// IsShutdown implements fiber.Owner.
func (m *Manager) IsShutdown() bool { return m.shutdown.Load() }

// SleepOnQueueCV implements fiber.Owner — dispatch protocol Step E.
func (m *Manager) SleepOnQueueCV() {
	m.cvMu.Lock()
	defer m.cvMu.Unlock()
	if m.shutdown.Load() {
		return
	}
	m.cv.Wait()
}

// TryDequeueJob implements fiber.Owner's work-stealing dequeue: first
// the caller's own queue, then (i+thread_id) mod N over the rest, no
// randomization.
func (m *Manager) TryDequeueJob(workerID int) (job.Job, bool) {
	n := len(m.workers)
	if j, ok := m.workers[workerID].Queue.TryDequeue(); ok {
		return j, true
	}
	for i := 1; i < n; i++ {
		idx := (i + workerID) % n
		if j, ok := m.workers[idx].Queue.TryDequeue(); ok {
			return j, true
		}
	}
	return job.Job{}, false
}

// EnqueueOnWorker implements fiber.Owner: jobs enqueued from inside a job
// entry (i.e. from a fiber, which always knows its own worker) go onto
// that worker's own queue, preserving producer-consumer affinity.
func (m *Manager) EnqueueOnWorker(j job.Job, workerID int) {
	m.place(j, workerID)
}

// EnqueueWithCounterOnWorker implements fiber.Owner.
func (m *Manager) EnqueueWithCounterOnWorker(j job.Job, c *counter.Counter, workerID int) *counter.Counter {
	if c == nil {
		c = counter.New()
	}
	c.Increment()
	m.place(j.WithCompletionCounter(c), workerID)
	return c
}

// EnqueueGroupOnWorker implements fiber.Owner.
func (m *Manager) EnqueueGroupOnWorker(j job.Job, group string, workerID int) *counter.Counter {
	if group == "" {
		return m.EnqueueWithCounterOnWorker(j, counter.New(), workerID)
	}
	m.groupMu.Lock()
	c, ok := m.groups[group]
	if !ok {
		c = counter.New()
		m.groups[group] = c
	}
	m.groupMu.Unlock()

	c.Increment()
	m.place(j.WithCompletionCounter(c), workerID)
	return c
}

// Enqueue implements the public intake API's fire-and-forget form,
// called from outside any worker (e.g. the application's main
// goroutine), which round-robins via enqueueIndex.
func (m *Manager) Enqueue(j job.Job) {
	m.place(j, -1)
}

// EnqueueWithCounter implements the public two-arg intake form: increment
// c, record it as the completion counter, enqueue.
func (m *Manager) EnqueueWithCounter(j job.Job, c *counter.Counter) *counter.Counter {
	if c == nil {
		c = counter.New()
	}
	c.Increment()
	m.place(j.WithCompletionCounter(c), -1)
	return c
}

// EnqueueGroup implements the public named-group intake form: looks up or
// creates the group's shared Counter, increments it, associates it, and
// enqueues. An empty name degenerates to a fresh private counter.
func (m *Manager) EnqueueGroup(j job.Job, group string) *counter.Counter {
	if group == "" {
		return m.EnqueueWithCounter(j, counter.New())
	}

	m.groupMu.Lock()
	c, ok := m.groups[group]
	if !ok {
		c = counter.New()
		m.groups[group] = c
	}
	m.groupMu.Unlock()

	c.Increment()
	m.place(j.WithCompletionCounter(c), -1)
	return c
}

// place pushes j onto workerID's queue if non-negative, otherwise
// round-robins across all workers, then notifies one queue_cv waiter.
// The notify is deliberately issued without holding the CV's lock: a
// missed wake here is self-healing on the next enqueue.
func (m *Manager) place(j job.Job, workerID int) {
	n := len(m.workers)
	idx := workerID
	if idx < 0 {
		idx = int(m.enqueueIndex.Add(1)-1) % n
	}
	m.workers[idx].Queue.Enqueue(j)
	m.bus.Emit(events.New(events.JobEnqueued, j.TraceID, idx))
	m.cv.Signal()
}
