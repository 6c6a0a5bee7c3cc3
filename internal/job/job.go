// Package job defines the scheduler's passive work descriptor and the
// handle job entries use to reach back into the scheduler.
package job

import (
	"github.com/oklog/ulid/v2"

	"github.com/fibersched/fibersched/internal/counter"
	"github.com/fibersched/fibersched/internal/fibermutex"
)

// Dependency is a (counter, threshold) pair. It is satisfied once the
// counter's value is <= Threshold.
type Dependency struct {
	Counter   *counter.Counter
	Threshold int64
}

// Entry is a job's executable body. Handle gives it a way to lock a
// FiberMutex or enqueue further work without blocking the underlying OS
// thread — see internal/fiber.Fiber, which implements Handle.
type Entry func(h Handle, data any)

// Handle is implemented by the currently-running Fiber. It is a
// type-safe wrapper in place of a raw entry(manager, data) function
// pointer, letting an Entry reach back into the scheduler without a
// global or thread-local lookup.
type Handle interface {
	// Lock acquires m, parking the calling fiber (not the OS thread) on
	// contention.
	Lock(m *fibermutex.FiberMutex)

	// Enqueue submits a fire-and-forget job.
	Enqueue(j Job)

	// EnqueueWithCounter associates c with j (incrementing it) before
	// enqueueing, and returns c.
	EnqueueWithCounter(j Job, c *counter.Counter) *counter.Counter

	// EnqueueGroup looks up or creates the named group's shared Counter,
	// associates it with j, enqueues, and returns the Counter.
	EnqueueGroup(j Job, group string) *counter.Counter
}

// Job is an immutable-after-enqueue record: an entry, its opaque data, an
// optional completion counter, and a list of dependencies that must all
// hold before Entry may run.
type Job struct {
	Entry             Entry
	Data              any
	CompletionCounter *counter.Counter
	Dependencies      []Dependency

	// TraceID identifies this job in logs and demo output. Stamped once
	// at construction.
	TraceID string
}

// New constructs a fire-and-forget job with no completion counter and no
// dependencies. Use With* to add either before enqueue.
func New(entry Entry, data any) Job {
	return Job{
		Entry:   entry,
		Data:    data,
		TraceID: ulid.Make().String(),
	}
}

// WithCompletionCounter returns a copy of j that will decrement c exactly
// once after Entry returns. The caller (or the Manager's intake API) is
// responsible for incrementing c at enqueue time.
func (j Job) WithCompletionCounter(c *counter.Counter) Job {
	j.CompletionCounter = c
	return j
}

// WithDependency returns a copy of j with an additional (counter,
// threshold) dependency appended.
func (j Job) WithDependency(c *counter.Counter, threshold int64) Job {
	j.Dependencies = append(append([]Dependency{}, j.Dependencies...), Dependency{
		Counter:   c,
		Threshold: threshold,
	})
	return j
}

// DependenciesSatisfied reports whether every dependency currently holds.
// A dependency whose Counter is nil is treated as already satisfied: this
// repo uses ordinary pointers rather than weak references, so nil is the
// closest equivalent of "the producer's counter is gone."
func (j Job) DependenciesSatisfied() bool {
	for _, d := range j.Dependencies {
		if d.Counter == nil {
			continue
		}
		if d.Counter.Get() > d.Threshold {
			return false
		}
	}
	return true
}
