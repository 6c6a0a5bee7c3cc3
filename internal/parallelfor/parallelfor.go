// Package parallelfor implements parallel-for and parallel-map helpers
// on top of the scheduler core rather than inside it. They are layered
// entirely on top of the public Manager/Counter/Job API and never
// imported by the core packages, so they exercise the counter-form intake
// path (EnqueueWithCounter) the way a real caller would rather than reaching into scheduler
// internals.
package parallelfor

import (
	"github.com/fibersched/fibersched/internal/counter"
	"github.com/fibersched/fibersched/internal/job"
)

// Submitter is the subset of Manager's intake API parallelfor needs.
type Submitter interface {
	EnqueueWithCounter(j job.Job, c *counter.Counter) *counter.Counter
}

// For splits [0, n) into count equal-ish chunks (count defaulting to 1
// chunk per element when n < count) and submits one job per chunk,
// calling fn(start, end) for each. It returns the completion counter the
// caller should Wait on.
func For(m Submitter, n, count int, fn func(start, end int)) *counter.Counter {
	if count <= 0 {
		count = 1
	}
	if count > n {
		count = n
	}
	if count == 0 {
		return counter.New()
	}

	c := counter.New()
	chunk := (n + count - 1) / count

	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		start, end := start, end
		j := job.New(func(job.Handle, any) {
			fn(start, end)
		}, nil)
		m.EnqueueWithCounter(j, c)
	}
	return c
}

// Map applies fn to every element of in, writing results into out
// (len(out) must equal len(in)), parallelized across count chunks. It
// returns the completion counter the caller should Wait on.
func Map[T, R any](m Submitter, in []T, out []R, count int, fn func(T) R) *counter.Counter {
	return For(m, len(in), count, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = fn(in[i])
		}
	})
}
