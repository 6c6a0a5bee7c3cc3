// Package jobqueue implements a concurrent job queue with the contract
// enqueue(T), try_dequeue(out T) -> bool, size_approx() -> size_t.
package jobqueue

import (
	"sync"

	"github.com/fibersched/fibersched/internal/job"
)

// Queue is a simple mutex-guarded FIFO. The dominant producer for any one
// Queue is its owning worker; other workers only ever steal via
// TryDequeue, so contention is low enough that a plain mutex outperforms
// a lock-free ring buffer in practice without the complexity.
type Queue struct {
	mu    sync.Mutex
	items []job.Job
}

// New returns an empty queue with capacity preallocated as a hint.
func New(capacityHint int) *Queue {
	return &Queue{items: make([]job.Job, 0, capacityHint)}
}

// Enqueue appends j to the tail.
func (q *Queue) Enqueue(j job.Job) {
	q.mu.Lock()
	q.items = append(q.items, j)
	q.mu.Unlock()
}

// TryDequeue pops from the head without blocking. Returns false if empty.
func (q *Queue) TryDequeue() (job.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return job.Job{}, false
	}
	j := q.items[0]
	q.items[0] = job.Job{}
	q.items = q.items[1:]
	return j, true
}

// SizeApprox returns a point-in-time length estimate.
func (q *Queue) SizeApprox() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
