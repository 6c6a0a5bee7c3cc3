// Package worker binds one OS thread to one numeric ID and one local job
// queue, and drives whichever fiber the Manager hands it until shutdown.
package worker

import (
	"runtime"

	"github.com/fibersched/fibersched/internal/fiber"
	"github.com/fibersched/fibersched/internal/jobqueue"
	"github.com/fibersched/fibersched/internal/platform"
)

// Worker is a value every goroutine-bound OS thread owns for its
// lifetime: its own ID, job queue, and driver shell.
type Worker struct {
	ID     int
	Queue  *jobqueue.Queue
	Driver *fiber.Fiber
	State  *fiber.WorkerState
}

// New constructs a Worker with its own driver shell and job queue.
func New(id, queueCapacityHint int) *Worker {
	driver := fiber.NewDriver(id)
	return &Worker{
		ID:     id,
		Queue:  jobqueue.New(queueCapacityHint),
		Driver: driver,
		State:  &fiber.WorkerState{ID: id, Driver: driver},
	}
}

// Run locks the calling goroutine to its OS thread (so affinity actually
// sticks and the thread name actually applies to the thread running this
// fiber chain), names the thread, sets affinity to CPU ID, then resumes
// firstFiber. It blocks until that fiber chain schedules back to this
// worker's driver at shutdown.
func (w *Worker) Run(firstFiber *fiber.Fiber) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	_ = platform.SetThreadName("Jobs Worker")
	_ = platform.SetAffinity(w.ID)

	fiber.ScheduleInitial(firstFiber, w.State)
}
