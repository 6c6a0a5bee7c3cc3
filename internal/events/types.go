// Package events models scheduler activity as a small event bus: typed
// events a Handler can log or react to, scoped to the scheduler's own
// lifecycle (job intake, dispatch, completion) rather than a
// general-purpose taxonomy.
package events

import "time"

// Type identifies what happened.
type Type string

const (
	JobEnqueued    Type = "job.enqueued"
	JobStarted     Type = "job.started"
	JobCompleted   Type = "job.completed"
	FiberParked    Type = "fiber.parked"
	FiberResumed   Type = "fiber.resumed"
	WorkerSleeping Type = "worker.sleeping"
	ManagerShuttingDown Type = "manager.shutting_down"
)

// Event is one observation emitted onto the Bus.
type Event struct {
	Time    time.Time
	Type    Type
	JobID   string // job.TraceID, empty for non-job events
	Worker  int    // worker ID, -1 if not applicable
	Payload any
}

// New constructs an Event stamped with the current time.
func New(t Type, jobID string, worker int) Event {
	return Event{Time: time.Now(), Type: t, JobID: jobID, Worker: worker}
}

// WithPayload attaches an arbitrary payload to the event.
func (e Event) WithPayload(p any) Event {
	e.Payload = p
	return e
}
