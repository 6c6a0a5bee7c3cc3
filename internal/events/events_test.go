package events

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fibersched/fibersched/internal/logsink"
)

func TestBusDeliversToAllSubscribersInOrder(t *testing.T) {
	b := NewBus()
	var mu sync.Mutex
	var order []string

	b.Subscribe(func(e Event) {
		mu.Lock()
		order = append(order, "first:"+string(e.Type))
		mu.Unlock()
	})
	b.Subscribe(func(e Event) {
		mu.Lock()
		order = append(order, "second:"+string(e.Type))
		mu.Unlock()
	})

	b.Emit(New(JobStarted, "job-1", 3))

	require.Equal(t, []string{"first:job.started", "second:job.started"}, order)
}

func TestBusWithNoSubscribersDoesNotPanic(t *testing.T) {
	b := NewBus()
	require.NotPanics(t, func() {
		b.Emit(New(JobCompleted, "job-2", 0))
	})
}

func TestEventWithPayloadAttachesValue(t *testing.T) {
	e := New(JobEnqueued, "job-3", 1).WithPayload(42)
	require.Equal(t, 42, e.Payload)
}

func TestLogHandlerFormatsTypeWorkerAndJobID(t *testing.T) {
	var sb strings.Builder
	var mu sync.Mutex
	sink := func(level logsink.Level, msg string) {
		mu.Lock()
		defer mu.Unlock()
		sb.WriteString(msg)
	}

	h := LogHandler(sink)
	h(New(FiberParked, "job-4", 2))

	require.Equal(t, "[fiber.parked] worker=2 job=job-4", sb.String())
}

func TestLogHandlerOmitsJobIDWhenEmpty(t *testing.T) {
	var got string
	sink := func(level logsink.Level, msg string) { got = msg }

	h := LogHandler(sink)
	h(New(WorkerSleeping, "", 5))

	require.Equal(t, "[worker.sleeping] worker=5", got)
}
