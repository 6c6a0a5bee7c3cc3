package jobqueue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fibersched/fibersched/internal/job"
)

func TestEnqueueTryDequeueFIFO(t *testing.T) {
	q := New(4)
	_, ok := q.TryDequeue()
	require.False(t, ok)

	a := job.New(func(job.Handle, any) {}, "a")
	b := job.New(func(job.Handle, any) {}, "b")
	q.Enqueue(a)
	q.Enqueue(b)

	require.Equal(t, 2, q.SizeApprox())

	got, ok := q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, "a", got.Data)

	got, ok = q.TryDequeue()
	require.True(t, ok)
	require.Equal(t, "b", got.Data)

	_, ok = q.TryDequeue()
	require.False(t, ok)
}

func TestConcurrentEnqueueDequeueNoLoss(t *testing.T) {
	q := New(0)
	const n = 500

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			q.Enqueue(job.New(func(job.Handle, any) {}, nil))
		}()
	}
	wg.Wait()

	count := 0
	for {
		_, ok := q.TryDequeue()
		if !ok {
			break
		}
		count++
	}
	require.Equal(t, n, count)
}
