package manager

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fibersched/fibersched/internal/config"
	"github.com/fibersched/fibersched/internal/counter"
	"github.com/fibersched/fibersched/internal/fibermutex"
	"github.com/fibersched/fibersched/internal/job"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.FiberCount = 32
	return cfg
}

func TestExactlyOnceCompletion(t *testing.T) {
	m := New(testConfig())
	require.NoError(t, m.Initialize(4))
	defer m.Shutdown()

	const n = 200
	c := counter.New()
	for i := 0; i < n; i++ {
		m.EnqueueWithCounter(job.New(func(job.Handle, any) {}, nil), c)
	}

	c.WaitFor(0, 5*time.Second)
	require.EqualValues(t, 0, c.Get())
}

func TestInitializeRejectsThreadCountAboveHardwareConcurrency(t *testing.T) {
	m := New(testConfig())
	hw := runtime.GOMAXPROCS(0)
	require.Panics(t, func() { _ = m.Initialize(hw + 1) })
}

func TestDependencyRespectsCounter(t *testing.T) {
	m := New(testConfig())
	require.NoError(t, m.Initialize(4))
	defer m.Shutdown()

	var aDone atomic.Bool
	var bStartedAfterA atomic.Bool

	a := job.New(func(job.Handle, any) {
		time.Sleep(20 * time.Millisecond)
		aDone.Store(true)
	}, nil)
	aCounter := m.EnqueueWithCounter(a, nil)

	b := job.New(func(job.Handle, any) {
		bStartedAfterA.Store(aDone.Load())
	}, nil).WithDependency(aCounter, 0)
	bCounter := m.EnqueueWithCounter(b, nil)

	require.True(t, bCounter.WaitFor(0, 5*time.Second))
	require.True(t, bStartedAfterA.Load())
}

func TestManagerEnqueueGroupSharesCounter(t *testing.T) {
	m := New(testConfig())
	require.NoError(t, m.Initialize(2))
	defer m.Shutdown()

	var count atomic.Int64
	var c *counter.Counter
	for i := 0; i < 10; i++ {
		c = m.EnqueueGroup(job.New(func(job.Handle, any) {
			count.Add(1)
		}, nil), "group-1")
	}

	require.True(t, c.WaitFor(0, 5*time.Second))
	require.EqualValues(t, 10, count.Load())
}

func TestFiberMutexSerializesAccess(t *testing.T) {
	m := New(testConfig())
	require.NoError(t, m.Initialize(4))
	defer m.Shutdown()

	mtx := fibermutex.New()
	shared := 0
	var badInterleave atomic.Bool

	const n = 64
	c := counter.New()
	for i := 0; i < n; i++ {
		m.EnqueueWithCounter(job.New(func(h job.Handle, any any) {
			h.Lock(mtx)
			defer mtx.Unlock()
			before := shared
			shared = before + 1
			if shared != before+1 {
				badInterleave.Store(true)
			}
		}, nil), c)
	}

	require.True(t, c.WaitFor(0, 5*time.Second))
	require.Equal(t, n, shared)
	require.False(t, badInterleave.Load())
}

func TestShutdownJoinsWithinBoundedTime(t *testing.T) {
	m := New(testConfig())
	require.NoError(t, m.Initialize(2))

	c := counter.New()
	for i := 0; i < 4; i++ {
		m.EnqueueWithCounter(job.New(func(job.Handle, any) {
			time.Sleep(100 * time.Millisecond)
		}, nil), c)
	}

	start := time.Now()
	require.NoError(t, m.Shutdown())
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestEnqueueFromWithinJobEntry(t *testing.T) {
	m := New(testConfig())
	require.NoError(t, m.Initialize(2))
	defer m.Shutdown()

	var wg sync.WaitGroup
	wg.Add(2)

	outer := job.New(func(h job.Handle, _ any) {
		defer wg.Done()
		h.Enqueue(job.New(func(job.Handle, any) {
			wg.Done()
		}, nil))
	}, nil)

	c := m.EnqueueWithCounter(outer, nil)
	require.True(t, c.WaitFor(0, 5*time.Second))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("nested enqueue never ran")
	}
}
