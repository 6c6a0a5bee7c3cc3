package counter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounterIncrementDecrementGet(t *testing.T) {
	c := New()
	require.EqualValues(t, 0, c.Get())

	c.Increment()
	c.Increment()
	require.EqualValues(t, 2, c.Get())

	c.Decrement()
	require.EqualValues(t, 1, c.Get())
}

func TestCounterNewWithInitial(t *testing.T) {
	c := NewWithInitial(5)
	require.EqualValues(t, 5, c.Get())
}

func TestCounterWaitSatisfiedImmediately(t *testing.T) {
	c := New()
	done := make(chan struct{})
	go func() {
		c.Wait(0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait(0) on a zero counter should return immediately")
	}
}

func TestCounterWaitBlocksUntilDecrement(t *testing.T) {
	c := New()
	c.Increment()

	var wg sync.WaitGroup
	wg.Add(1)
	start := time.Now()
	go func() {
		defer wg.Done()
		c.Wait(0)
	}()

	time.Sleep(20 * time.Millisecond)
	c.Decrement()
	wg.Wait()

	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestCounterWaitForTimesOut(t *testing.T) {
	c := New()
	c.Increment()

	ok := c.WaitFor(0, 20*time.Millisecond)
	require.False(t, ok)
}

func TestCounterWaitForSucceeds(t *testing.T) {
	c := New()
	c.Increment()

	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Decrement()
	}()

	ok := c.WaitFor(0, 500*time.Millisecond)
	require.True(t, ok)
}

func TestCounterUnsafeWaitSatisfiedImmediately(t *testing.T) {
	c := New()
	require.True(t, c.UnsafeWait(0, time.Millisecond))
}

func TestCounterUnsafeWaitTimesOut(t *testing.T) {
	c := New()
	c.Increment()
	require.False(t, c.UnsafeWait(0, time.Millisecond))
}

func TestCounterUnsafeWaitWakesOnDecrement(t *testing.T) {
	c := New()
	c.Increment()

	go func() {
		time.Sleep(2 * time.Millisecond)
		c.Decrement()
	}()

	require.True(t, c.UnsafeWait(0, 200*time.Millisecond))
}

func TestCounterExactlyOnceCompletion(t *testing.T) {
	c := New()
	const n = 200

	for i := 0; i < n; i++ {
		c.Increment()
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Decrement()
		}()
	}
	wg.Wait()

	require.EqualValues(t, 0, c.Get())
}
