package fibermutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryLockUncontended(t *testing.T) {
	m := New()
	require.True(t, m.TryLock())
}

func TestTryLockContended(t *testing.T) {
	m := New()
	require.True(t, m.TryLock())
	require.False(t, m.TryLock())
}

func TestUnlockAllowsReacquire(t *testing.T) {
	m := New()
	require.True(t, m.TryLock())
	m.Unlock()
	require.True(t, m.TryLock())
}

func TestConcurrentTryLockExactlyOneWinner(t *testing.T) {
	m := New()
	const n = 64

	var wg sync.WaitGroup
	var wins int32
	var mu sync.Mutex

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if m.TryLock() {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, wins)
}
