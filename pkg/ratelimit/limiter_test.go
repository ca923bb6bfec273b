package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowExactLimit(t *testing.T) {
	t.Parallel()

	l := New(5, time.Minute)

	for i := range 5 {
		require.True(t, l.Allow("client-a"), "request %d should be admitted", i+1)
	}
	require.False(t, l.Allow("client-a"), "request over the limit should be rejected")
}

func TestWindowSlides(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	l.SetClock(func() time.Time { return now })

	require.True(t, l.Allow("client-a"))
	require.True(t, l.Allow("client-a"))
	require.False(t, l.Allow("client-a"))

	// Advance past the window; the old stamps slide out.
	now = now.Add(61 * time.Second)
	require.True(t, l.Allow("client-a"))
}

func TestKeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(1, time.Minute)

	require.True(t, l.Allow("client-a"))
	require.False(t, l.Allow("client-a"))
	require.True(t, l.Allow("client-b"))
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	l := New(3, time.Minute)

	require.Equal(t, 3, l.Remaining("client-a"))
	require.True(t, l.Allow("client-a"))
	require.Equal(t, 2, l.Remaining("client-a"))
	require.True(t, l.Allow("client-a"))
	require.True(t, l.Allow("client-a"))
	require.Equal(t, 0, l.Remaining("client-a"))
}

func TestPruneDropsIdleKeys(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	l.SetClock(func() time.Time { return now })

	require.True(t, l.Allow("client-a"))
	require.Len(t, l.windows, 1)

	now = now.Add(2 * time.Minute)
	l.Prune()
	require.Empty(t, l.windows)
}

func TestConcurrentBurstNeverExceedsLimit(t *testing.T) {
	t.Parallel()

	const limit = 10
	l := New(limit, time.Minute)

	var wg sync.WaitGroup
	admitted := make(chan struct{}, 100)

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("client-a") {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	require.Len(t, admitted, limit)
}
