package quota

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced by hand so window expiry needs no sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestAdmitUpToLimit(t *testing.T) {
	clock := newClock()
	tr := New(WithClock(clock.Now))

	for i := 1; i <= 20; i++ {
		require.True(t, tr.AdmitNow("10.0.0.1"), "message %d should be admitted", i)
		rec, ok := tr.Lookup("10.0.0.1")
		require.True(t, ok)
		assert.Equal(t, i, rec.Count)
	}

	assert.False(t, tr.AdmitNow("10.0.0.1"))
	rec, _ := tr.Lookup("10.0.0.1")
	assert.Equal(t, 20, rec.Count, "rejected message must not be counted")
}

func TestFirstAdmitSetsResetAt(t *testing.T) {
	clock := newClock()
	tr := New(WithClock(clock.Now))

	require.True(t, tr.AdmitNow("a"))
	rec, ok := tr.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(24*time.Hour), rec.ResetAt)
	assert.Equal(t, 1, tr.Len())
}

func TestWindowReset(t *testing.T) {
	clock := newClock()
	tr := New(WithClock(clock.Now))

	for i := 0; i < 20; i++ {
		tr.AdmitNow("a")
	}
	require.False(t, tr.AdmitNow("a"))

	t.Run("exactly at resetAt still inside window", func(t *testing.T) {
		clock.Advance(24 * time.Hour)
		assert.False(t, tr.AdmitNow("a"))
	})

	t.Run("after resetAt count restarts at 1", func(t *testing.T) {
		clock.Advance(time.Millisecond)
		require.True(t, tr.AdmitNow("a"))
		rec, _ := tr.Lookup("a")
		assert.Equal(t, 1, rec.Count)
		assert.Equal(t, clock.Now().Add(24*time.Hour), rec.ResetAt)
	})
}

func TestWindowResetBelowLimit(t *testing.T) {
	clock := newClock()
	tr := New(WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		tr.AdmitNow("a")
	}
	clock.Advance(25 * time.Hour)
	require.True(t, tr.AdmitNow("a"))

	rec, _ := tr.Lookup("a")
	assert.Equal(t, 1, rec.Count)
}

func TestClientsAreIndependent(t *testing.T) {
	clock := newClock()
	tr := New(WithClock(clock.Now))

	for i := 0; i < 20; i++ {
		tr.AdmitNow("a")
	}
	assert.False(t, tr.AdmitNow("a"))
	assert.True(t, tr.AdmitNow("b"))

	rec, _ := tr.Lookup("b")
	assert.Equal(t, 1, rec.Count)
	assert.Equal(t, 2, tr.Len())
}

func TestCustomLimitAndWindow(t *testing.T) {
	clock := newClock()
	tr := New(WithClock(clock.Now), WithLimit(2), WithWindow(time.Minute))

	assert.True(t, tr.AdmitNow("a"))
	assert.True(t, tr.AdmitNow("a"))
	assert.False(t, tr.AdmitNow("a"))
	assert.Equal(t, 2, tr.Limit())

	clock.Advance(time.Minute + time.Second)
	assert.True(t, tr.AdmitNow("a"))
}

func TestLookupUnknown(t *testing.T) {
	tr := New()
	_, ok := tr.Lookup("nobody")
	assert.False(t, ok)
	assert.Equal(t, 0, tr.Len())
}

func TestConcurrentAdmitNeverExceedsLimit(t *testing.T) {
	clock := newClock()
	tr := New(WithClock(clock.Now))

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.AdmitNow("shared") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), admitted.Load())
	rec, _ := tr.Lookup("shared")
	assert.Equal(t, 20, rec.Count)
}

func TestConcurrentClients(t *testing.T) {
	tr := New()

	var wg sync.WaitGroup
	for c := 0; c < 10; c++ {
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				tr.AdmitNow(id)
			}(fmt.Sprintf("client-%d", c))
		}
	}
	wg.Wait()

	for c := 0; c < 10; c++ {
		rec, ok := tr.Lookup(fmt.Sprintf("client-%d", c))
		require.True(t, ok)
		assert.Equal(t, 20, rec.Count)
	}
}
