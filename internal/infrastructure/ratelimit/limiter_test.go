package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ RateLimiter = (*InMemoryLimiter)(nil)
	_ RateLimiter = (*Limiter)(nil)
)

func allowN(t *testing.T, l RateLimiter, key string, limit, n int) *Result {
	t.Helper()
	var last *Result
	for i := 0; i < n; i++ {
		r, err := l.Allow(context.Background(), key, limit)
		require.NoError(t, err)
		last = r
	}
	return last
}

func TestInMemoryLimiter_CountsDown(t *testing.T) {
	l := NewInMemoryLimiter(time.Minute)

	tests := []struct {
		call      int
		allowed   bool
		remaining int
	}{
		{call: 1, allowed: true, remaining: 2},
		{call: 2, allowed: true, remaining: 1},
		{call: 3, allowed: true, remaining: 0},
		{call: 4, allowed: false, remaining: 0},
		{call: 5, allowed: false, remaining: 0},
	}

	for _, tt := range tests {
		r, err := l.Allow(context.Background(), "login:10.0.0.1", 3)
		require.NoError(t, err)
		assert.Equal(t, tt.allowed, r.Allowed, "call %d", tt.call)
		assert.Equal(t, tt.remaining, r.Remaining, "call %d", tt.call)
		assert.Equal(t, 3, r.Limit)
	}
}

func TestInMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewInMemoryLimiter(time.Minute)

	assert.False(t, allowN(t, l, "user:1", 2, 3).Allowed)
	assert.True(t, allowN(t, l, "user:2", 2, 1).Allowed)
}

func TestInMemoryLimiter_ResetAtFollowsOldestRequest(t *testing.T) {
	l := NewInMemoryLimiter(time.Minute)
	before := time.Now()

	first := allowN(t, l, "ip:1", 5, 1)
	time.Sleep(10 * time.Millisecond)
	second := allowN(t, l, "ip:1", 5, 1)

	assert.Equal(t, first.ResetAt, second.ResetAt)
	assert.WithinDuration(t, before.Add(time.Minute), first.ResetAt, time.Second)
}

func TestInMemoryLimiter_WindowSlides(t *testing.T) {
	l := NewInMemoryLimiter(50 * time.Millisecond)

	require.False(t, allowN(t, l, "short", 2, 3).Allowed)

	time.Sleep(80 * time.Millisecond)

	r := allowN(t, l, "short", 2, 1)
	assert.True(t, r.Allowed)
	assert.Equal(t, 1, r.Remaining)
}

func TestInMemoryLimiter_ZeroLimitRejects(t *testing.T) {
	l := NewInMemoryLimiter(time.Minute)

	r := allowN(t, l, "closed", 0, 1)

	assert.False(t, r.Allowed)
	assert.False(t, r.ResetAt.IsZero())
	assert.Empty(t, l.logs)
}

func TestInMemoryLimiter_ForgetsIdleKeys(t *testing.T) {
	l := NewInMemoryLimiter(20 * time.Millisecond)

	allowN(t, l, "a", 5, 1)
	allowN(t, l, "b", 5, 1)
	time.Sleep(40 * time.Millisecond)
	allowN(t, l, "c", 5, 1)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.logs, 1)
	assert.Contains(t, l.logs, "c")
}

func TestInMemoryLimiter_Concurrent(t *testing.T) {
	l := NewInMemoryLimiter(time.Minute)

	var wg sync.WaitGroup
	var allowed atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := l.Allow(context.Background(), "shared", 20)
			if err == nil && r.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), allowed.Load())
}

func TestTrim(t *testing.T) {
	base := time.Now()
	log := []time.Time{base, base.Add(time.Second), base.Add(2 * time.Second)}

	assert.Len(t, trim(log, base.Add(-time.Second)), 3)
	assert.Len(t, trim(log, base), 2)
	assert.Empty(t, trim(log, base.Add(5*time.Second)))
}

func TestWindowOrDefault(t *testing.T) {
	assert.Equal(t, time.Minute, windowOrDefault(0))
	assert.Equal(t, time.Minute, windowOrDefault(-time.Second))
	assert.Equal(t, 10*time.Second, windowOrDefault(10*time.Second))
}
