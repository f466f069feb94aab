package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultWindow = time.Minute

// RateLimiter decides whether one more request under key fits in limit.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int) (*Result, error)
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAt is when the oldest counted request leaves the window.
	ResetAt time.Time
}

func newResult(allowed bool, limit, counted int, resetAt time.Time) *Result {
	remaining := limit - counted
	if remaining < 0 || !allowed {
		remaining = 0
	}
	return &Result{Allowed: allowed, Limit: limit, Remaining: remaining, ResetAt: resetAt}
}

func windowOrDefault(window time.Duration) time.Duration {
	if window <= 0 {
		return defaultWindow
	}
	return window
}

// slidingWindow trims the log, counts it and records the request only when it
// fits, in one round trip. Scores are unix microseconds.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, math.floor(window / 1000) + 1000)

local reset = now + window
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset = tonumber(oldest[2]) + window
end
return {allowed, count, reset}
`)

// Limiter is a sliding log limiter shared by every gateway replica through
// redis sorted sets.
type Limiter struct {
	client redis.Scripter
	window time.Duration
}

func NewLimiter(client redis.Scripter, window time.Duration) *Limiter {
	return &Limiter{client: client, window: windowOrDefault(window)}
}

func (l *Limiter) Allow(ctx context.Context, key string, limit int) (*Result, error) {
	now := time.Now()
	member := fmt.Sprintf("%d-%s", now.UnixMicro(), uuid.NewString())

	reply, err := slidingWindow.Run(ctx, l.client, []string{key},
		now.UnixMicro(), l.window.Microseconds(), limit, member,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(reply) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply %v", reply)
	}

	return newResult(reply[0] == 1, limit, int(reply[1]), time.UnixMicro(reply[2])), nil
}

// InMemoryLimiter keeps the sliding log in process. Counts are per replica.
type InMemoryLimiter struct {
	mu     sync.Mutex
	window time.Duration
	logs   map[string][]time.Time
	sweep  time.Time
}

func NewInMemoryLimiter(window time.Duration) *InMemoryLimiter {
	return &InMemoryLimiter{
		window: windowOrDefault(window),
		logs:   make(map[string][]time.Time),
	}
}

func (l *InMemoryLimiter) Allow(_ context.Context, key string, limit int) (*Result, error) {
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.sweep) >= l.window {
		l.forgetIdle(cutoff)
		l.sweep = now
	}

	log := trim(l.logs[key], cutoff)
	allowed := len(log) < limit
	if allowed {
		log = append(log, now)
	}
	if len(log) == 0 {
		delete(l.logs, key)
		return newResult(allowed, limit, 0, now.Add(l.window)), nil
	}
	l.logs[key] = log

	return newResult(allowed, limit, len(log), log[0].Add(l.window)), nil
}

// forgetIdle drops keys whose whole log is older than cutoff.
func (l *InMemoryLimiter) forgetIdle(cutoff time.Time) {
	for key, log := range l.logs {
		if len(log) == 0 || !log[len(log)-1].After(cutoff) {
			delete(l.logs, key)
		}
	}
}

// trim drops the leading entries at or before cutoff. log is sorted.
func trim(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	return log[i:]
}
