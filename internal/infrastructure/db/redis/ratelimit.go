package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fixed window: the first hit in a window sets the expiry.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the time left until the window resets, never negative.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if wait := d.ResetAt.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// RateLimiter counts hits per key in Redis. When Redis is unavailable it
// degrades to a per-process window instead of failing open.
type RateLimiter struct {
	client   *redis.Client
	window   time.Duration
	fallback *memoryWindow
}

func NewRateLimiter(client *redis.Client, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client:   client,
		window:   window,
		fallback: newMemoryWindow(window),
	}
}

// Allow records one hit for key and reports whether it is within limit.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	if l.client == nil {
		return l.fallback.allow(key, limit)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := fixedWindowScript.Run(ctx, l.client, []string{keyPrefixRateLimit + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		return l.fallback.allow(key, limit)
	}

	count, ttlMs := int(res[0]), res[1]
	if ttlMs < 0 {
		ttlMs = l.window.Milliseconds()
	}
	return decide(count, limit, time.Now().Add(time.Duration(ttlMs)*time.Millisecond))
}

func decide(count, limit int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// memoryWindow is the per-process fallback. Expired keys are reset on access
// and swept from the map at most once per window.
type memoryWindow struct {
	mu        sync.Mutex
	window    time.Duration
	items     map[string]windowEntry
	nextSweep time.Time
	now       func() time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

func newMemoryWindow(window time.Duration) *memoryWindow {
	return &memoryWindow{window: window, items: make(map[string]windowEntry), now: time.Now}
}

func (m *memoryWindow) allow(key string, limit int) Decision {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.After(m.nextSweep) {
		for k, e := range m.items {
			if now.After(e.resetAt) {
				delete(m.items, k)
			}
		}
		m.nextSweep = now.Add(m.window)
	}

	e, ok := m.items[key]
	if !ok || now.After(e.resetAt) {
		e = windowEntry{resetAt: now.Add(m.window)}
	}
	e.count++
	m.items[key] = e
	return decide(e.count, limit, e.resetAt)
}
