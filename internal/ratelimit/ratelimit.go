// Package ratelimit provides a keyed token bucket limiter, one bucket per client key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// sweepEvery is how many Allow calls pass between sweeps of idle buckets.
const sweepEvery = 256

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
// Buckets idle for longer than the TTL are dropped lazily during Allow.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	calls   int
	now     func() time.Time
}

// New creates a limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     10 * time.Minute,
		now:     time.Now,
	}
}

// PerMinute creates a limiter allowing n requests per minute with the given burst.
func PerMinute(n, burst int) *KeyedRateLimiter {
	return New(float64(n)/time.Minute.Seconds(), burst)
}

// Allow reports whether a request for key may proceed, consuming a token if so.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	now := krl.now()

	krl.calls++
	if krl.calls%sweepEvery == 0 {
		krl.sweep(now)
	}

	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.entries)
}

// sweep drops buckets idle past the TTL. Callers hold mu.
func (krl *KeyedRateLimiter) sweep(now time.Time) {
	for key, e := range krl.entries {
		if now.Sub(e.lastSeen) > krl.ttl {
			delete(krl.entries, key)
		}
	}
}
