// Package ratelimit implements token-bucket admission control keyed by
// (endpoint-class, client-identity) pairs, so one heavy client cannot starve
// others and one endpoint's quota is independent of another's.
package ratelimit

import (
	"math"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type bucket struct {
	capacity  int
	tokens    float64
	updatedAt time.Time
}

// Limiter holds one token bucket per key. Buckets are created lazily on the
// first request for a key, refill continuously in proportion to elapsed time
// rather than in discrete per-minute resets, and are rebuilt whenever the
// configured capacity changes.
type Limiter struct {
	buckets cmap.ConcurrentMap[string, bucket]
	clock   func() time.Time
}

// New creates a Limiter. clock may be nil, in which case time.Now is used;
// tests inject a fake clock to simulate refill.
func New(clock func() time.Time) *Limiter {
	if clock == nil {
		clock = time.Now
	}
	return &Limiter{
		buckets: cmap.New[bucket](),
		clock:   clock,
	}
}

// Allow admits one request against the bucket for key with the given
// per-minute quota. Refill and deduction happen atomically per key.
func (l *Limiter) Allow(key string, perMinute int) bool {
	now := l.clock()
	admitted := false

	l.buckets.Upsert(key, bucket{}, func(exists bool, current, _ bucket) bucket {
		if !exists || current.capacity != perMinute {
			current = bucket{
				capacity:  perMinute,
				tokens:    float64(perMinute),
				updatedAt: now,
			}
		} else {
			elapsed := now.Sub(current.updatedAt).Seconds()
			if elapsed < 0 {
				elapsed = 0
			}
			refill := elapsed * float64(current.capacity) / 60.0
			current.tokens = math.Min(float64(current.capacity), current.tokens+refill)
			current.updatedAt = now
		}

		if current.tokens >= 1 {
			current.tokens--
			admitted = true
		}
		return current
	})

	return admitted
}
