// Package cache provides the process-wide response cache used to avoid
// redundant upstream calls for identical request shapes within a TTL window.
package cache

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is a keyed value cache with per-entry expiration. Expiry uses the
// monotonic reading carried by time.Time, so wall-clock adjustments cannot
// resurrect or prematurely evict entries. Expired entries are purged lazily
// on lookup; there is no background sweeper and no size cap.
type Store struct {
	items cmap.ConcurrentMap[string, entry]
	clock func() time.Time
}

// New creates a Store. clock may be nil, in which case time.Now is used;
// tests inject a fake clock to simulate expiry.
func New(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		items: cmap.New[entry](),
		clock: clock,
	}
}

// Get returns the cached value for key, evicting and reporting a miss when
// the entry has expired.
func (s *Store) Get(key string) (any, bool) {
	item, ok := s.items.Get(key)
	if !ok {
		return nil, false
	}
	if !s.clock().Before(item.expiresAt) {
		// Re-check expiry inside the shard lock so a concurrent Set of a
		// fresh value is not evicted by a stale lookup.
		s.items.RemoveCb(key, func(_ string, current entry, exists bool) bool {
			return exists && !s.clock().Before(current.expiresAt)
		})
		return nil, false
	}
	return item.value, true
}

// Set stores value under key for ttl.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	s.items.Set(key, entry{
		value:     value,
		expiresAt: s.clock().Add(ttl),
	})
}

// Len reports the number of resident entries. Best-effort: entries past
// their deadline but not yet looked up are still counted.
func (s *Store) Len() int {
	return s.items.Count()
}
