package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetBeforeExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := New(func() time.Time { return now })

	store.Set("wigle:wifi:51.5050:-0.0900", []string{"a", "b"}, 45*time.Second)

	value, ok := store.Get("wigle:wifi:51.5050:-0.0900")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, value)
}

func TestGetAfterExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := New(func() time.Time { return now })

	store.Set("k", "v", 10*time.Millisecond)

	now = now.Add(10 * time.Millisecond)
	value, ok := store.Get("k")
	require.False(t, ok)
	require.Nil(t, value)

	// The expired entry was evicted on discovery.
	require.Equal(t, 0, store.Len())
}

func TestSetOverwritesDeadline(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := New(func() time.Time { return now })

	store.Set("k", "old", time.Second)
	now = now.Add(500 * time.Millisecond)
	store.Set("k", "new", time.Second)

	now = now.Add(700 * time.Millisecond)
	value, ok := store.Get("k")
	require.True(t, ok)
	require.Equal(t, "new", value)
}

func TestLenCountsStaleEntriesUntilLookup(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := New(func() time.Time { return now })

	store.Set("a", 1, time.Second)
	store.Set("b", 2, time.Second)
	require.Equal(t, 2, store.Len())

	now = now.Add(2 * time.Second)
	// No sweeper: stale entries linger until a lookup touches them.
	require.Equal(t, 2, store.Len())

	_, _ = store.Get("a")
	require.Equal(t, 1, store.Len())
}

func TestMissingKey(t *testing.T) {
	store := New(nil)
	_, ok := store.Get("absent")
	require.False(t, ok)
}
