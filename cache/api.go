package cache

import (
	"time"
)

// Cache is a bounded, TTL-aware, in-memory key/value cache.
// All methods are safe for concurrent use by multiple goroutines and none of
// them blocks on another caller.
//
// Accuracy is traded for speed: an expired entry stays readable (flagged
// through Value.IsExpired) until a sweep retires it, and a Get racing with an
// eviction or sweep may miss a key that was just inserted.
type Cache[K comparable, V any] interface {
	// Get returns a snapshot of the entry for k and whether it was present.
	// Expired entries are still returned; check Value.IsExpired.
	// Get may retire expired entries as a side effect.
	Get(k K) (Value[V], bool)

	// Insert stores k→v with expiration now+TTL. It always succeeds; when the
	// cache is full the arrival-oldest entry is evicted first.
	Insert(k K, v V)

	// Len returns the number of insert records held, at most Capacity().
	Len() int

	// Capacity returns the configured capacity.
	Capacity() int

	// TTL returns the configured time-to-live.
	TTL() time.Duration

	// Stats returns a snapshot of the cache counters.
	Stats() Stats
}
