package cache

import (
	"time"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity means the ring was full and the arrival-oldest entry made room.
	EvictCapacity EvictReason = iota
	// EvictTTL means the entry expired and a sweep retired it.
	EvictTTL
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictTTL:
		return "ttl"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Implementations are called on the Get/Insert path and must be cheap and
// safe for concurrent use.
type Metrics interface {
	Hit()
	Miss()
	// Stale is reported for a hit whose entry has already expired.
	Stale()
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache. Zero values are safe except Capacity;
// defaults are applied in NewWithOptions():
//   - Shards <= 0  => auto (rounded up to power of two)
//   - nil Hasher   => util.Hash (string, integer and Stringer keys)
//   - nil Metrics  => NoopMetrics
//   - nil Clock    => time.Now()
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of entries (ring slots). Must be > 0.
	Capacity int

	// TTL applies uniformly to every entry. Zero means entries are stale as
	// soon as the clock moves past the insert instant.
	TTL time.Duration

	// Shards defines the number of store shards. If 0, an automatic value is
	// chosen (≈ 4*GOMAXPROCS) and rounded to the next power of two.
	Shards int

	// Hasher maps a key to a shard. Required for key types util.Hash
	// does not know (structs, pointers).
	Hasher func(K) uint64

	// OnEvict is called after an entry leaves the store, outside shard locks.
	// It runs on the goroutine that triggered the eviction; keep it short.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}
