package cache

import (
	"time"

	"github.com/IvanBrykalov/ringcache/internal/ring"
	"github.com/IvanBrykalov/ringcache/internal/util"
)

// cache composes the sharded store, the arrival ring and the expiration
// coordinator. All methods are safe for concurrent use by multiple goroutines.
type cache[K comparable, V any] struct {
	store *store[K, V]
	ring  *ring.Ring[K]

	capacity int
	ttl      int64 // nanoseconds

	// sweeping/hint coordinate opportunistic expiration (see expire.go).
	sweeping util.PaddedAtomicBool
	hint     util.PaddedAtomicInt64

	opt Options[K, V]
	now func() int64

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	hits        util.PaddedAtomicUint64
	misses      util.PaddedAtomicUint64
	stale       util.PaddedAtomicUint64
	evictCap    util.PaddedAtomicUint64
	evictTTL    util.PaddedAtomicUint64
	sweeps      util.PaddedAtomicUint64
	sweepSkips  util.PaddedAtomicUint64
	overwritten util.PaddedAtomicUint64
}

// New constructs a cache holding at most capacity entries, each expiring
// ttl after insertion. It panics if capacity <= 0 or ttl < 0.
func New[K comparable, V any](capacity int, ttl time.Duration) Cache[K, V] {
	return NewWithOptions(Options[K, V]{Capacity: capacity, TTL: ttl})
}

// NewWithOptions constructs a cache with the provided Options.
// Defaults:
//   - nil Metrics  -> NoopMetrics
//   - nil Hasher   -> util.Hash
//   - nil Clock    -> time.Now
//   - Shards <= 0  -> auto, rounded up to the next power of two
func NewWithOptions[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Capacity <= 0 {
		panic("Capacity must be > 0")
	}
	if opt.TTL < 0 {
		panic("TTL must be >= 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Hasher == nil {
		opt.Hasher = util.Hash[K]
	}
	shards := util.ShardCount(opt.Shards)
	opt.Shards = shards

	c := &cache[K, V]{
		store:    newStore[K, V](shards, opt.Capacity, opt.Hasher),
		ring:     ring.New[K](opt.Capacity),
		capacity: opt.Capacity,
		ttl:      int64(opt.TTL),
		opt:      opt,
	}
	if opt.Clock != nil {
		c.now = opt.Clock.NowUnixNano
	} else {
		c.now = func() int64 { return time.Now().UnixNano() }
	}
	c.hint.Store(c.now())
	return c
}

// ---- Cache[K,V] implementation ----

// Get returns a snapshot of k with the expired flag computed against now.
func (c *cache[K, V]) Get(k K) (Value[V], bool) {
	e, ok := c.store.get(k)
	now := c.now()
	if !ok {
		c.misses.Add(1)
		c.opt.Metrics.Miss()
		c.expire(now)
		return Value[V]{}, false
	}

	v := Value[V]{val: e.val, exp: e.exp, expired: now > e.exp}
	c.hits.Add(1)
	c.opt.Metrics.Hit()
	if v.expired {
		c.stale.Add(1)
		c.opt.Metrics.Stale()
	}
	c.expire(now)
	return v, true
}

// Insert stores k→v, evicting arrival-oldest records while the ring is full.
//
// The store is written before the ring record is pushed: a store entry never
// outlives every ring record that could retire it.
func (c *cache[K, V]) Insert(k K, v V) {
	now := c.now()
	exp := now + c.ttl

	c.store.set(k, v, exp)
	for !c.ring.Push(k, exp) {
		old, t, ok := c.ring.Pop()
		if !ok {
			// Another goroutine drained the ring first; there is room now.
			continue
		}
		c.hint.Store(t)
		c.retire(old, t, EvictCapacity)
	}
	c.opt.Metrics.Size(c.ring.Len())
	c.expire(now)
}

// Len returns the number of ring records, which is bounded by Capacity.
func (c *cache[K, V]) Len() int { return c.ring.Len() }

// Capacity returns the configured capacity.
func (c *cache[K, V]) Capacity() int { return c.capacity }

// TTL returns the configured time-to-live.
func (c *cache[K, V]) TTL() time.Duration { return time.Duration(c.ttl) }

// Stats returns a snapshot of the counters. Fields are read independently.
func (c *cache[K, V]) Stats() Stats {
	return Stats{
		Hits:              c.hits.Load(),
		Misses:            c.misses.Load(),
		Stale:             c.stale.Load(),
		CapacityEvictions: c.evictCap.Load(),
		Expirations:       c.evictTTL.Load(),
		Overwritten:       c.overwritten.Load(),
		Sweeps:            c.sweeps.Load(),
		SweepsSkipped:     c.sweepSkips.Load(),
		Len:               c.ring.Len(),
		Resident:          c.store.len(),
		Capacity:          c.capacity,
	}
}

// ---- helpers ----

// retire removes the store entry a ring record points at. If k was inserted
// again after this record, the newer entry carries a different deadline and
// is kept.
func (c *cache[K, V]) retire(k K, exp int64, reason EvictReason) {
	v, ok := c.store.removeIf(k, exp)
	if !ok {
		c.overwritten.Add(1)
		return
	}
	switch reason {
	case EvictCapacity:
		c.evictCap.Add(1)
	case EvictTTL:
		c.evictTTL.Add(1)
	}
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(k, v, reason)
	}
}
