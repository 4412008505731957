// Package cache provides a fast, generic, in-memory cache bounded by a fixed
// capacity and a uniform TTL. It favors throughput over exactness: expired
// entries may linger until the next sweep and entries may leave slightly
// before or after their deadline.
//
// Design
//
//   - Storage: a sharded map, each shard protected by its own RWMutex. The
//     shard count is a power of two picked from GOMAXPROCS unless set.
//     Get copies the entry out under a read lock.
//
//   - Arrival ring: a bounded lock-free FIFO of (key, deadline) records in
//     insertion order. Its length is Len(). When it is full, Insert pops the
//     arrival-oldest record and evicts that key (no LRU promotion on Get).
//
//   - Expiration: every Get/Insert compares a cached "oldest deadline" hint
//     with the clock. Only when the hint has passed does it try to win an
//     atomic flag; the winner sweeps expired records off the ring front, the
//     losers return at once. Nothing ever waits.
//
//   - Staleness: Get returns expired entries that have not been swept yet,
//     flagged through Value.IsExpired, so callers can serve stale data while
//     refreshing it (see package refresh).
//
//   - Metrics: Options.Metrics receives Hit/Miss/Stale/Evict/Size signals.
//     By default NoopMetrics is used; plug the Prometheus adapter to export them.
//
// Basic usage
//
//	c := cache.New[string, []byte](10_000, time.Minute)
//	c.Insert("a", []byte("1"))
//	if v, ok := c.Get("a"); ok && !v.IsExpired() {
//	    _ = v.Get()
//	}
//
// Serving stale values
//
//	if v, ok := c.Get("a"); ok {
//	    if v.IsExpired() {
//	        go refresh("a") // or use package refresh
//	    }
//	    return v.Unwrap()
//	}
//
// Exporting metrics
//
//	m := prom.New(nil, "ringcache", "demo", nil) // implements Metrics
//	c := cache.NewWithOptions(cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    TTL:      time.Minute,
//	    Metrics:  m,
//	})
//
// Races worth knowing
//
// A Get may report a miss right after an Insert of the same key returned, if
// a capacity eviction or sweep retired it in between. Re-inserting a key
// leaves two ring records; the older one counts toward Len until it is
// popped, but retiring it does not delete the newer value.
package cache
