package cache

import "github.com/IvanBrykalov/ringcache/internal/ring"

// expire is the opportunistic sweep run at the end of every Get and Insert.
//
// Fast path: if the hint (the oldest deadline we know of) is still ahead of
// now, nothing can have expired and we return after one atomic load.
// Otherwise one goroutine wins the sweeping flag and drains expired records
// from the front of the ring; every other goroutine returns immediately.
//
// The sweep peeks at the front record before popping it. A record that has
// not expired yet stays in the ring and its deadline becomes the new hint.
// If the ring runs dry the hint is left as is.
func (c *cache[K, V]) expire(now int64) {
	if c.hint.Load() > now {
		return
	}
	if !c.sweeping.CompareAndSwap(false, true) {
		c.sweepSkips.Add(1)
		return
	}
	defer c.sweeping.Store(false)
	c.sweeps.Add(1)

	expired := func(exp int64) bool { return exp < now }
	for {
		k, exp, res := c.ring.PopIf(expired)
		switch res {
		case ring.Popped:
			c.retire(k, exp, EvictTTL)
		case ring.Rejected:
			c.hint.Store(exp)
			return
		default:
			return
		}
	}
}
