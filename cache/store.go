package cache

import (
	"sync"

	"github.com/IvanBrykalov/ringcache/internal/util"
)

// entry is the authoritative copy of a cached value.
// exp is the absolute expiration deadline in UnixNano; the ring record for
// the same insert carries the identical stamp.
type entry[V any] struct {
	val V
	exp int64
}

// store is a sharded map. Each shard has its own RWMutex, so readers of one
// shard never wait for writers of another.
type store[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
}

// shard is an independent partition of the store with its own lock and map.
type shard[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]entry[V]

	// keep neighbouring shards' locks off this cache line
	_ util.CacheLinePad
}

func newStore[K comparable, V any](shards, capacity int, hash func(K) uint64) *store[K, V] {
	ss := make([]*shard[K, V], shards)
	perShard := (capacity + shards - 1) / shards // ceil
	for i := range ss {
		ss[i] = &shard[K, V]{m: make(map[K]entry[V], perShard)}
	}
	return &store[K, V]{shards: ss, hash: hash}
}

// shardFor picks a shard by hashing the key. len(s.shards) is a power of two.
func (s *store[K, V]) shardFor(k K) *shard[K, V] {
	return s.shards[util.Index(s.hash(k), len(s.shards))]
}

// set inserts or overwrites k.
func (s *store[K, V]) set(k K, v V, exp int64) {
	sh := s.shardFor(k)
	sh.mu.Lock()
	sh.m[k] = entry[V]{val: v, exp: exp}
	sh.mu.Unlock()
}

// get returns a copy of the entry, never a reference into the map.
func (s *store[K, V]) get(k K) (entry[V], bool) {
	sh := s.shardFor(k)
	sh.mu.RLock()
	e, ok := sh.m[k]
	sh.mu.RUnlock()
	return e, ok
}

// removeIf deletes k only if its stored deadline equals exp, i.e. the entry
// still belongs to the insert whose ring record is being retired. A newer
// insert of the same key is left alone.
func (s *store[K, V]) removeIf(k K, exp int64) (V, bool) {
	sh := s.shardFor(k)
	sh.mu.Lock()
	e, ok := sh.m[k]
	if !ok || e.exp != exp {
		sh.mu.Unlock()
		var zero V
		return zero, false
	}
	delete(sh.m, k)
	sh.mu.Unlock()
	return e.val, true
}

// len counts resident entries across all shards. Each shard is read under its
// own lock, so the total is not a point-in-time snapshot.
func (s *store[K, V]) len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.m)
		sh.mu.RUnlock()
	}
	return total
}
