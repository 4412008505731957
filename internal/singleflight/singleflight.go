// Package singleflight lets at most one caller per key run a piece of work.
// Unlike the classic Do, callers that lose never wait: they are told the key
// is busy and move on.
package singleflight

import "sync"

// Group tracks in-flight keys. The zero value is ready to use.
//
// Concurrency notes:
//   - TryAcquire/Release bracket the work; the winner must call Release
//     exactly once, typically with defer.
//   - The map only ever holds keys with work in flight, so it stays small.
type Group[K comparable] struct {
	mu sync.Mutex
	m  map[K]struct{}
}

// TryAcquire marks key as in flight. It returns false if another caller
// already holds it.
func (g *Group[K]) TryAcquire(key K) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.m == nil {
		g.m = make(map[K]struct{})
	}
	if _, busy := g.m[key]; busy {
		return false
	}
	g.m[key] = struct{}{}
	return true
}

// Release clears the in-flight marker for key.
func (g *Group[K]) Release(key K) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}

// InFlight returns the number of keys currently held.
func (g *Group[K]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
