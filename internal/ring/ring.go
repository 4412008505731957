// Package ring implements a bounded, lock-free, multi-producer/multi-consumer
// FIFO queue used to record insertion order.
//
// Each slot carries a sequence number. A producer owns slot pos once it wins
// the CAS on tail and the slot sequence equals pos; it publishes by setting the
// sequence to pos+1. A consumer owns the slot once it wins the CAS on head and
// the sequence equals pos+1; it releases by setting the sequence to pos+n (n
// slots), which is the position the next producer for that slot expects.
// Published and released collide when n == 1, so the ring always allocates at
// least two slots and enforces its capacity on tail-head instead.
//
// Every slot also holds an int64 stamp (the cache stores expiration instants
// there). The stamp is atomic so PopIf can inspect the front before claiming it.
package ring

import (
	"runtime"
	"sync/atomic"

	"github.com/IvanBrykalov/ringcache/internal/util"
)

// Result describes the outcome of PopIf.
type Result int

const (
	// Popped means the front value was removed and returned.
	Popped Result = iota
	// Rejected means the predicate refused the front, which stays in the ring.
	Rejected
	// Empty means there was nothing to pop.
	Empty
)

type slot[T any] struct {
	seq   atomic.Uint64
	stamp atomic.Int64
	val   T
}

// Ring is a fixed-capacity FIFO. All methods are safe for concurrent use and
// none of them blocks: Push on a full ring and Pop on an empty ring return false.
//
// Ordering between racing producers follows who wins the tail CAS, not wall-clock
// order, but each pushed value is popped exactly once.
type Ring[T any] struct {
	_    util.CacheLinePad
	head util.PaddedAtomicUint64 // next position to pop
	tail util.PaddedAtomicUint64 // next position to push

	slots []slot[T]
	n     uint64 // len(slots), >= 2
	limit uint64 // logical capacity, <= n
}

// New returns an empty ring holding at most capacity values.
// It panics if capacity <= 0.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ring: capacity must be > 0")
	}
	n := max(capacity, 2)
	r := &Ring[T]{
		slots: make([]slot[T], n),
		n:     uint64(n),
		limit: uint64(capacity),
	}
	for i := range r.slots {
		r.slots[i].seq.Store(uint64(i))
	}
	return r
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int { return int(r.limit) }

// Len returns the number of values currently in the ring. Under concurrent
// use this is a snapshot clamped to [0, Cap()].
func (r *Ring[T]) Len() int {
	// head first: tail only grows, so the later tail load is >= head.
	head := r.head.Load()
	tail := r.tail.Load()
	if tail <= head {
		return 0
	}
	if d := tail - head; d < r.limit {
		return int(d)
	}
	return int(r.limit)
}

// Push appends v with the given stamp. It returns false if the ring is full.
func (r *Ring[T]) Push(v T, stamp int64) bool {
	pos := r.tail.Load()
	for {
		// A successful CAS below happens after this load, and head only
		// grows, so tail-head never exceeds limit.
		if head := r.head.Load(); head <= pos && pos-head >= r.limit {
			return false
		}
		s := r.at(pos)
		seq := s.seq.Load()
		switch diff := int64(seq - pos); {
		case diff == 0:
			if r.tail.CompareAndSwap(pos, pos+1) {
				s.val = v
				s.stamp.Store(stamp)
				s.seq.Store(pos + 1)
				return true
			}
		case diff < 0:
			// The ring is not full, so the value from one lap ago was
			// claimed by a consumer that has not released the slot yet.
			runtime.Gosched()
		}
		pos = r.tail.Load()
	}
}

// Pop removes and returns the front value and its stamp.
// It returns ok == false if the ring is empty.
func (r *Ring[T]) Pop() (v T, stamp int64, ok bool) {
	v, stamp, res := r.pop(nil)
	return v, stamp, res == Popped
}

// PopIf removes the front value only if pred(stamp) is true. On Rejected the
// returned stamp is the front's stamp and the value stays in the ring.
func (r *Ring[T]) PopIf(pred func(stamp int64) bool) (v T, stamp int64, res Result) {
	return r.pop(pred)
}

func (r *Ring[T]) pop(pred func(int64) bool) (v T, stamp int64, res Result) {
	pos := r.head.Load()
	for {
		s := r.at(pos)
		seq := s.seq.Load()
		switch diff := int64(seq - (pos + 1)); {
		case diff == 0:
			st := s.stamp.Load()
			if pred != nil && !pred(st) {
				// The stamp belongs to pos only if nobody popped pos meanwhile.
				if r.head.Load() == pos {
					return v, st, Rejected
				}
				break
			}
			if r.head.CompareAndSwap(pos, pos+1) {
				v = s.val
				var zero T
				s.val = zero
				s.seq.Store(pos + r.n)
				return v, st, Popped
			}
		case diff < 0:
			// Not published yet: empty, or a producer is mid-write.
			if r.tail.Load() <= pos {
				return v, 0, Empty
			}
			runtime.Gosched()
		}
		pos = r.head.Load()
	}
}

func (r *Ring[T]) at(pos uint64) *slot[T] {
	return &r.slots[util.Index(pos, int(r.n))]
}
