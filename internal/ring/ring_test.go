package ring

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRing_FIFO(t *testing.T) {
	t.Parallel()

	r := New[string](3)
	require.Equal(t, 3, r.Cap())
	require.Equal(t, 0, r.Len())

	require.True(t, r.Push("a", 1))
	require.True(t, r.Push("b", 2))
	require.True(t, r.Push("c", 3))
	require.False(t, r.Push("d", 4), "push into a full ring must fail")
	require.Equal(t, 3, r.Len())

	for i, want := range []string{"a", "b", "c"} {
		v, st, ok := r.Pop()
		require.True(t, ok)
		assert.Equal(t, want, v)
		assert.Equal(t, int64(i+1), st)
	}
	_, _, ok := r.Pop()
	require.False(t, ok, "pop from an empty ring must fail")
	require.Equal(t, 0, r.Len())
}

// Wrapping around many laps with a non power-of-two capacity.
func TestRing_WrapAround(t *testing.T) {
	t.Parallel()

	r := New[int](5)
	next := 0
	for lap := 0; lap < 100; lap++ {
		for i := 0; i < 3; i++ {
			require.True(t, r.Push(lap*3+i, int64(lap*3+i)))
		}
		for i := 0; i < 3; i++ {
			v, _, ok := r.Pop()
			require.True(t, ok)
			require.Equal(t, next, v)
			next++
		}
	}
}

func TestRing_PopIf(t *testing.T) {
	t.Parallel()

	r := New[string](4)
	r.Push("old", 10)
	r.Push("new", 50)

	before := func(limit int64) func(int64) bool {
		return func(st int64) bool { return st < limit }
	}

	v, st, res := r.PopIf(before(20))
	require.Equal(t, Popped, res)
	assert.Equal(t, "old", v)
	assert.Equal(t, int64(10), st)

	// Front is rejected and stays put.
	v, st, res = r.PopIf(before(20))
	require.Equal(t, Rejected, res)
	assert.Equal(t, "", v)
	assert.Equal(t, int64(50), st)
	assert.Equal(t, 1, r.Len())

	v, _, res = r.PopIf(before(100))
	require.Equal(t, Popped, res)
	assert.Equal(t, "new", v)

	_, _, res = r.PopIf(before(100))
	require.Equal(t, Empty, res)
}

// Capacities 1 and 2: full after capacity pushes, FIFO across many laps.
func TestRing_SmallCapacity(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{1, 2} {
		r := New[int](capacity)
		require.Equal(t, capacity, r.Cap())

		next := 0
		for lap := 0; lap < 50; lap++ {
			for i := 0; i < capacity; i++ {
				require.Truef(t, r.Push(lap*capacity+i, int64(lap)), "cap %d lap %d", capacity, lap)
			}
			require.Falsef(t, r.Push(-1, 0), "cap %d: push into a full ring must fail", capacity)
			require.Equal(t, capacity, r.Len())

			for i := 0; i < capacity; i++ {
				v, st, ok := r.Pop()
				require.True(t, ok)
				require.Equal(t, next, v)
				require.Equal(t, int64(lap), st)
				next++
			}
			_, _, ok := r.Pop()
			require.Falsef(t, ok, "cap %d: pop from an empty ring must fail", capacity)
		}
	}
}

// With capacity 1, PopIf rejects and pops the single slot, then reports Empty.
func TestRing_SmallCapacityPopIf(t *testing.T) {
	t.Parallel()

	r := New[string](1)
	require.True(t, r.Push("a", 10))
	require.False(t, r.Push("b", 20))

	_, st, res := r.PopIf(func(st int64) bool { return st < 5 })
	require.Equal(t, Rejected, res)
	assert.Equal(t, int64(10), st)

	v, _, res := r.PopIf(func(st int64) bool { return st < 15 })
	require.Equal(t, Popped, res)
	assert.Equal(t, "a", v)

	_, _, res = r.PopIf(func(int64) bool { return true })
	require.Equal(t, Empty, res)
}

// Racing producers alone must stop at capacity: tail-head never exceeds it.
func TestRing_ConcurrentPushRespectsCap(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{1, 2, 7} {
		r := New[int](capacity)
		var pushed atomic.Int64

		var g errgroup.Group
		for p := 0; p < 8; p++ {
			g.Go(func() error {
				for i := 0; i < 1_000; i++ {
					if r.Push(i, int64(i)) {
						pushed.Add(1)
					}
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		require.Equal(t, int64(capacity), pushed.Load())
		require.Equal(t, uint64(capacity), r.tail.Load()-r.head.Load())
	}
}

func TestRing_NewPanicsOnZero(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { New[int](0) })
}

// Producers and consumers race; every value must be seen exactly once and
// tail-head must never exceed Cap.
func TestRing_ConcurrentExactlyOnce(t *testing.T) {
	t.Parallel()

	const (
		capacity  = 64
		producers = 4
		perProd   = 10_000
	)
	r := New[int](capacity)
	total := producers * perProd

	seen := make([]atomic.Int32, total)
	var consumed atomic.Int64

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			for i := 0; i < perProd; i++ {
				v := p*perProd + i
				for !r.Push(v, int64(v)) {
					runtime.Gosched()
				}
			}
			return nil
		})
	}

	var wg sync.WaitGroup
	for c := 0; c < 4; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for consumed.Load() < int64(total) {
				// tail first: a later head can only shrink the difference.
				tail := r.tail.Load()
				if head := r.head.Load(); head <= tail && tail-head > capacity {
					t.Errorf("tail-head %d exceeds capacity", tail-head)
					return
				}
				v, st, ok := r.Pop()
				if !ok {
					runtime.Gosched()
					continue
				}
				if int64(v) != st {
					t.Errorf("stamp %d does not match value %d", st, v)
				}
				seen[v].Add(1)
				consumed.Add(1)
			}
		}()
	}

	require.NoError(t, g.Wait())
	wg.Wait()

	for v := range seen {
		require.Equalf(t, int32(1), seen[v].Load(), "value %d", v)
	}
}

func BenchmarkRing_PushPop(b *testing.B) {
	r := New[int](1024)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if !r.Push(1, 1) {
				r.Pop()
			}
		}
	})
}
