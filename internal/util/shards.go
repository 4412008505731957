package util

import "runtime"

// maxShards caps the automatic shard count; more shards only add memory.
const maxShards = 256

// ReasonableShardCount picks a default shard count from CPU parallelism:
// nextPow2(4*GOMAXPROCS), clamped to [1..256]. The store is hit on every
// Get and Insert, so it leans a little wider than a per-CPU split.
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 4)))
	if n > maxShards {
		n = maxShards
	}
	return n
}

// ShardCount normalizes a requested shard count: non-positive means auto,
// anything else is rounded up to a power of two.
func ShardCount(requested int) int {
	if requested <= 0 {
		return ReasonableShardCount()
	}
	return int(NextPow2(uint64(requested)))
}

// Index maps a 64-bit value onto [0, n). Uses a mask when n is a power
// of two and falls back to modulo otherwise.
func Index(x uint64, n int) int {
	if n <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(n)) {
		return int(x & uint64(n-1))
	}
	return int(x % uint64(n))
}

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && (x&(x-1)) == 0
}

// NextPow2 returns the smallest power of two >= x.
//   - x == 0 -> 1
//   - values above 1<<63 clamp to 1<<63
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	if x == 0 {
		return 1 << 63
	}
	return x
}
