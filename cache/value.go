package cache

import "time"

// Value is a detached snapshot of a cached entry returned by Get.
// Changing it through Ptr does not touch the stored copy.
type Value[V any] struct {
	val     V
	exp     int64 // UnixNano
	expired bool
}

// Get returns the payload.
func (v Value[V]) Get() V { return v.val }

// Ptr returns a pointer to the snapshot's payload for in-place edits.
func (v *Value[V]) Ptr() *V { return &v.val }

// Unwrap hands the payload over to the caller.
func (v Value[V]) Unwrap() V { return v.val }

// IsExpired reports whether the entry had expired when it was read.
func (v Value[V]) IsExpired() bool { return v.expired }

// ExpireAt returns the entry's expiration instant.
func (v Value[V]) ExpireAt() time.Time { return time.Unix(0, v.exp) }
