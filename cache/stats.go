package cache

// Stats is a point-in-time view of cache counters.
// Counters are cumulative since construction.
type Stats struct {
	Hits   uint64 // Get found the key (stale or not)
	Misses uint64 // Get did not find the key
	Stale  uint64 // subset of Hits whose entry had expired

	CapacityEvictions uint64 // entries removed to make room
	Expirations       uint64 // entries removed by a sweep
	// Overwritten counts retired ring records whose key no longer carried
	// the record's deadline: it was inserted again (the newer entry was kept)
	// or an earlier record with the same deadline already removed it.
	Overwritten uint64

	Sweeps        uint64 // sweeps that ran
	SweepsSkipped uint64 // sweeps skipped because another one was running

	Len      int // ring records (Cache.Len)
	Resident int // store entries; may briefly differ from Len
	Capacity int
}

// HitRatio returns Hits / (Hits + Misses), or 0 before the first Get.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
