package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/ringcache/cache"
)

// gather collects the registry into name -> reason label ("" if none) -> value.
func gather(t *testing.T, reg *prometheus.Registry) map[string]map[string]float64 {
	t.Helper()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]map[string]float64, len(mfs))
	for _, mf := range mfs {
		byLabel := make(map[string]float64)
		for _, m := range mf.GetMetric() {
			label := ""
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "reason" {
					label = lp.GetValue()
				}
			}
			byLabel[label] = value(m)
		}
		out[mf.GetName()] = byLabel
	}
	return out
}

func value(m *dto.Metric) float64 {
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestAdapter_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := New(reg, "ringcache", "test", prometheus.Labels{"app": "unit"})

	a.Hit()
	a.Hit()
	a.Miss()
	a.Stale()
	a.Evict(cache.EvictCapacity)
	a.Evict(cache.EvictTTL)
	a.Evict(cache.EvictTTL)
	a.Size(7)

	got := gather(t, reg)
	assert.Equal(t, 2.0, got["ringcache_test_hits_total"][""])
	assert.Equal(t, 1.0, got["ringcache_test_misses_total"][""])
	assert.Equal(t, 1.0, got["ringcache_test_stale_total"][""])
	assert.Equal(t, 1.0, got["ringcache_test_evictions_total"]["capacity"])
	assert.Equal(t, 2.0, got["ringcache_test_evictions_total"]["ttl"])
	assert.Equal(t, 7.0, got["ringcache_test_size_entries"][""])
}

// Wired into a cache, the adapter follows its traffic.
func TestAdapter_WithCache(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "ringcache", "wired", nil)

	c := cache.NewWithOptions(cache.Options[string, int]{
		Capacity: 2,
		TTL:      time.Hour,
		Metrics:  m,
	})
	c.Insert("a", 1)
	c.Insert("b", 2)
	c.Insert("c", 3) // evicts a
	c.Get("a")
	c.Get("c")

	got := gather(t, reg)
	assert.Equal(t, 1.0, got["ringcache_wired_hits_total"][""])
	assert.Equal(t, 1.0, got["ringcache_wired_misses_total"][""])
	assert.Equal(t, 1.0, got["ringcache_wired_evictions_total"]["capacity"])
	assert.Equal(t, 2.0, got["ringcache_wired_size_entries"][""])
}
