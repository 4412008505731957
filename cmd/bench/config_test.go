package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/ringcache/internal/util"
)

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig(nil, env.Options{Environment: map[string]string{}})
	require.NoError(t, err)

	assert.Equal(t, 100_000, cfg.Capacity)
	assert.Equal(t, time.Second, cfg.TTL)
	assert.Equal(t, 80, cfg.ReadPct)
	assert.Equal(t, 50_000, cfg.Preload, "preload defaults to cap/2")
	assert.Positive(t, cfg.Workers)
	assert.NotZero(t, cfg.Seed)
	assert.Equal(t, ":8080", cfg.MetricsAddr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, util.ReasonableShardCount(), cfg.Shards, "auto shards resolve to the effective count")
}

func TestParseConfig_ShardsRounded(t *testing.T) {
	t.Parallel()

	cfg, err := parseConfig([]string{"-shards", "5"}, env.Options{Environment: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Shards)
}

// Flags win over the environment.
func TestParseConfig_EnvThenFlags(t *testing.T) {
	t.Parallel()

	environ := map[string]string{
		"BENCH_CAPACITY":  "500",
		"BENCH_TTL":       "250ms",
		"BENCH_REFRESH":   "true",
		"BENCH_LOG_LEVEL": "debug",
		"BENCH_SEED":      "7",
	}
	cfg, err := parseConfig([]string{"-cap", "900", "-reads", "50"}, env.Options{Environment: environ})
	require.NoError(t, err)

	assert.Equal(t, 900, cfg.Capacity)
	assert.Equal(t, 250*time.Millisecond, cfg.TTL)
	assert.Equal(t, 50, cfg.ReadPct)
	assert.True(t, cfg.Refresh)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 450, cfg.Preload)
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := parseConfig([]string{"-cap", "0", "-reads", "101", "-zipf_s", "1"}, env.Options{Environment: map[string]string{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cap must be > 0")
	assert.Contains(t, err.Error(), "reads must be in [0..100]")
	assert.Contains(t, err.Error(), "zipf needs")

	_, err = parseConfig(nil, env.Options{Environment: map[string]string{"BENCH_TTL": "soon"}})
	require.Error(t, err)
}
