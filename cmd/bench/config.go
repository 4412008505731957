package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/IvanBrykalov/ringcache/internal/util"
)

// config holds the benchmark settings. Values come from the environment
// (optionally a .env file) and can be overridden by flags.
type config struct {
	Capacity int           `env:"BENCH_CAPACITY" envDefault:"100000"`
	TTL      time.Duration `env:"BENCH_TTL" envDefault:"1s"`
	Shards   int           `env:"BENCH_SHARDS" envDefault:"0"`

	Workers  int           `env:"BENCH_WORKERS" envDefault:"0"`
	Duration time.Duration `env:"BENCH_DURATION" envDefault:"10s"`
	ReadPct  int           `env:"BENCH_READS" envDefault:"80"`

	Keys    int     `env:"BENCH_KEYS" envDefault:"1000000"`
	ZipfS   float64 `env:"BENCH_ZIPF_S" envDefault:"1.1"`
	ZipfV   float64 `env:"BENCH_ZIPF_V" envDefault:"1.0"`
	Seed    int64   `env:"BENCH_SEED" envDefault:"0"`
	Preload int     `env:"BENCH_PRELOAD" envDefault:"0"`

	// Refresh routes reads through a refresher so stale keys are reloaded.
	Refresh bool `env:"BENCH_REFRESH" envDefault:"false"`

	PprofAddr   string     `env:"BENCH_PPROF"`
	MetricsAddr string     `env:"BENCH_HTTP" envDefault:":8080"`
	LogLevel    slog.Level `env:"BENCH_LOG_LEVEL" envDefault:"info"`
}

// loadConfig reads .env (if present), the environment and then args.
func loadConfig(args []string) (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}
	return parseConfig(args, env.Options{})
}

// parseConfig applies env (per opts) and flag overrides, fills derived
// defaults and validates the result.
func parseConfig(args []string, opts env.Options) (config, error) {
	var cfg config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}

	fset := flag.NewFlagSet("bench", flag.ContinueOnError)
	fset.IntVar(&cfg.Capacity, "cap", cfg.Capacity, "cache capacity (entries)")
	fset.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "entry time-to-live")
	fset.IntVar(&cfg.Shards, "shards", cfg.Shards, "number of store shards (0=auto)")
	fset.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of worker goroutines (0=2*GOMAXPROCS)")
	fset.DurationVar(&cfg.Duration, "duration", cfg.Duration, "benchmark duration")
	fset.IntVar(&cfg.ReadPct, "reads", cfg.ReadPct, "read percentage [0..100]")
	fset.IntVar(&cfg.Keys, "keys", cfg.Keys, "keyspace size")
	fset.Float64Var(&cfg.ZipfS, "zipf_s", cfg.ZipfS, "Zipf s > 1 (skew)")
	fset.Float64Var(&cfg.ZipfV, "zipf_v", cfg.ZipfV, "Zipf v >= 1")
	fset.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed (0=time based)")
	fset.IntVar(&cfg.Preload, "preload", cfg.Preload, "preload entries (0 = cap/2)")
	fset.BoolVar(&cfg.Refresh, "refresh", cfg.Refresh, "reload stale keys in the background")
	fset.StringVar(&cfg.PprofAddr, "pprof", cfg.PprofAddr, "serve pprof at addr (e.g. :6060); empty = disabled")
	fset.StringVar(&cfg.MetricsAddr, "http", cfg.MetricsAddr, "serve Prometheus metrics at addr; empty = disabled")
	fset.TextVar(&cfg.LogLevel, "log_level", cfg.LogLevel, "log level (debug|info|warn|error)")
	if err := fset.Parse(args); err != nil {
		return config{}, err
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 2 * runtime.GOMAXPROCS(0)
	}
	// Resolve auto/rounding here so the report shows the count in use.
	cfg.Shards = util.ShardCount(cfg.Shards)
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Preload == 0 {
		cfg.Preload = cfg.Capacity / 2
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	var errs []error
	if c.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("cap must be > 0, got %d", c.Capacity))
	}
	if c.TTL < 0 {
		errs = append(errs, fmt.Errorf("ttl must be >= 0, got %v", c.TTL))
	}
	if c.ReadPct < 0 || c.ReadPct > 100 {
		errs = append(errs, fmt.Errorf("reads must be in [0..100], got %d", c.ReadPct))
	}
	if c.Keys < 2 {
		errs = append(errs, fmt.Errorf("keys must be >= 2, got %d", c.Keys))
	}
	if c.ZipfS <= 1 || c.ZipfV < 1 {
		errs = append(errs, fmt.Errorf("zipf needs s > 1 and v >= 1, got s=%v v=%v", c.ZipfS, c.ZipfV))
	}
	if c.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be > 0, got %v", c.Duration))
	}
	return errors.Join(errs...)
}
