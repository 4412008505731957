// Command bench runs a synthetic workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/ringcache/cache"
	pmet "github.com/IvanBrykalov/ringcache/metrics/prom"
	"github.com/IvanBrykalov/ringcache/refresh"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "bench:", err)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	// ---- pprof / Prometheus (both on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go serve(log, "pprof", cfg.PprofAddr)
	}
	metrics := pmet.New(nil, "ringcache", "bench", nil)
	if cfg.MetricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go serve(log, "metrics", cfg.MetricsAddr)
	}

	// ---- Build cache ----
	c := cache.NewWithOptions(cache.Options[string, string]{
		Capacity: cfg.Capacity,
		TTL:      cfg.TTL,
		Shards:   cfg.Shards,
		Metrics:  metrics,
	})

	get := c.Get
	var ref *refresh.Refresher[string, string]
	if cfg.Refresh {
		ref = refresh.New(c, func(_ context.Context, k string) (string, error) {
			return "r:" + k, nil
		}, refresh.Options{Logger: log})
		get = ref.Get
	}

	// ---- Preload to get a realistic hit-rate ----
	for i := 0; i < cfg.Preload; i++ {
		c.Insert("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}
	log.Info("starting",
		slog.Int("cap", cfg.Capacity),
		slog.Duration("ttl", cfg.TTL),
		slog.Int("workers", cfg.Workers),
		slog.Int("keys", cfg.Keys),
		slog.Int("reads_pct", cfg.ReadPct),
		slog.Bool("refresh", cfg.Refresh),
		slog.Int64("seed", cfg.Seed),
	)

	// ---- Load generation ----
	var reads, writes, hits, stale, misses, total uint64
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	keysMax := uint64(cfg.Keys - 1)
	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(cfg.Seed + int64(id)*9973))
			localZipf := rand.NewZipf(localR, cfg.ZipfS, cfg.ZipfV, keysMax)

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddUint64(&total, 1)
				k := "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
				if int(localR.Int31n(100)) < cfg.ReadPct {
					atomic.AddUint64(&reads, 1)
					v, ok := get(k)
					switch {
					case !ok:
						atomic.AddUint64(&misses, 1)
					case v.IsExpired():
						atomic.AddUint64(&stale, 1)
					default:
						atomic.AddUint64(&hits, 1)
					}
				} else {
					atomic.AddUint64(&writes, 1)
					c.Insert(k, "v"+strconv.Itoa(localR.Int()))
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	if ref != nil {
		if err := ref.Close(); err != nil {
			log.Error("refresher close", slog.Any("error", err))
		}
	}

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	readsN := atomic.LoadUint64(&reads)
	pct := func(n uint64) float64 {
		if readsN == 0 {
			return 0
		}
		return float64(n) / float64(readsN) * 100
	}
	st := c.Stats()

	fmt.Printf("cap=%d ttl=%v shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Capacity, cfg.TTL, cfg.Shards, cfg.Workers, cfg.Keys, elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, atomic.LoadUint64(&writes))
	fmt.Printf("fresh=%.2f%%  stale=%.2f%%  miss=%.2f%%\n",
		pct(atomic.LoadUint64(&hits)), pct(atomic.LoadUint64(&stale)), pct(atomic.LoadUint64(&misses)))
	fmt.Printf("evicted: capacity=%d ttl=%d  sweeps=%d (skipped %d)\n",
		st.CapacityEvictions, st.Expirations, st.Sweeps, st.SweepsSkipped)
	if ref != nil {
		rs := ref.Stats()
		fmt.Printf("refresh: loads=%d failures=%d skipped=%d\n", rs.Loads, rs.Failures, rs.Skipped)
	}
	fmt.Printf("Len()=%d resident=%d\n", c.Len(), st.Resident)
}

// serve runs an HTTP server on DefaultServeMux until it fails.
func serve(log *slog.Logger, name, addr string) {
	log.Info("serving", slog.String("endpoint", name), slog.String("addr", addr))
	srv := &http.Server{Addr: addr, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", slog.String("endpoint", name), slog.Any("error", err))
	}
}
