// Package refresh serves cached values, stale ones included, and reloads
// missing or expired keys in the background.
//
// Callers never wait for a load: Get returns whatever the cache holds right
// now. At most one load per key runs at a time and the total number of
// running loads is capped; a refresh that cannot start is skipped and will
// be retried by a later Get.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/ringcache/cache"
	"github.com/IvanBrykalov/ringcache/internal/singleflight"
)

var (
	// ErrClosed is returned by Refresh after Close.
	ErrClosed = errors.New("refresh: closed")
	// ErrInFlight is returned by Refresh when a load for the key is already running.
	ErrInFlight = errors.New("refresh: load already in flight")
	// ErrSaturated is returned by Refresh when MaxInFlight loads are running.
	ErrSaturated = errors.New("refresh: too many loads in flight")
)

// DefaultMaxInFlight caps concurrent loads when Options.MaxInFlight is not set.
const DefaultMaxInFlight = 64

// Loader fetches the current value for k.
type Loader[K comparable, V any] func(ctx context.Context, k K) (V, error)

// Options configures a Refresher. Zero values are safe.
type Options struct {
	// MaxInFlight caps concurrent background loads (<= 0 => DefaultMaxInFlight).
	MaxInFlight int
	// Timeout bounds a single load (0 = no timeout beyond Close).
	Timeout time.Duration
	// Logger receives load failures (warn) and completions (debug).
	// Nil => slog.Default().
	Logger *slog.Logger
}

// Stats counts background loads.
type Stats struct {
	Loads    uint64 // loads that stored a value
	Failures uint64 // loads that returned an error
	Skipped  uint64 // refreshes not started (in flight or saturated)
	InFlight int    // loads running right now
}

// Refresher wraps a cache with background reloading.
// All methods are safe for concurrent use.
type Refresher[K comparable, V any] struct {
	c    cache.Cache[K, V]
	load Loader[K, V]
	opt  Options
	log  *slog.Logger

	sf singleflight.Group[K]
	g  errgroup.Group

	// mu orders scheduling against Close so no goroutine starts after Wait.
	mu     sync.RWMutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc

	loads    atomic.Uint64
	failures atomic.Uint64
	skipped  atomic.Uint64
}

// New returns a Refresher reading from c and reloading through load.
// It panics if c or load is nil.
func New[K comparable, V any](c cache.Cache[K, V], load Loader[K, V], opt Options) *Refresher[K, V] {
	if c == nil || load == nil {
		panic("refresh: cache and loader are required")
	}
	if opt.MaxInFlight <= 0 {
		opt.MaxInFlight = DefaultMaxInFlight
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Refresher[K, V]{
		c:      c,
		load:   load,
		opt:    opt,
		log:    opt.Logger.With(slog.String("component", "refresh")),
		ctx:    ctx,
		cancel: cancel,
	}
	r.g.SetLimit(opt.MaxInFlight)
	return r
}

// Get returns the cached snapshot for k, stale or not. When k is missing or
// expired a background load is scheduled; Get itself never waits for it.
func (r *Refresher[K, V]) Get(k K) (cache.Value[V], bool) {
	v, ok := r.c.Get(k)
	if !ok || v.IsExpired() {
		_ = r.Refresh(k)
	}
	return v, ok
}

// Refresh schedules a background load for k. It returns nil if the load was
// started, or ErrInFlight, ErrSaturated or ErrClosed if it was not.
func (r *Refresher[K, V]) Refresh(k K) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	if !r.sf.TryAcquire(k) {
		r.skipped.Add(1)
		return ErrInFlight
	}
	if !r.g.TryGo(func() error { return r.run(k) }) {
		r.sf.Release(k)
		r.skipped.Add(1)
		return ErrSaturated
	}
	return nil
}

// Cache returns the wrapped cache.
func (r *Refresher[K, V]) Cache() cache.Cache[K, V] { return r.c }

// Stats returns a snapshot of load counters.
func (r *Refresher[K, V]) Stats() Stats {
	return Stats{
		Loads:    r.loads.Load(),
		Failures: r.failures.Load(),
		Skipped:  r.skipped.Load(),
		InFlight: r.sf.InFlight(),
	}
}

// Close cancels running loads and waits for them to return.
// Close is safe to call multiple times.
func (r *Refresher[K, V]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.cancel()
	return r.g.Wait()
}

// run performs one load. Errors are logged, never returned: a failed load
// must not affect other keys, and whatever the cache holds is left alone.
func (r *Refresher[K, V]) run(k K) error {
	defer r.sf.Release(k)

	ctx := r.ctx
	if r.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opt.Timeout)
		defer cancel()
	}

	start := time.Now()
	v, err := r.load(ctx, k)
	if err != nil {
		r.log.LogAttrs(context.Background(), slog.LevelWarn, "load failed",
			slog.Any("key", k),
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(start)),
		)
		r.failures.Add(1)
		return nil
	}

	r.c.Insert(k, v)
	r.log.LogAttrs(context.Background(), slog.LevelDebug, "refreshed",
		slog.Any("key", k),
		slog.Duration("elapsed", time.Since(start)),
	)
	r.loads.Add(1)
	return nil
}
