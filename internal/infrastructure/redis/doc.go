// Package redis provides the guarded cache store for Vitrine.
//
// The cache is an optional dependency: when no connection settings are
// provided, or when the configured server is unreachable, every operation
// degrades to its neutral default (Store no-ops, Fetch misses, Exists is
// false) instead of returning an error. Connection lifecycle, bounded
// retry, and demotion are owned by the gateway package; this package only
// binds the go-redis client to a guarded handle and exposes cache-shaped
// operations over it.
//
// Usage:
//
//	cache, err := redis.New(cfg.Redis, logger, metrics)
//	cache.Start(ctx)
//	defer cache.Close()
//
//	cache.Store(ctx, "k1", []byte(`{"a":1}`), 0)
//	value, ok := cache.Fetch(ctx, "k1")
package redis
