package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vitrinedev/vitrine-core/internal/gateway"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/config"
	"github.com/vitrinedev/vitrine-core/internal/infrastructure/logging"
)

// dependencyName identifies the cache in logs, metrics, and health output.
const dependencyName = "redis"

// dialTimeout bounds the TCP dial within each connection attempt.
const dialTimeout = 5 * time.Second

// Cache is the guarded cache store.
//
// All operations are total over the handle's state: they return neutral
// defaults while the dependency is unconfigured, still connecting past the
// bounded wait, or unavailable.
//
// Thread Safety: safe for concurrent use; the underlying go-redis client
// multiplexes its own connection pool.
type Cache struct {
	handle     *gateway.Handle[*goredis.Client]
	logger     *logging.Logger
	defaultTTL time.Duration
}

// New creates the guarded cache from configuration.
//
// The connection descriptor is resolved from cfg.URL first, falling back to
// the discrete host/port/credential fields. Neither being set yields an
// unconfigured (permanently no-op) cache.
func New(cfg config.RedisConfig, logger *logging.Logger, metrics *gateway.Metrics) (*Cache, error) {
	desc := gateway.Parse(cfg.URL, cfg.Port)
	if desc == nil {
		desc = gateway.FromParts(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}

	log := logger.With("component", "cache")
	if desc != nil && desc.Opaque() {
		log.Warn("cache connection string is not URL-shaped, passing through verbatim",
			"target", desc.Redacted(),
		)
	}

	handle, err := gateway.New(gateway.Options[*goredis.Client]{
		Name:       dependencyName,
		Descriptor: desc,
		Connect:    connect,
		Close: func(client *goredis.Client) {
			client.Close() //nolint:errcheck // shutdown path
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}

	return &Cache{
		handle:     handle,
		logger:     log,
		defaultTTL: time.Duration(cfg.DefaultTTL) * time.Second,
	}, nil
}

// connect dials Redis and verifies the connection with a ping.
//
// Client-side retries are disabled: the gateway owns the retry policy, and
// after demotion operations must fail fast rather than buffer.
func connect(ctx context.Context, desc *gateway.Descriptor) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        desc.Target(),
		Username:    desc.Username,
		Password:    desc.Password,
		DialTimeout: dialTimeout,
		MaxRetries:  -1,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // failed attempt cleanup
		return nil, err
	}
	return client, nil
}

// Start launches the bounded connection loop. Never blocks.
func (c *Cache) Start(ctx context.Context) {
	c.handle.Start(ctx)
}

// Close releases the client if one was established.
func (c *Cache) Close() {
	c.handle.Close()
}

// Reporter exposes the handle's state for health aggregation.
func (c *Cache) Reporter() gateway.Reporter {
	return c.handle
}

// OnTransition registers an observer for cache state transitions.
func (c *Cache) OnTransition(fn gateway.TransitionFunc) {
	c.handle.OnTransition(fn)
}

// Store writes a value under key with the given TTL (zero uses the
// configured default TTL; negative means no expiry).
//
// Returns true when the value reached a live cache, false when the
// operation no-opped because the cache is degraded. Degraded stores are
// not errors.
func (c *Cache) Store(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	client, ok := c.handle.Use(ctx)
	if !ok {
		return false
	}

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	if ttl < 0 {
		ttl = 0 // go-redis: zero expiration means no expiry
	}

	if err := client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.handle.Demote(err)
		return false
	}
	return true
}

// Fetch reads the value under key. A degraded cache and a missing key are
// both reported as a plain miss.
func (c *Cache) Fetch(ctx context.Context, key string) ([]byte, bool) {
	client, ok := c.handle.Use(ctx)
	if !ok {
		return nil, false
	}

	value, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.handle.Demote(err)
		}
		return nil, false
	}
	return value, true
}

// Delete removes the value under key. Returns true when a live cache
// acknowledged the delete (whether or not the key existed).
func (c *Cache) Delete(ctx context.Context, key string) bool {
	client, ok := c.handle.Use(ctx)
	if !ok {
		return false
	}

	if err := client.Del(ctx, key).Err(); err != nil {
		c.handle.Demote(err)
		return false
	}
	return true
}

// Exists reports whether key is present. Degraded caches report false.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	client, ok := c.handle.Use(ctx)
	if !ok {
		return false
	}

	n, err := client.Exists(ctx, key).Result()
	if err != nil {
		c.handle.Demote(err)
		return false
	}
	return n > 0
}
