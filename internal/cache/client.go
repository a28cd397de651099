package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Khadka1996/everestnews-server/internal/config"
	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

// Client wraps the Redis connection used as the side cache. Every
// operation is best-effort: a cache outage degrades reads to store-only
// and is never surfaced to callers. Readiness is tracked explicitly and
// consulted before every operation.
type Client struct {
	rdb    *redis.Client
	ready  atomic.Bool
	stop   chan struct{}
	logger *logger.Logger
}

// NewClient connects to Redis with a bounded connect timeout. A failed
// initial ping does not fail startup: the client starts not-ready and a
// background health loop keeps probing.
func NewClient(cfg config.RedisConfig, log *logger.Logger) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.ConnectTimeout,
	})

	c := &Client{
		rdb:    rdb,
		stop:   make(chan struct{}),
		logger: log.WithComponent("cache"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.logger.Warn("Cache store unreachable, running store-only", "addr", cfg.Addr, "error", err)
	} else {
		c.ready.Store(true)
		c.logger.Info("Connected to cache store", "addr", cfg.Addr)
	}

	interval := cfg.HealthInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	go c.healthLoop(interval)

	return c
}

// NewClientFromRedis wraps an existing connection. Used in tests.
func NewClientFromRedis(rdb *redis.Client, log *logger.Logger) *Client {
	c := &Client{
		rdb:    rdb,
		stop:   make(chan struct{}),
		logger: log.WithComponent("cache"),
	}
	c.ready.Store(true)
	return c
}

func (c *Client) healthLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			err := c.rdb.Ping(ctx).Err()
			cancel()

			was := c.ready.Swap(err == nil)
			if err != nil && was {
				c.logger.Warn("Cache store became unreachable", "error", err)
			} else if err == nil && !was {
				c.logger.Info("Cache store connection restored")
			}
		case <-c.stop:
			return
		}
	}
}

// IsReady reports current connection health.
func (c *Client) IsReady() bool {
	return c.ready.Load()
}

// Get returns the cached value for key. Any error, including a missing
// key or an unreachable store, is reported as a miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.ready.Load() {
		return nil, false
	}

	val, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.ready.Store(false)
		c.logger.Warn("Cache get failed", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// SetWithTTL writes a value under key with the given TTL. Failures are
// logged and otherwise ignored.
func (c *Client) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if !c.ready.Load() {
		return
	}

	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		c.ready.Store(false)
		c.logger.Warn("Cache set failed", "key", key, "error", err)
	}
}

// DeleteKeys removes the given keys. Deleting an absent key is a no-op,
// so invalidation is idempotent.
func (c *Client) DeleteKeys(ctx context.Context, keys ...string) {
	if len(keys) == 0 || !c.ready.Load() {
		return
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.ready.Store(false)
		c.logger.Warn("Cache delete failed", "keys", len(keys), "error", err)
	}
}

// DeleteByPrefix removes every key starting with prefix using SCAN, so
// the store is never blocked by a KEYS call.
func (c *Client) DeleteByPrefix(ctx context.Context, prefix string) {
	if !c.ready.Load() {
		return
	}

	var batch []string
	iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= 100 {
			c.DeleteKeys(ctx, batch...)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		c.ready.Store(false)
		c.logger.Warn("Cache prefix scan failed", "prefix", prefix, "error", err)
		return
	}
	c.DeleteKeys(ctx, batch...)
}

// Close stops the health loop and closes the connection.
func (c *Client) Close() error {
	close(c.stop)
	return c.rdb.Close()
}
