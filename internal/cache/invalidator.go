package cache

import (
	"context"
	"time"

	"github.com/Khadka1996/everestnews-server/pkg/logger"
)

// Invalidator removes cache entries after a successful store write. The
// write is the source of truth: invalidation failures are logged and
// never block or roll back anything, the affected entries simply stay
// stale until their TTL expires or the next invalidation succeeds.
type Invalidator struct {
	cache  *Client
	logger *logger.Logger
}

// NewInvalidator creates a write-invalidation coordinator.
func NewInvalidator(c *Client, log *logger.Logger) *Invalidator {
	return &Invalidator{
		cache:  c,
		logger: log.WithComponent("invalidator"),
	}
}

// Invalidate synchronously deletes the given keys and prefix scans.
// When it returns, the next read of any of these keys is a miss.
func (i *Invalidator) Invalidate(ctx context.Context, keys []string, prefixes []string) {
	if !i.cache.IsReady() {
		return
	}
	i.cache.DeleteKeys(ctx, keys...)
	for _, prefix := range prefixes {
		i.cache.DeleteByPrefix(ctx, prefix)
	}
}

// InvalidateAsync runs the invalidation on a detached goroutine so the
// caller can respond without waiting. The detached task carries its own
// deadline, not the request context, because the response may already
// be in flight when it runs.
func (i *Invalidator) InvalidateAsync(keys []string, prefixes []string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		i.Invalidate(ctx, keys, prefixes)
		i.logger.Debug("Background invalidation finished", "keys", len(keys), "prefixes", len(prefixes))
	}()
}
