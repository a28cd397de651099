package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Khadka1996/everestnews-server/pkg/logger"
	"github.com/Khadka1996/everestnews-server/pkg/response"
)

// Payload is the cached wire shape of a read: the serialized data, the
// pagination block for listings, and the moment the entry was produced
// (epoch milliseconds). Entries are always replaced wholesale.
type Payload struct {
	Data       json.RawMessage      `json:"data"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	CacheTime  int64                `json:"cacheTime"`
}

// ReadThrough wraps parameterized store reads with cache-aside
// semantics. A cache outage degrades every call to the store query and
// never produces an error by itself.
type ReadThrough struct {
	cache  *Client
	logger *logger.Logger
	now    func() time.Time
}

// NewReadThrough creates a read-through accessor over the cache client.
func NewReadThrough(c *Client, log *logger.Logger) *ReadThrough {
	return &ReadThrough{
		cache:  c,
		logger: log.WithComponent("read-through"),
		now:    time.Now,
	}
}

// Fetch returns the payload under key, consulting the cache first.
//
// maxAge adds a staleness rule on top of the TTL: a hit older than
// maxAge is treated as a miss, forcing a refresh well before the entry
// expires. It applies to the first page of the default listing and to
// the trending list; pass 0 to accept any hit within the TTL.
//
// On a miss the query runs against the store, the result is stamped
// with the current time, written back under key with the TTL, and
// returned. Store errors propagate; cache errors never do.
func (r *ReadThrough) Fetch(
	ctx context.Context,
	key string,
	ttl time.Duration,
	maxAge time.Duration,
	query func(ctx context.Context) (*Payload, error),
) (*Payload, bool, error) {
	if raw, ok := r.cache.Get(ctx, key); ok {
		var cached Payload
		if err := json.Unmarshal(raw, &cached); err != nil {
			r.logger.Warn("Discarding undecodable cache entry", "key", key, "error", err)
		} else if maxAge <= 0 || r.age(cached.CacheTime) < maxAge {
			return &cached, true, nil
		}
	}

	payload, err := query(ctx)
	if err != nil {
		return nil, false, err
	}
	payload.CacheTime = r.now().UnixMilli()

	if raw, err := json.Marshal(payload); err != nil {
		r.logger.Warn("Failed to encode cache entry", "key", key, "error", err)
	} else {
		r.cache.SetWithTTL(ctx, key, raw, ttl)
	}

	return payload, false, nil
}

func (r *ReadThrough) age(cacheTime int64) time.Duration {
	return time.Duration(r.now().UnixMilli()-cacheTime) * time.Millisecond
}

// NewPayload marshals data into a cacheable payload.
func NewPayload(data interface{}, pagination *response.Pagination) (*Payload, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Payload{Data: raw, Pagination: pagination}, nil
}
