package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"postboard/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	PostKeyPrefix  = "post:"
	PostsCountKey  = "posts:count"
	PostTTL        = 30 * time.Minute
	PostsCountTTL  = time.Minute
	lookupHit      = "hit"
	lookupMiss     = "miss"
	lookupError    = "error"
	lookupDisabled = "disabled"
)

// PostKey returns the cache key of a single post.
func PostKey(postID string) string {
	return PostKeyPrefix + postID
}

// Cache is a JSON cache-aside layer over Redis. A nil Cache, or one without
// a client, passes every lookup straight through to the loader.
type Cache struct {
	client *redis.Client
}

// New wraps client. client may be nil.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Aside reads key into dest, or calls fetch to fill dest and stores the result for ttl.
// Redis failures degrade to fetch; fetch errors are returned unchanged and not cached.
func (c *Cache) Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if !c.enabled() {
		observability.CacheLookups.WithLabelValues(lookupDisabled).Inc()
		return fetch()
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(lookupHit).Inc()
			return nil
		}
		observability.CacheLookups.WithLabelValues(lookupError).Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues(lookupMiss).Inc()
	default:
		observability.CacheLookups.WithLabelValues(lookupError).Inc()
		observability.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		observability.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate removes keys. Failures are logged and otherwise ignored.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		observability.Logger.WarnContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
	}
}
