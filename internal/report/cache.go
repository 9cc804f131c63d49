package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps rendered report payloads in Redis so serve mode does not
// regenerate the dataset on every request. A nil Cache degrades to
// calling the loader directly.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client with a fixed TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key composes a cache key from the scenario seed and as-of date, the
// two inputs that fully determine a bundle.
func Key(kind string, seed int64, asOf time.Time) string {
	return fmt.Sprintf("report:%s:%d:%s", kind, seed, asOf.Format("2006-01-02"))
}

// FetchBytes returns the cached payload or populates it via loader.
func (c *Cache) FetchBytes(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if loader == nil {
		return nil, errors.New("report: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return payload, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}
	payload, err = loader(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return nil, err
	}
	return payload, nil
}

// Invalidate drops every cached payload for one seed.
func (c *Cache) Invalidate(ctx context.Context, seed int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, fmt.Sprintf("report:*:%d:*", seed), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
