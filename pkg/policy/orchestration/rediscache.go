package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache is a ResultCache shared across orchestrator processes in a
// fleet, so an unchanged rule-set is not re-evaluated per process. It
// stores each AggregatedResult as JSON; the per-rule Rollback record (only
// meaningful while a batch is still live) does not round-trip to its
// concrete type on decode, which is fine here since a cached result is
// already a completed batch with nothing left to roll back.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing *redis.Client. keyPrefix namespaces this
// orchestrator's entries within a shared Redis instance; ttl is passed to
// every SET so Redis itself expires stale entries.
func NewRedisCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: keyPrefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (AggregatedResult, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return AggregatedResult{}, false, nil
	}
	if err != nil {
		return AggregatedResult{}, false, err
	}
	var result AggregatedResult
	if err := json.Unmarshal(data, &result); err != nil {
		return AggregatedResult{}, false, err
	}
	return result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, result AggregatedResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}
