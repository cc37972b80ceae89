package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evcharge/internal/models"
)

// MetricsCache keeps short-lived metric snapshots in redis so repeated
// dashboard polls skip the aggregate query.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMetricsCache returns redis-backed cache.
func NewMetricsCache(client *redis.Client, ttl time.Duration) *MetricsCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MetricsCache{client: client, ttl: ttl}
}

func (c *MetricsCache) key(filterKey string) string {
	return fmt.Sprintf("metrics:stations:%s", filterKey)
}

// Get returns a cached snapshot, or (nil, nil) on miss.
func (c *MetricsCache) Get(ctx context.Context, key string) (*models.Metrics, error) {
	result, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var metrics models.Metrics
	if err := json.Unmarshal([]byte(result), &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// Set caches a snapshot with the configured TTL.
func (c *MetricsCache) Set(ctx context.Context, key string, metrics *models.Metrics) error {
	data, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}
