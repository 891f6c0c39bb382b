// FilePath: internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buzzpulse/core/internal/config"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// HeatCache is a short-TTL redis cache for heat query responses. The heat
// endpoint is the hot path (every map pan refetches it) and the underlying
// query fans out across two databases; a few seconds of staleness is
// invisible on a decaying heat map.
type HeatCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHeatCache(cfg config.RedisConfig, ttl time.Duration) (*HeatCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &HeatCache{client: client, ttl: ttl}, nil
}

// Key builds a cache key from the normalized query parameters. Debug
// queries carry cell ids and must never share entries with public ones.
func Key(bbox string, min, window, debug int) string {
	return fmt.Sprintf("heat:%s:%d:%d:%d", bbox, min, window, debug)
}

// Get loads a cached response into dest. The second return is false on a
// miss; redis errors degrade to a miss with a warning.
func (c *HeatCache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			nuts.L.Warnf("[HeatCache] Get failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		nuts.L.Warnf("[HeatCache] Corrupt entry for %s: %v", key, err)
		return false
	}
	return true
}

// Set stores a response under key for the configured TTL. Failures are
// logged and swallowed; the cache is an accelerator, not a dependency.
func (c *HeatCache) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		nuts.L.Warnf("[HeatCache] Marshal failed for %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		nuts.L.Warnf("[HeatCache] Set failed for %s: %v", key, err)
	}
}

func (c *HeatCache) Close() error {
	return c.client.Close()
}
