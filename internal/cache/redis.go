package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"bigleague/stats/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// RedisCache stores JSON documents and short leases in Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings Redis
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr(), err)
	}

	return &RedisCache{client: client}, nil
}

// GetJSON decodes the value at key into dest. It reports false on a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	start := time.Now()
	b, err := c.client.Get(ctx, key).Bytes()
	metrics.RecordCacheOperation("get", time.Since(start).Seconds())

	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := json.Unmarshal(b, dest); err != nil {
		// A value we can't decode is as good as absent
		metrics.RecordCacheMiss()
		return false, nil
	}
	metrics.RecordCacheHit()
	return true, nil
}

// SetJSON stores v at key for ttl
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	start := time.Now()
	err = c.client.Set(ctx, key, b, ttl).Err()
	metrics.RecordCacheOperation("set", time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Acquire takes the lease at key for ttl if nobody holds it
func (c *RedisCache) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	metrics.RecordCacheOperation("setnx", time.Since(start).Seconds())
	if err != nil {
		return false, fmt.Errorf("failed to acquire %s: %w", key, err)
	}
	return ok, nil
}

// Ping checks the connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
