package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps the values of each key in a Redis set, which gives
// duplicate suppression and atomic saves for free
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Prefix is prepended to all keys
	Prefix string
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Prefix: "exampledb:",
	}
}

// NewRedisBackendWithConfig connects to Redis and verifies the connection
func NewRedisBackendWithConfig(config RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", config.Addr, err)
	}

	return NewRedisBackendWithClient(client, config.Prefix), nil
}

// NewRedisBackendWithClient creates a backend over an existing client
func NewRedisBackendWithClient(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: prefix,
	}
}

// Save adds value to the set stored under key
func (r *RedisBackend) Save(ctx context.Context, key, value string) error {
	if err := r.client.SAdd(ctx, r.prefix+key, value).Err(); err != nil {
		return fmt.Errorf("redis save error: %w", err)
	}
	return nil
}

// Fetch returns the members of the set stored under key
func (r *RedisBackend) Fetch(ctx context.Context, key string) ([]string, error) {
	values, err := r.client.SMembers(ctx, r.prefix+key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis fetch error: %w", err)
	}
	return values, nil
}

// Close closes the Redis connection
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
