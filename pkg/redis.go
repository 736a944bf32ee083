package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores JSON values under string keys with a fixed TTL.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, timeout: 5 * time.Second}
}

// Set stores a value in Redis with the cache TTL. The value is JSON-serialized.
func (r *RedisCache) Set(ctx context.Context, key string, value any) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

// Get retrieves a value from Redis and JSON-deserializes it into dest. A
// missing key is reported as found=false with no error.
func (r *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, key).Bytes()
	if IsRedisNil(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, json.Unmarshal(data, dest)
}

// Delete removes a key from Redis.
func (r *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.client.Del(ctx, key).Err()
}

// IsRedisNil returns true if the error is a redis key-not-found error.
func IsRedisNil(err error) bool {
	return errors.Is(err, redis.Nil)
}
