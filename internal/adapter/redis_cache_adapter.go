package adapter

import (
	"context"
	"errors"
	"time"

	"quiz-pipeline/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCacheAdapter implements domain.Cache on top of go-redis.
type RedisCacheAdapter struct {
	client redis.Cmdable
}

// NewRedisCacheAdapter expects a connected client.
func NewRedisCacheAdapter(client redis.Cmdable) domain.Cache {
	return &RedisCacheAdapter{client: client}
}

// Get translates redis.Nil to domain.ErrCacheMiss.
func (r *RedisCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrCacheMiss
	}
	return val, err
}

func (r *RedisCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCacheAdapter) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisCacheAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// HGetAll returns ErrCacheMiss for a missing or empty hash.
func (r *RedisCacheAdapter) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	val, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}
	if len(val) == 0 {
		return nil, domain.ErrCacheMiss
	}
	return val, nil
}

func (r *RedisCacheAdapter) HSet(ctx context.Context, key string, field string, value string) error {
	return r.client.HSet(ctx, key, field, value).Err()
}

func (r *RedisCacheAdapter) HIncrBy(ctx context.Context, key string, field string, incr int64) (int64, error) {
	return r.client.HIncrBy(ctx, key, field, incr).Result()
}

func (r *RedisCacheAdapter) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return r.client.Expire(ctx, key, expiration).Err()
}
