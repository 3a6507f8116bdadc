package storage

import (
	"context"
	"errors"

	"github.com/lac-hong-legacy/learning_hub/shared"
	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	if r.client == nil {
		return "", false, ErrUnavailable
	}

	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *RedisBackend) SetItem(ctx context.Context, key, value string) error {
	if r.client == nil {
		return ErrUnavailable
	}
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *RedisBackend) RemoveItem(ctx context.Context, key string) error {
	if r.client == nil {
		return ErrUnavailable
	}
	return r.client.Del(ctx, key).Err()
}

func (r *RedisBackend) Name() string {
	return shared.StorageEngineRedis
}
