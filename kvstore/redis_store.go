package kvstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore implements Store on top of a Redis-compatible server.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "[RedisStore.Set] marshal value")
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.Wrapf(err, "[RedisStore.Set] SET %s", key)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "[RedisStore.Get] GET %s", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, errors.Wrapf(err, "[RedisStore.Get] unmarshal %s", key)
	}
	return true, nil
}

func (s *RedisStore) GetDel(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.GetDel(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "[RedisStore.GetDel] GETDEL %s", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, errors.Wrapf(err, "[RedisStore.GetDel] unmarshal %s", key)
	}
	return true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (bool, error) {
	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, errors.Wrapf(err, "[RedisStore.Delete] DEL %s", key)
	}
	return deleted > 0, nil
}
