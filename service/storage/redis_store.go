package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on go-redis. SADD's reply (count of newly
// added members) gives the atomic add-with-result the presence tracker
// needs; everything else is a direct mapping onto Redis primitives.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) SAdd(ctx context.Context, key, member string) (bool, error) {
	added, err := s.rdb.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, errors.Wrapf(err, "sadd %s", key)
	}
	return added == 1, nil
}

func (s *RedisStore) SRem(ctx context.Context, key, member string) error {
	if err := s.rdb.SRem(ctx, key, member).Err(); err != nil {
		return errors.Wrapf(err, "srem %s", key)
	}
	return nil
}

func (s *RedisStore) SCard(ctx context.Context, key string) (int64, error) {
	n, err := s.rdb.SCard(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "scard %s", key)
	}
	return n, nil
}

func (s *RedisStore) HSet(ctx context.Context, key, field, value string) error {
	if err := s.rdb.HSet(ctx, key, field, value).Err(); err != nil {
		return errors.Wrapf(err, "hset %s %s", key, field)
	}
	return nil
}

func (s *RedisStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	val, err := s.rdb.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "hget %s %s", key, field)
	}
	return val, true, nil
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "hgetall %s", key)
	}
	return m, nil
}

func (s *RedisStore) HDel(ctx context.Context, key, field string) error {
	if err := s.rdb.HDel(ctx, key, field).Err(); err != nil {
		return errors.Wrapf(err, "hdel %s %s", key, field)
	}
	return nil
}

func (s *RedisStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrapf(err, "setex %s", key)
	}
	return nil
}
