package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "onboard:v1:"

// RedisStore keeps visitor state in Redis with a sliding TTL per key.
type RedisStore struct {
	cache *redis.Client
	ttl   time.Duration
}

// NewRedisStore builds a Redis-backed store. A zero ttl keeps keys forever.
func NewRedisStore(cache *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: cache, ttl: ttl}
}

func redisKey(sessionID, key string) string {
	return redisKeyPrefix + sessionID + ":" + key
}

// Get returns the value for key and refreshes its TTL in the same command.
func (s *RedisStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	k := redisKey(sessionID, key)
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.cache.GetEx(ctx, k, s.ttl)
	} else {
		cmd = s.cache.Get(ctx, k)
	}
	value, err := cmd.Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, key, value string) error {
	return s.cache.Set(ctx, redisKey(sessionID, key), value, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	return s.cache.Del(ctx, redisKey(sessionID, key)).Err()
}
