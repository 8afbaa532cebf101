package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const submitGuardPrefix = "submit:v1:"

// Locker reserves short-lived keys. Acquire reports false when the key is
// already held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisLocker holds reservations in Redis so they span every instance.
type RedisLocker struct {
	cache *redis.Client
}

// NewRedisLocker wraps cache.
func NewRedisLocker(cache *redis.Client) *RedisLocker {
	return &RedisLocker{cache: cache}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.cache.SetNX(ctx, key, "1", ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.cache.Del(ctx, key).Err()
}

// MemoryLocker is the single-instance Locker used without Redis.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewMemoryLocker creates an empty locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return false, nil
	}
	l.held[key] = now.Add(ttl)
	return true, nil
}

func (l *MemoryLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// SubmitGuard rejects a second POST for the same visitor and scope while
// the first is still being processed, the server-side counterpart of a
// disabled submit button. GET, HEAD and OPTIONS pass through. The
// reservation is released once the handler returns; ttl only bounds how
// long a crashed request can hold it.
func SubmitGuard(locker Locker, scope string, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		key := submitGuardPrefix + scope + ":" + SessionID(c)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		ok, err := locker.Acquire(ctx, key, ttl)
		if err != nil {
			logger.Error("submit guard reservation failed", slog.String("key", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "submit guard failure")
		}
		if !ok {
			return fiber.NewError(fiber.StatusConflict, "a submission is already in progress")
		}

		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := locker.Release(releaseCtx, key); err != nil {
				logger.Warn("submit guard release failed", slog.String("key", key), slog.Any("error", err))
			}
		}()
		return c.Next()
	}
}
