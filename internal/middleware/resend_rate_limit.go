package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ResendRateLimit limits OTP resend requests per visitor session using
// Redis if available.
func ResendRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 3
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		who := SessionID(c)
		if who == "" {
			who = c.IP()
		}
		key := "rl:otp-resend:" + who
		// The window is created with its TTL before counting, so a counter
		// never outlives its minute.
		var incr *redis.IntCmd
		_, err := cache.TxPipelined(c.UserContext(), func(pipe redis.Pipeliner) error {
			pipe.SetNX(c.UserContext(), key, 0, time.Minute)
			incr = pipe.Incr(c.UserContext(), key)
			return nil
		})
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		cnt := incr.Val()
		if cnt > int64(maxPerMin) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many OTP resend attempts, try again later")
		}
		return c.Next()
	}
}
