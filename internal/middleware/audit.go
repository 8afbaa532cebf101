package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Audit emits one structured log line per request. Client errors (4xx from
// fiber.Error) are logged at warn, everything else that fails at error.
func Audit(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", routeOf(c)),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}
		if id := RequestIDFrom(c); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if sid := SessionID(c); sid != "" {
			attrs = append(attrs, slog.String("session_id", sid))
		}

		switch {
		case err == nil:
			logger.Info("request completed", attrs...)
		case status < fiber.StatusInternalServerError:
			attrs = append(attrs, slog.Any("error", err))
			logger.Warn("request completed", attrs...)
		default:
			attrs = append(attrs, slog.Any("error", err))
			logger.Error("request completed", attrs...)
		}
		return err
	}
}

// routeOf returns the matched route template, which keeps label and log
// cardinality bounded for paths like /kyc/documents/:type.
func routeOf(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" {
		return r.Path
	}
	return c.Path()
}
