package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/nirvista/onboard/internal/session"
)

const authTokenLocal = "auth_token"

// RequireToken guards screens that need a stored auth token. Visitors
// without one are sent back to signup with a 303 before anything renders.
func RequireToken(store session.Store, logger *slog.Logger) fiber.Handler {
	return requireToken(store, logger, func(c *fiber.Ctx) error {
		return c.Redirect("/", fiber.StatusSeeOther)
	})
}

// RequireTokenAPI is RequireToken for JSON and event-stream endpoints,
// which answer 401 instead of redirecting.
func RequireTokenAPI(store session.Store, logger *slog.Logger) fiber.Handler {
	return requireToken(store, logger, func(*fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "missing auth token")
	})
}

func requireToken(store session.Store, logger *slog.Logger, missing fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.NewClient(store, SessionID(c))
		token, ok, err := sess.AuthToken(c.UserContext())
		if err != nil {
			logger.Error("auth token lookup failed", slog.String("session_id", sess.ID()), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "session store failure")
		}
		if !ok {
			return missing(c)
		}
		c.Locals(authTokenLocal, token)
		return c.Next()
	}
}

// AuthToken returns the token stored in the request by RequireToken.
func AuthToken(c *fiber.Ctx) string {
	token, _ := c.Locals(authTokenLocal).(string)
	return token
}
