package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionIDLocal = "session_id"

// SessionOptions configures the visitor session cookie.
type SessionOptions struct {
	Cookie string
	TTL    time.Duration
	Secure bool
}

// Session issues an anonymous visitor id in a cookie and exposes it to
// later handlers. The id scopes every piece of persisted client state.
// Cookies holding something other than a UUID are replaced.
func Session(opts SessionOptions) fiber.Handler {
	if opts.Cookie == "" {
		opts.Cookie = "onboard_sid"
	}
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(opts.Cookie)
		if _, err := uuid.Parse(sid); err != nil {
			sid = uuid.NewString()
		}
		c.Cookie(&fiber.Cookie{
			Name:     opts.Cookie,
			Value:    sid,
			Path:     "/",
			Expires:  time.Now().Add(opts.TTL),
			Secure:   opts.Secure,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		c.Locals(sessionIDLocal, sid)
		return c.Next()
	}
}

// SessionID returns the visitor id set by Session.
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(sessionIDLocal).(string)
	return sid
}
