// Package web holds the HTTP handlers and page templates of the onboarding
// screens.
package web

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nirvista/onboard/internal/flow"
	"github.com/nirvista/onboard/internal/metrics"
	"github.com/nirvista/onboard/internal/middleware"
	"github.com/nirvista/onboard/internal/notification"
	"github.com/nirvista/onboard/internal/session"
)

// Links are the destinations offered on the completion screen.
type Links struct {
	AppDownloadURL string
	PortalURL      string
}

// Deps aggregates what the handlers need.
type Deps struct {
	Store        session.Store
	Workspaces   *flow.Workspaces
	Signup       *flow.SignupService
	OTP          *flow.OTPService
	PIN          *flow.PINService
	KYC          *flow.KYCService
	Poller       *flow.StatusPoller
	Links        Links
	DialCode     string
	StreamMaxAge time.Duration
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	// Context bounds long-lived responses; cancelling it ends open status
	// streams.
	Context context.Context
}

// Handler serves every onboarding screen.
type Handler struct {
	store        session.Store
	workspaces   *flow.Workspaces
	signup       *flow.SignupService
	otp          *flow.OTPService
	pin          *flow.PINService
	kyc          *flow.KYCService
	poller       *flow.StatusPoller
	links        Links
	dialCode     string
	streamMaxAge time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
	base         context.Context
}

// NewHandler builds the screen handlers.
func NewHandler(d Deps) *Handler {
	if d.StreamMaxAge <= 0 {
		d.StreamMaxAge = 10 * time.Minute
	}
	if d.Context == nil {
		d.Context = context.Background()
	}
	return &Handler{
		store:        d.Store,
		workspaces:   d.Workspaces,
		signup:       d.Signup,
		otp:          d.OTP,
		pin:          d.PIN,
		kyc:          d.KYC,
		poller:       d.Poller,
		links:        d.Links,
		dialCode:     d.DialCode,
		streamMaxAge: d.StreamMaxAge,
		metrics:      d.Metrics,
		logger:       d.Logger,
		base:         d.Context,
	}
}

// Page is embedded by every page model.
type Page struct {
	Notices []notification.Message
	Error   string
}

func (h *Handler) session(c *fiber.Ctx) *session.Client {
	return session.NewClient(h.store, middleware.SessionID(c))
}

func (h *Handler) page(c *fiber.Ctx) Page {
	return Page{Notices: h.workspaces.Get(middleware.SessionID(c)).TakeNotices()}
}

func redirect(c *fiber.Ctx, step flow.Step) error {
	return c.Redirect(step.Path(), fiber.StatusSeeOther)
}

// stepFailed maps a flow error to a response. Missing state sends the
// visitor to signup; user errors re-render via rerender with 422; anything
// else goes to the error handler.
func stepFailed(c *fiber.Ctx, err error, rerender func(msg string) error) error {
	if errors.Is(err, flow.ErrPrecondition) {
		return redirect(c, flow.StepSignup)
	}
	if msg, ok := flow.UserMessage(err); ok {
		if rerender == nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, msg)
		}
		c.Status(fiber.StatusUnprocessableEntity)
		return rerender(msg)
	}
	return err
}
