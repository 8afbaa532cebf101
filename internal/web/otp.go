package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nirvista/onboard/internal/flow"
	"github.com/nirvista/onboard/internal/notification"
)

type otpPage struct {
	Page
	Destination string
	Code        string
	Length      int
}

// OTPPage renders the verification screen. Without a signup identity the
// visitor is sent back to signup.
func (h *Handler) OTPPage(c *fiber.Ctx) error {
	id, err := h.otp.Identity(c.UserContext(), h.session(c))
	if err != nil {
		return stepFailed(c, err, nil)
	}
	return c.Render("otp", otpPage{Page: h.page(c), Destination: id.Display(h.dialCode), Length: flow.OTPLength})
}

// VerifyOTP checks the submitted code.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	sess := h.session(c)
	code := flow.SanitizeOTP(c.FormValue("otp"))
	next, err := h.otp.Verify(c.UserContext(), sess, code)
	if err != nil {
		return stepFailed(c, err, func(msg string) error {
			id, idErr := h.otp.Identity(c.UserContext(), sess)
			if idErr != nil {
				return stepFailed(c, idErr, nil)
			}
			page := otpPage{Page: h.page(c), Destination: id.Display(h.dialCode), Code: code, Length: flow.OTPLength}
			page.Error = msg
			return c.Render("otp", page)
		})
	}
	return redirect(c, next)
}

// ResendOTP requests a fresh code and returns to the verification screen.
// Failures are shown as a notice there.
func (h *Handler) ResendOTP(c *fiber.Ctx) error {
	sess := h.session(c)
	err := h.otp.Resend(c.UserContext(), sess)
	if errors.Is(err, flow.ErrPrecondition) {
		return redirect(c, flow.StepSignup)
	}
	if msg, ok := flow.UserMessage(err); ok {
		h.workspaces.Push(sess.ID(), notification.Message{Kind: notification.KindOTPResent, Level: notification.LevelError, Destination: sess.ID(), Body: msg})
	} else if err != nil {
		return err
	}
	return redirect(c, flow.StepOTP)
}
