package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nirvista/onboard/internal/authapi"
	"github.com/nirvista/onboard/internal/notification"
	"github.com/nirvista/onboard/internal/session"
)

// OTPLength is the number of digits in a signup code.
const OTPLength = 6

// Identity is who the OTP step is verifying.
type Identity struct {
	Mobile  string
	Email   string
	UserID  string
	Channel string
}

// Type is the verification channel sent to the API.
func (i Identity) Type() string {
	if i.Channel != "" {
		return i.Channel
	}
	return session.ChannelMobile
}

// Display is the destination shown on the OTP screen.
func (i Identity) Display(dialCode string) string {
	if i.Type() == session.ChannelEmail && i.Email != "" {
		return i.Email
	}
	return dialCode + " " + i.Mobile
}

// SanitizeOTP keeps at most OTPLength digits from raw.
func SanitizeOTP(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == OTPLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// OTPService handles the OTP verification step.
type OTPService struct {
	api        API
	workspaces *Workspaces
	notifier   notification.Notifier
	logger     *slog.Logger
}

// NewOTPService creates the OTP step controller.
func NewOTPService(api API, workspaces *Workspaces, notifier notification.Notifier, logger *slog.Logger) *OTPService {
	return &OTPService{api: api, workspaces: workspaces, notifier: notifier, logger: logger}
}

// Identity resolves the identity under verification from the navigation
// hand-off, field by field falling back to the persisted PendingSignup.
// Without a user id the step is unreachable and ErrMissingIdentity is
// returned.
func (s *OTPService) Identity(ctx context.Context, sess *session.Client) (Identity, error) {
	nav, _ := s.workspaces.Get(sess.ID()).Nav()
	pending, _, err := sess.PendingSignup(ctx)
	if err != nil {
		return Identity{}, err
	}
	id := Identity{
		Mobile:  firstNonEmpty(nav.Mobile, pending.Mobile),
		Email:   firstNonEmpty(nav.Email, pending.Email),
		UserID:  firstNonEmpty(nav.UserID, pending.UserID),
		Channel: firstNonEmpty(nav.Channel, pending.Channel),
	}
	if id.UserID == "" {
		return Identity{}, ErrMissingIdentity
	}
	return id, nil
}

// Verify submits the code. On success the token is stored, the signup
// hand-off is cleared and the PIN step follows.
func (s *OTPService) Verify(ctx context.Context, sess *session.Client, code string) (Step, error) {
	id, err := s.Identity(ctx, sess)
	if err != nil {
		return StepSignup, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return StepOTP, userError("Please enter the OTP")
	}
	if len(code) != OTPLength {
		return StepOTP, userError("OTP must be 6 digits.")
	}

	resp, err := s.api.VerifyOTP(ctx, authapi.VerifyOTPRequest{UserID: id.UserID, OTP: code, Type: id.Type()})
	if err != nil {
		s.logger.Warn("otp verify failed", slog.String("session_id", sess.ID()), slog.Any("error", err))
		return StepOTP, upstreamError(err, "OTP verification failed", "Something went wrong. Try again.")
	}

	if resp.Token != "" {
		if err := sess.SaveAuthToken(ctx, resp.Token); err != nil {
			return StepOTP, err
		}
	}
	if err := sess.ClearPendingSignup(ctx); err != nil {
		return StepOTP, err
	}
	s.workspaces.Get(sess.ID()).ClearNav()

	body := "Phone Verified Successfully!"
	if id.Type() == session.ChannelEmail {
		body = "Email Verified Successfully!"
	}
	notify(ctx, s.notifier, s.logger, sess.ID(), notification.KindPhoneVerified, notification.LevelSuccess, body)
	return StepPIN, nil
}

// Resend asks the API for a fresh code for the same identity.
func (s *OTPService) Resend(ctx context.Context, sess *session.Client) error {
	id, err := s.Identity(ctx, sess)
	if err != nil {
		return err
	}
	if _, err := s.api.ResendOTP(ctx, authapi.ResendOTPRequest{UserID: id.UserID, Type: id.Type()}); err != nil {
		s.logger.Warn("otp resend failed", slog.String("session_id", sess.ID()), slog.Any("error", err))
		return upstreamError(err, "Could not resend OTP.", "Could not resend OTP.")
	}
	notify(ctx, s.notifier, s.logger, sess.ID(), notification.KindOTPResent, notification.LevelInfo, "OTP resent.")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
