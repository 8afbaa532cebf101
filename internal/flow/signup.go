package flow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nirvista/onboard/internal/authapi"
	"github.com/nirvista/onboard/internal/notification"
	"github.com/nirvista/onboard/internal/session"
)

// SignupMode selects which credentials the signup form collects.
type SignupMode string

const (
	ModeMobile SignupMode = "mobile"
	ModeEmail  SignupMode = "email"
)

// ParseSignupMode maps a form value to a mode, defaulting to mobile.
func ParseSignupMode(v string) SignupMode {
	if SignupMode(strings.ToLower(strings.TrimSpace(v))) == ModeEmail {
		return ModeEmail
	}
	return ModeMobile
}

// SignupForm is the data captured on the signup screen.
type SignupForm struct {
	Mode          SignupMode
	FullName      string
	ContactNumber string
	Email         string
	Password      string
	ReferralCode  string
	Agreed        bool
}

func (f SignupForm) validate() error {
	switch {
	case strings.TrimSpace(f.FullName) == "":
		return userError("Please enter your full name.")
	case f.Mode == ModeEmail && (strings.TrimSpace(f.Email) == "" || f.Password == ""):
		return userError("Please enter your email and password.")
	case f.Mode != ModeEmail && strings.TrimSpace(f.ContactNumber) == "":
		return userError("Please enter your contact number.")
	case !f.Agreed:
		return userError("Please accept the Terms of Service and Privacy Policy.")
	}
	return nil
}

// SignupService handles the signup step.
type SignupService struct {
	api        API
	workspaces *Workspaces
	notifier   notification.Notifier
	dialCode   string
	logger     *slog.Logger
}

// NewSignupService creates the signup step controller. dialCode is prefixed
// to contact numbers sent to the API.
func NewSignupService(api API, workspaces *Workspaces, notifier notification.Notifier, dialCode string, logger *slog.Logger) *SignupService {
	return &SignupService{api: api, workspaces: workspaces, notifier: notifier, dialCode: dialCode, logger: logger}
}

// Submit sends the signup to the API and returns the next step.
func (s *SignupService) Submit(ctx context.Context, sess *session.Client, form SignupForm) (Step, error) {
	if err := form.validate(); err != nil {
		return StepSignup, err
	}
	if form.Mode == ModeEmail {
		return s.submitEmail(ctx, sess, form)
	}
	return s.submitMobile(ctx, sess, form)
}

func (s *SignupService) submitMobile(ctx context.Context, sess *session.Client, form SignupForm) (Step, error) {
	contact := strings.TrimSpace(form.ContactNumber)
	resp, err := s.api.SignupMobileInit(ctx, authapi.MobileInitRequest{
		Name:         strings.TrimSpace(form.FullName),
		Mobile:       s.dialCode + contact,
		ReferralCode: form.ReferralCode,
	})
	if err != nil {
		s.logger.Warn("signup mobile-init failed", slog.String("session_id", sess.ID()), slog.Any("error", err))
		if errors.Is(err, authapi.ErrTransport) {
			return StepSignup, userError("Something went wrong")
		}
		return StepSignup, userError("Error sending OTP: " + authapi.Message(err, "Unknown error"))
	}
	if resp.UserID == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return StepSignup, userError("Error sending OTP: " + msg)
	}

	pending := session.PendingSignup{Mobile: contact, UserID: resp.UserID}
	if err := sess.SavePendingSignup(ctx, pending); err != nil {
		return StepSignup, err
	}
	s.workspaces.Get(sess.ID()).SetNav(NavState{Mobile: contact, UserID: resp.UserID, Channel: session.ChannelMobile})
	notify(ctx, s.notifier, s.logger, sess.ID(), notification.KindOTPSent, notification.LevelSuccess, "OTP sent to your mobile number!")
	return StepOTP, nil
}

func (s *SignupService) submitEmail(ctx context.Context, sess *session.Client, form SignupForm) (Step, error) {
	email := strings.TrimSpace(form.Email)
	resp, err := s.api.SignupEmail(ctx, authapi.EmailSignupRequest{
		Name:         strings.TrimSpace(form.FullName),
		Email:        email,
		Password:     form.Password,
		ReferralCode: form.ReferralCode,
	})
	if err != nil {
		s.logger.Warn("signup email failed", slog.String("session_id", sess.ID()), slog.Any("error", err))
		return StepSignup, upstreamError(err, "Signup failed", "Something went wrong")
	}

	switch {
	case resp.Token != "":
		if err := sess.SaveAuthToken(ctx, resp.Token); err != nil {
			return StepSignup, err
		}
		return StepPIN, nil
	case resp.UserID != "":
		pending := session.PendingSignup{Email: email, UserID: resp.UserID, Channel: session.ChannelEmail}
		if err := sess.SavePendingSignup(ctx, pending); err != nil {
			return StepSignup, err
		}
		s.workspaces.Get(sess.ID()).SetNav(NavState{Email: email, UserID: resp.UserID, Channel: session.ChannelEmail})
		notify(ctx, s.notifier, s.logger, sess.ID(), notification.KindOTPSent, notification.LevelSuccess, "OTP sent to your email address!")
		return StepOTP, nil
	default:
		msg := resp.Message
		if msg == "" {
			msg = "Signup failed"
		}
		return StepSignup, userError(msg)
	}
}
