// Package flow is the onboarding flow controller: it decides which step a
// visitor may see, validates each step's input, calls the remote API and
// records progress in the visitor's persisted and in-memory state.
package flow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nirvista/onboard/internal/authapi"
	"github.com/nirvista/onboard/internal/notification"
)

// Step is one onboarding screen.
type Step string

const (
	StepSignup   Step = "signup"
	StepOTP      Step = "otp"
	StepPIN      Step = "pin"
	StepKYC      Step = "kyc"
	StepComplete Step = "complete"
	StepSuccess  Step = "success"
)

// Path returns the URL path that renders the step.
func (s Step) Path() string {
	switch s {
	case StepOTP:
		return "/otp"
	case StepPIN:
		return "/pin"
	case StepKYC:
		return "/kyc"
	case StepComplete:
		return "/complete"
	case StepSuccess:
		return "/success"
	default:
		return "/"
	}
}

var (
	// ErrPrecondition means required visitor state is missing; the caller
	// should send the visitor back to signup without showing an error.
	ErrPrecondition = errors.New("flow: precondition failed")
	// ErrMissingToken is returned by steps that need an auth token.
	ErrMissingToken = wrapPrecondition("missing auth token")
	// ErrMissingIdentity is returned by OTP when no signup identity exists.
	ErrMissingIdentity = wrapPrecondition("missing signup identity")
)

type preconditionError struct{ reason string }

func (e preconditionError) Error() string { return "flow: " + e.reason }
func (e preconditionError) Unwrap() error { return ErrPrecondition }

func wrapPrecondition(reason string) error { return preconditionError{reason: reason} }

// UserError is a failure the visitor should read on the same screen.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

func userError(msg string) error { return &UserError{Message: msg} }

// UserMessage extracts the visitor-facing text from err, if any.
func UserMessage(err error) (string, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message, true
	}
	return "", false
}

// upstreamError turns an API failure into a UserError using the server
// message when present, rejected when the API answered without one, and
// transport when no answer arrived.
func upstreamError(err error, rejected, transport string) error {
	if errors.Is(err, authapi.ErrTransport) {
		return userError(transport)
	}
	return userError(authapi.Message(err, rejected))
}

// API is the subset of the remote auth/KYC API the flow uses.
type API interface {
	SignupMobileInit(ctx context.Context, req authapi.MobileInitRequest) (authapi.MobileInitResponse, error)
	SignupEmail(ctx context.Context, req authapi.EmailSignupRequest) (authapi.EmailSignupResponse, error)
	VerifyOTP(ctx context.Context, req authapi.VerifyOTPRequest) (authapi.VerifyOTPResponse, error)
	ResendOTP(ctx context.Context, req authapi.ResendOTPRequest) (authapi.MessageResponse, error)
	SetupPIN(ctx context.Context, token string, req authapi.PINSetupRequest) error
	UploadDocument(ctx context.Context, token string, doc authapi.Document) (authapi.UploadResponse, error)
	KYCStatus(ctx context.Context, token string) (authapi.KYCStatus, error)
	SubmitKYC(ctx context.Context, token string, sub authapi.KYCSubmission) error
}

// notify queues a notice for the visitor. Delivery failures are logged and
// never fail the step.
func notify(ctx context.Context, n notification.Notifier, logger *slog.Logger, sessionID, kind, level, body string) {
	if n == nil {
		return
	}
	err := n.Send(ctx, notification.Message{Kind: kind, Level: level, Destination: sessionID, Body: body})
	if err != nil {
		logger.Warn("notice delivery failed", slog.String("kind", kind), slog.Any("error", err))
	}
}
