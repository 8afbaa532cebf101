package flow

import (
	"context"
	"log/slog"

	"github.com/nirvista/onboard/internal/authapi"
	"github.com/nirvista/onboard/internal/notification"
	"github.com/nirvista/onboard/internal/session"
)

// RequireToken returns the visitor's auth token or ErrMissingToken.
func RequireToken(ctx context.Context, sess *session.Client) (string, error) {
	token, ok, err := sess.AuthToken(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrMissingToken
	}
	return token, nil
}

// PINService handles the PIN setup step.
type PINService struct {
	api      API
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewPINService creates the PIN step controller.
func NewPINService(api API, notifier notification.Notifier, logger *slog.Logger) *PINService {
	return &PINService{api: api, notifier: notifier, logger: logger}
}

// Submit stores the PIN held by pad.
func (s *PINService) Submit(ctx context.Context, sess *session.Client, token string, pad *PinPad) (Step, error) {
	if token == "" {
		return StepSignup, ErrMissingToken
	}
	if !pad.Complete() {
		return StepPIN, userError("PIN must be at least 4 digits.")
	}
	pin := pad.Value()

	if err := s.api.SetupPIN(ctx, token, authapi.PINSetupRequest{PIN: pin}); err != nil {
		s.logger.Warn("pin setup failed", slog.String("session_id", sess.ID()), slog.Any("error", err))
		return StepPIN, upstreamError(err, "Failed to save PIN.", "Could not save PIN.")
	}

	notify(ctx, s.notifier, s.logger, sess.ID(), notification.KindPINSaved, notification.LevelSuccess, "PIN saved. Redirecting to document upload...")
	return StepKYC, nil
}
