package notification

import (
	"context"
	"log/slog"
)

// Kinds of onboarding notices.
const (
	KindOTPSent       = "otp_sent"
	KindOTPResent     = "otp_resent"
	KindPhoneVerified = "phone_verified"
	KindPINSaved      = "pin_saved"
	KindKYCSubmitted  = "kyc_submitted"
)

// Levels drive how a notice is rendered.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Message describes a notice for a visitor. Destination is the visitor
// session id.
type Message struct {
	Kind        string
	Level       string
	Destination string
	Body        string
}

// Notifier delivers notices.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// Inbox holds notices until the visitor's next rendered screen.
type Inbox interface {
	Push(sessionID string, message Message)
}

// FlashNotifier queues notices for display on the next page.
type FlashNotifier struct {
	inbox Inbox
}

// NewFlashNotifier builds a notifier that writes to inbox.
func NewFlashNotifier(inbox Inbox) *FlashNotifier {
	return &FlashNotifier{inbox: inbox}
}

// Send queues the message for its destination session.
func (n *FlashNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.inbox == nil || message.Destination == "" {
		return nil
	}
	n.inbox.Push(message.Destination, message)
	return nil
}

// LoggerNotifier writes notices to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message kind and level; the body may echo user data so it
// is left out.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "level", message.Level, "session_id", message.Destination)
	return nil
}

// Multi fans a message out to several notifiers and returns the first error.
type Multi []Notifier

// Send delivers to every notifier.
func (m Multi) Send(ctx context.Context, message Message) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
