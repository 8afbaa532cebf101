package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nirvista/onboard/internal/authapi"
	"github.com/nirvista/onboard/internal/logging"
	"github.com/nirvista/onboard/internal/notification"
	"github.com/nirvista/onboard/internal/session"
)

type harness struct {
	api        *fakeAPI
	store      session.Store
	sess       *session.Client
	workspaces *Workspaces
	notifier   notification.Notifier
}

func newHarness() *harness {
	ws := NewWorkspaces()
	store := session.NewMemoryStore()
	return &harness{
		api:        &fakeAPI{},
		store:      store,
		sess:       session.NewClient(store, "sid-1"),
		workspaces: ws,
		notifier:   notification.NewFlashNotifier(ws),
	}
}

func validMobileForm() SignupForm {
	return SignupForm{Mode: ModeMobile, FullName: "Jane Doe", ContactNumber: "9999999999", ReferralCode: "REF1", Agreed: true}
}

func TestSignupMobileStoresPendingAndNavigates(t *testing.T) {
	h := newHarness()
	h.api.mobileInitResp = authapi.MobileInitResponse{UserID: "abc"}
	svc := NewSignupService(h.api, h.workspaces, h.notifier, "+91", logging.Discard())
	ctx := context.Background()

	next, err := svc.Submit(ctx, h.sess, validMobileForm())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if next != StepOTP {
		t.Fatalf("expected otp step, got %s", next)
	}

	req := h.api.mobileInitReqs[0]
	if req.Mobile != "+919999999999" || req.Name != "Jane Doe" || req.ReferralCode != "REF1" {
		t.Fatalf("unexpected request %+v", req)
	}

	pending, ok, err := h.sess.PendingSignup(ctx)
	if err != nil || !ok {
		t.Fatalf("expected pending signup, ok=%v err=%v", ok, err)
	}
	if pending.Mobile != "9999999999" || pending.UserID != "abc" {
		t.Fatalf("unexpected pending %+v", pending)
	}

	nav, ok := h.workspaces.Get("sid-1").Nav()
	if !ok || nav.UserID != "abc" {
		t.Fatalf("expected nav state, got %+v", nav)
	}
	notices := h.workspaces.Get("sid-1").TakeNotices()
	if len(notices) != 1 || notices[0].Body != "OTP sent to your mobile number!" {
		t.Fatalf("unexpected notices %+v", notices)
	}
}

func TestSignupMobileFailures(t *testing.T) {
	cases := []struct {
		name string
		resp authapi.MobileInitResponse
		err  error
		want string
	}{
		{name: "no user id with message", resp: authapi.MobileInitResponse{Message: "Mobile already registered"}, want: "Error sending OTP: Mobile already registered"},
		{name: "no user id no message", want: "Error sending OTP: Unknown error"},
		{name: "rejected", err: &authapi.Error{Status: 400, Message: "Invalid mobile"}, want: "Error sending OTP: Invalid mobile"},
		{name: "transport", err: fmt.Errorf("%w: dial", authapi.ErrTransport), want: "Something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.api.mobileInitResp = tc.resp
			h.api.err = tc.err
			svc := NewSignupService(h.api, h.workspaces, h.notifier, "+91", logging.Discard())

			next, err := svc.Submit(context.Background(), h.sess, validMobileForm())
			if next != StepSignup {
				t.Fatalf("expected to stay on signup, got %s", next)
			}
			msg, ok := UserMessage(err)
			if !ok || msg != tc.want {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
			if _, ok, _ := h.sess.PendingSignup(context.Background()); ok {
				t.Fatal("pending signup must not be stored on failure")
			}
		})
	}
}

func TestSignupValidation(t *testing.T) {
	h := newHarness()
	svc := NewSignupService(h.api, h.workspaces, h.notifier, "+91", logging.Discard())

	forms := map[string]SignupForm{
		"missing name":    {Mode: ModeMobile, ContactNumber: "1", Agreed: true},
		"missing contact": {Mode: ModeMobile, FullName: "J", Agreed: true},
		"missing consent": {Mode: ModeMobile, FullName: "J", ContactNumber: "1"},
		"missing email":   {Mode: ModeEmail, FullName: "J", Password: "p", Agreed: true},
	}
	for name, form := range forms {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Submit(context.Background(), h.sess, form); err == nil {
				t.Fatal("expected validation error")
			} else if _, ok := UserMessage(err); !ok {
				t.Fatalf("expected user error, got %v", err)
			}
		})
	}
	if len(h.api.mobileInitReqs)+len(h.api.emailReqs) != 0 {
		t.Fatal("invalid forms must not reach the API")
	}
}

func TestSignupEmailWithToken(t *testing.T) {
	h := newHarness()
	h.api.emailResp = authapi.EmailSignupResponse{Token: "tok-1"}
	svc := NewSignupService(h.api, h.workspaces, h.notifier, "+91", logging.Discard())
	ctx := context.Background()

	next, err := svc.Submit(ctx, h.sess, SignupForm{Mode: ModeEmail, FullName: "Jane", Email: " jane@example.com ", Password: "secret", Agreed: true})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if next != StepPIN {
		t.Fatalf("expected pin step, got %s", next)
	}
	if h.api.emailReqs[0].Email != "jane@example.com" {
		t.Fatalf("expected trimmed email, got %q", h.api.emailReqs[0].Email)
	}
	token, ok, _ := h.sess.AuthToken(ctx)
	if !ok || token != "tok-1" {
		t.Fatalf("expected stored token, got %q", token)
	}
}

func TestSignupEmailNeedingOTP(t *testing.T) {
	h := newHarness()
	h.api.emailResp = authapi.EmailSignupResponse{UserID: "u-9"}
	svc := NewSignupService(h.api, h.workspaces, h.notifier, "+91", logging.Discard())
	ctx := context.Background()

	next, err := svc.Submit(ctx, h.sess, SignupForm{Mode: ModeEmail, FullName: "Jane", Email: "jane@example.com", Password: "secret", Agreed: true})
	if err != nil || next != StepOTP {
		t.Fatalf("expected otp step, got %s err=%v", next, err)
	}
	pending, ok, _ := h.sess.PendingSignup(ctx)
	if !ok || pending.Channel != session.ChannelEmail || pending.Email != "jane@example.com" {
		t.Fatalf("unexpected pending %+v", pending)
	}
}

func TestSignupStoreFailureIsInternal(t *testing.T) {
	h := newHarness()
	h.api.mobileInitResp = authapi.MobileInitResponse{UserID: "abc"}
	broken := session.NewClient(failingStore{}, "sid-1")
	svc := NewSignupService(h.api, h.workspaces, h.notifier, "+91", logging.Discard())

	_, err := svc.Submit(context.Background(), broken, validMobileForm())
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := UserMessage(err); ok {
		t.Fatal("store failures are not user errors")
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string, string) (string, error) {
	return "", errors.New("store down")
}
func (failingStore) Set(context.Context, string, string, string) error {
	return errors.New("store down")
}
func (failingStore) Delete(context.Context, string, string) error { return errors.New("store down") }
