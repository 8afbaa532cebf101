package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	pathMobileInit  = "/api/auth/signup/mobile-init"
	pathEmailSignup = "/api/auth/signup/email"
	pathVerifyOTP   = "/api/auth/signup/verify"
	pathResendOTP   = "/api/auth/signup/resend-otp"
	pathPINSetup    = "/api/auth/pin/setup"
	pathKYCUpload   = "/api/kyc/upload"
	pathKYCStatus   = "/api/kyc/status"
	pathKYCSubmit   = "/api/kyc/submit"
)

// Upstream call outcomes reported to the observer.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
)

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Observe, when set, is called once per request with the endpoint path
	// and one of the Outcome constants.
	Observe func(endpoint, outcome string)
}

// Client calls the remote auth/KYC API.
type Client struct {
	baseURL string
	timeout time.Duration
	observe func(endpoint, outcome string)
}

// New builds an API client.
func New(opts Options) *Client {
	observe := opts.Observe
	if observe == nil {
		observe = func(string, string) {}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{baseURL: opts.BaseURL, timeout: timeout, observe: observe}
}

// SignupMobileInit starts a mobile signup. Callers decide success by the
// presence of UserID.
func (c *Client) SignupMobileInit(ctx context.Context, req MobileInitRequest) (MobileInitResponse, error) {
	var out MobileInitResponse
	err := c.do(ctx, pathMobileInit, fiber.Post(c.baseURL+pathMobileInit).JSON(req), "", &out)
	return out, err
}

// SignupEmail registers with email and password.
func (c *Client) SignupEmail(ctx context.Context, req EmailSignupRequest) (EmailSignupResponse, error) {
	var out EmailSignupResponse
	err := c.do(ctx, pathEmailSignup, fiber.Post(c.baseURL+pathEmailSignup).JSON(req), "", &out)
	return out, err
}

// VerifyOTP confirms a signup code.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (VerifyOTPResponse, error) {
	var out VerifyOTPResponse
	err := c.do(ctx, pathVerifyOTP, fiber.Post(c.baseURL+pathVerifyOTP).JSON(req), "", &out)
	return out, err
}

// ResendOTP requests a fresh signup code.
func (c *Client) ResendOTP(ctx context.Context, req ResendOTPRequest) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, pathResendOTP, fiber.Post(c.baseURL+pathResendOTP).JSON(req), "", &out)
	return out, err
}

// SetupPIN stores the user's PIN.
func (c *Client) SetupPIN(ctx context.Context, token string, req PINSetupRequest) error {
	var out MessageResponse
	return c.do(ctx, pathPINSetup, fiber.Post(c.baseURL+pathPINSetup).JSON(req), token, &out)
}

// UploadDocument sends one KYC file as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, token string, doc Document) (UploadResponse, error) {
	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("documentType", doc.Type)

	agent := fiber.Post(c.baseURL + pathKYCUpload).
		FileData(&fiber.FormFile{Fieldname: "document", Name: doc.FileName, Content: doc.Content}).
		MultipartForm(args)

	var out UploadResponse
	err := c.do(ctx, pathKYCUpload, agent, token, &out)
	return out, err
}

// KYCStatus fetches the current review state.
func (c *Client) KYCStatus(ctx context.Context, token string) (KYCStatus, error) {
	var out KYCStatus
	err := c.do(ctx, pathKYCStatus, fiber.Get(c.baseURL+pathKYCStatus), token, &out)
	return out, err
}

// SubmitKYC finalises KYC.
func (c *Client) SubmitKYC(ctx context.Context, token string, sub KYCSubmission) error {
	var out MessageResponse
	return c.do(ctx, pathKYCSubmit, fiber.Post(c.baseURL+pathKYCSubmit).JSON(sub), token, &out)
}

// do sends the prepared agent and decodes the JSON body into out. Non-2xx
// answers become *Error carrying the body's message field.
func (c *Client) do(ctx context.Context, endpoint string, agent *fiber.Agent, token string, out any) error {
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		c.observe(endpoint, OutcomeTransport)
		return fmt.Errorf("%w: %s: %v", ErrTransport, endpoint, err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	agent.Timeout(timeout)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		c.observe(endpoint, OutcomeTransport)
		return fmt.Errorf("%w: %s: %v", ErrTransport, endpoint, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		c.observe(endpoint, OutcomeTransport)
		return fmt.Errorf("%w: %s: %v", ErrTransport, endpoint, errors.Join(errs...))
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		var failure MessageResponse
		_ = json.Unmarshal(body, &failure)
		c.observe(endpoint, OutcomeRejected)
		return &Error{Endpoint: endpoint, Status: code, Message: failure.Message}
	}

	if len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			c.observe(endpoint, OutcomeTransport)
			return fmt.Errorf("%w: decode %s response: %v", ErrTransport, endpoint, err)
		}
	}
	c.observe(endpoint, OutcomeOK)
	return nil
}
