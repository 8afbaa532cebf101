package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nirvista/onboard/internal/web"
)

// guardFor returns the duplicate-submit guard of one form.
type guardFor func(scope string) fiber.Handler

// RegisterOTPRoutes wires OTP verification and resend. They use separate
// guard scopes so a resend never blocks a verify.
func RegisterOTPRoutes(app *fiber.App, h *web.Handler, guard guardFor, resendLimit fiber.Handler) {
	app.Get("/otp", h.OTPPage)
	app.Post("/otp", guard("otp-verify"), h.VerifyOTP)
	app.Post("/otp/resend", guard("otp-resend"), resendLimit, h.ResendOTP)
}

// RegisterPINRoutes wires the PIN screen behind the token guard.
func RegisterPINRoutes(app *fiber.App, h *web.Handler, guard guardFor, requireToken fiber.Handler) {
	app.Get("/pin", requireToken, h.PINPage)
	app.Post("/pin", requireToken, guard("pin"), h.SubmitPIN)
}

// RegisterKYCRoutes wires document upload, status and submission.
func RegisterKYCRoutes(app *fiber.App, h *web.Handler, guard guardFor, requireToken, requireTokenAPI fiber.Handler) {
	app.Get("/kyc/status", requireTokenAPI, h.KYCStatus)
	app.Get("/kyc/status/stream", requireTokenAPI, h.KYCStatusStream)
	app.Post("/kyc/documents/:type", requireToken, h.UploadDocument)
	app.Get("/kyc", requireToken, h.KYCPage)
	app.Post("/kyc", requireToken, guard("kyc-submit"), h.SubmitKYC)
}

// RegisterCompletionRoutes wires the final static screens.
func RegisterCompletionRoutes(app *fiber.App, h *web.Handler) {
	app.Get("/complete", h.CompletePage)
	app.Get("/success", h.SuccessPage)
}

// RegisterSignupRoutes wires signup on every remaining path so invite links
// like /ABC123 or /ref/ABC123 land on the form.
func RegisterSignupRoutes(app *fiber.App, h *web.Handler, guard guardFor) {
	app.Get("/*", h.SignupPage)
	app.Post("/*", guard("signup"), h.SubmitSignup)
}
