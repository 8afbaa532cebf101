package web

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/nirvista/onboard/internal/flow"
)

type signupPage struct {
	Page
	Mode           flow.SignupMode
	FullName       string
	ContactNumber  string
	Email          string
	ReferralCode   string
	ReferralLocked bool
	Agreed         bool
	DialCode       string
	SwitchURL      string
}

// requestQuery keeps every well-formed pair; malformed ones are skipped.
func requestQuery(c *fiber.Ctx) url.Values {
	q, _ := url.ParseQuery(string(c.Request().URI().QueryString()))
	return q
}

// switchModeURL links to the same address with the other signup mode so
// a referral carried in the path or query survives the switch.
func switchModeURL(c *fiber.Ctx, mode flow.SignupMode, q url.Values) string {
	next := url.Values{}
	for k, v := range q {
		next[k] = v
	}
	other := flow.ModeEmail
	if mode == flow.ModeEmail {
		other = flow.ModeMobile
	}
	next.Set("mode", string(other))
	return c.Path() + "?" + next.Encode()
}

// SignupPage renders the signup form for any path not claimed by another
// screen; the path and query may carry a referral code.
func (h *Handler) SignupPage(c *fiber.Ctx) error {
	q := requestQuery(c)
	ref := flow.ResolveReferral(c.Path(), q)
	mode := flow.ParseSignupMode(q.Get("mode"))
	return c.Render("signup", signupPage{
		Page:           h.page(c),
		Mode:           mode,
		ReferralCode:   ref.Code,
		ReferralLocked: ref.Locked,
		DialCode:       h.dialCode,
		SwitchURL:      switchModeURL(c, mode, q),
	})
}

// SubmitSignup handles the signup form. A referral resolved from the URL wins
// over whatever the form carries.
func (h *Handler) SubmitSignup(c *fiber.Ctx) error {
	q := requestQuery(c)
	ref := flow.ResolveReferral(c.Path(), q)
	form := flow.SignupForm{
		Mode:          flow.ParseSignupMode(c.FormValue("mode", q.Get("mode"))),
		FullName:      c.FormValue("fullName"),
		ContactNumber: c.FormValue("contactNumber"),
		Email:         c.FormValue("email"),
		Password:      c.FormValue("password"),
		ReferralCode:  c.FormValue("referralCode"),
		Agreed:        c.FormValue("agree") != "",
	}
	if ref.Locked {
		form.ReferralCode = ref.Code
	}

	next, err := h.signup.Submit(c.UserContext(), h.session(c), form)
	if err != nil {
		return stepFailed(c, err, func(msg string) error {
			page := signupPage{
				Page:           h.page(c),
				Mode:           form.Mode,
				FullName:       form.FullName,
				ContactNumber:  form.ContactNumber,
				Email:          form.Email,
				ReferralCode:   form.ReferralCode,
				ReferralLocked: ref.Locked,
				Agreed:         form.Agreed,
				DialCode:       h.dialCode,
				SwitchURL:      switchModeURL(c, form.Mode, q),
			}
			page.Error = msg
			return c.Render("signup", page)
		})
	}
	return redirect(c, next)
}
