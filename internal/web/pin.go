package web

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nirvista/onboard/internal/flow"
	"github.com/nirvista/onboard/internal/middleware"
)

type pinPage struct {
	Page
	Cells  [flow.PINLength]string
	Focus  int
	Length int
}

// PINPage renders the PIN pad. RequireToken runs first.
func (h *Handler) PINPage(c *fiber.Ctx) error {
	return c.Render("pin", pinPage{Page: h.page(c), Length: flow.PINLength})
}

// SubmitPIN replays the posted cells through the pad and saves the PIN. A
// rejected PIN re-renders an empty pad.
func (h *Handler) SubmitPIN(c *fiber.Ctx) error {
	values := make([]string, flow.PINLength)
	for i := range values {
		values[i] = c.FormValue("pin" + strconv.Itoa(i))
	}
	var pad flow.PinPad
	pad.Fill(values)

	next, err := h.pin.Submit(c.UserContext(), h.session(c), middleware.AuthToken(c), &pad)
	if err != nil {
		return stepFailed(c, err, func(msg string) error {
			// Digits are never echoed back into the page.
			page := pinPage{Page: h.page(c), Length: flow.PINLength}
			page.Error = msg
			return c.Render("pin", page)
		})
	}
	return redirect(c, next)
}
