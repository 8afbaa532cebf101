package web

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

type completePage struct {
	Page
	AppDownloadURL string
	PortalURL      string
	PortalHost     string
}

// CompletePage renders the final screen with the app and portal links.
func (h *Handler) CompletePage(c *fiber.Ctx) error {
	host := h.links.PortalURL
	if u, err := url.Parse(h.links.PortalURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return c.Render("complete", completePage{
		Page:           h.page(c),
		AppDownloadURL: h.links.AppDownloadURL,
		PortalURL:      h.links.PortalURL,
		PortalHost:     host,
	})
}

// SuccessPage renders the older confirmation screen.
func (h *Handler) SuccessPage(c *fiber.Ctx) error {
	return c.Render("success", struct{ Page }{h.page(c)})
}
