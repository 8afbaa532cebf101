package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type errorPage struct {
	Page
	Title   string
	Message string
	Back    string
}

// ErrorHandler renders failures as an HTML page, or as JSON for clients
// that asked for it. Internal errors are logged and never shown verbatim.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong. Please try again."
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			if code < fiber.StatusInternalServerError {
				message = fe.Message
			}
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed", slog.String("path", c.Path()), slog.Any("error", err))
		}

		c.Status(code)
		switch c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) {
		case fiber.MIMEApplicationJSON:
			return c.JSON(fiber.Map{"error": message})
		case fiber.MIMETextHTML:
			back := c.Get(fiber.HeaderReferer)
			if back == "" {
				back = "/"
			}
			page := errorPage{Title: "Something went wrong", Message: message, Back: back}
			if code == fiber.StatusConflict {
				page.Title = "Already submitting"
			}
			if renderErr := c.Render("error", page); renderErr == nil {
				return nil
			}
		}
		return c.SendString(message)
	}
}
