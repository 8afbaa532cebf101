package web

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/nirvista/onboard/internal/flow"
	"github.com/nirvista/onboard/internal/middleware"
)

// maxDocumentSize bounds one uploaded KYC file.
const maxDocumentSize = 8 << 20

type kycPage struct {
	Page
	Documents      []flow.DocumentState
	Metadata       flow.Metadata
	DocumentsReady bool
	CanSubmit      bool
	Status         flow.StatusView
}

func (h *Handler) kycPage(c *fiber.Ctx, view flow.KYCView) kycPage {
	return kycPage{
		Page:           h.page(c),
		Documents:      view.Documents,
		Metadata:       view.Metadata,
		DocumentsReady: flow.DocumentsReady(view.Documents),
		CanSubmit:      view.CanSubmit,
		Status:         h.poller.Fetch(c.UserContext(), middleware.AuthToken(c)),
	}
}

// KYCPage renders the upload screen with one status fetched up front; the
// page then follows the status stream.
func (h *Handler) KYCPage(c *fiber.Ctx) error {
	return c.Render("kyc", h.kycPage(c, h.kyc.View(h.session(c))))
}

// UploadDocument forwards one chosen file to the API right away. The
// outcome is recorded on the document and shown when the screen reloads.
func (h *Handler) UploadDocument(c *fiber.Ctx) error {
	docType, ok := flow.ParseDocumentType(c.Params("type"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown document type")
	}

	var fileName string
	var content []byte
	if fh, err := c.FormFile("document"); err == nil {
		if fh.Size > maxDocumentSize {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, "document too large")
		}
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		if content, err = io.ReadAll(f); err != nil {
			return fmt.Errorf("read upload: %w", err)
		}
		fileName = fh.Filename
	}

	doc, err := h.kyc.Upload(c.UserContext(), h.session(c), middleware.AuthToken(c), docType, fileName, content)
	if err != nil {
		if _, ok := flow.UserMessage(err); !ok {
			return stepFailed(c, err, nil)
		}
	}
	if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return c.JSON(fiber.Map{
			"documentType": doc.Type,
			"fileName":     doc.FileName,
			"url":          doc.RemoteURL,
			"message":      doc.Message,
		})
	}
	return redirect(c, flow.StepKYC)
}

// KYCStatus returns one status fetch as JSON.
func (h *Handler) KYCStatus(c *fiber.Ctx) error {
	return c.JSON(h.poller.Fetch(c.UserContext(), middleware.AuthToken(c)))
}

// KYCStatusStream pushes the polled status as server-sent events until the
// client goes away, the stream reaches its maximum age or the server shuts
// down.
func (h *Handler) KYCStatusStream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	token := middleware.AuthToken(c)
	sid := middleware.SessionID(c)
	ctx, cancel := context.WithTimeout(h.base, h.streamMaxAge)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		if h.metrics != nil {
			h.metrics.StatusStreams.Inc()
			defer h.metrics.StatusStreams.Dec()
		}
		fmt.Fprintf(w, "retry: %d\n\n", h.poller.Interval().Milliseconds())
		if err := w.Flush(); err != nil {
			return
		}
		h.poller.Run(ctx, token, func(v flow.StatusView) {
			payload, err := json.Marshal(v)
			if err != nil {
				h.logger.Error("encode kyc status", slog.Any("error", err))
				return
			}
			fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload)
			if err := w.Flush(); err != nil {
				h.logger.Debug("kyc status stream closed", slog.String("session_id", sid))
				cancel()
			}
		})
	}))
	return nil
}

// SubmitKYC finalises KYC with the uploaded documents and typed numbers.
func (h *Handler) SubmitKYC(c *fiber.Ctx) error {
	sess := h.session(c)
	meta := flow.Metadata{AadhaarNumber: c.FormValue("aadhaarNumber"), PANNumber: c.FormValue("panNumber")}
	next, err := h.kyc.Submit(c.UserContext(), sess, middleware.AuthToken(c), meta)
	if err != nil {
		return stepFailed(c, err, func(msg string) error {
			page := h.kycPage(c, h.kyc.View(sess))
			page.Error = msg
			return c.Render("kyc", page)
		})
	}
	return redirect(c, next)
}
