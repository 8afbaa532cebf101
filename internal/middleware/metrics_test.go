package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nirvista/onboard/internal/metrics"
)

func readBody(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.New()
	app := fiber.New()
	app.Use(Metrics(m))
	app.Post("/kyc/documents/:type", func(c *fiber.Ctx) error {
		if c.Params("type") == "passport" {
			return fiber.ErrNotFound
		}
		return c.SendStatus(fiber.StatusSeeOther)
	})

	for _, doc := range []string{"pan", "selfie", "passport"} {
		if _, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/kyc/documents/"+doc, nil)); err != nil {
			t.Fatalf("app.Test: %v", err)
		}
	}

	if got := testutil.ToFloat64(m.RequestCount.WithLabelValues("POST", "/kyc/documents/:type", "303")); got != 2 {
		t.Fatalf("expected 2 redirects, got %v", got)
	}
	if got := testutil.ToFloat64(m.RequestCount.WithLabelValues("POST", "/kyc/documents/:type", "404")); got != 1 {
		t.Fatalf("expected 1 not found, got %v", got)
	}
}
