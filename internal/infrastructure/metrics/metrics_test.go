package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/infrastructure/metrics"
)

func TestContadoresDeNegocio(t *testing.T) {
	m := metrics.New(false)
	m.InvoiceCreated()
	m.InvoiceCreated()
	m.InvoiceNumberCollision()
	m.PDFRendered("vector")
	m.PDFRenderFailed("template")

	n, err := testutil.GatherAndCount(m.Registry(), "caminvoice_invoices_created_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expected := `
# HELP caminvoice_invoices_created_total Facturas creadas.
# TYPE caminvoice_invoices_created_total counter
caminvoice_invoices_created_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "caminvoice_invoices_created_total"))

	n, err = testutil.GatherAndCount(m.Registry(), "caminvoice_pdf_rendered_total", "caminvoice_pdf_render_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMiddlewareYHandler(t *testing.T) {
	m := metrics.New(false)
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/api/invoices/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/invoices/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `caminvoice_http_requests_total{method="GET",route="/api/invoices/:id",status="200"} 1`)
}
