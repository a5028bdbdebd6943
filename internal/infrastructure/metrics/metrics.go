// Package metrics expone contadores de negocio y de HTTP en formato Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
)

const namespace = "caminvoice"

// Metrics implementa billing.Metrics sobre un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	invoicesCreated   prometheus.Counter
	numberCollisions  prometheus.Counter
	pdfRendered       *prometheus.CounterVec
	pdfRenderFailures *prometheus.CounterVec

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ billing.Metrics = (*Metrics)(nil)

// New crea y registra las métricas. withRuntime añade los collectors de proceso y Go.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Facturas creadas.",
		}),
		numberCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_number_collisions_total",
			Help:      "Colisiones de número de factura reintentadas.",
		}),
		pdfRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_rendered_total",
			Help:      "PDFs generados por renderer.",
		}, []string{"renderer"}),
		pdfRenderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pdf_render_failures_total",
			Help:      "Fallos de generación de PDF por renderer.",
		}, []string{"renderer"}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Peticiones HTTP por método, ruta y estado.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.invoicesCreated, m.numberCollisions,
		m.pdfRendered, m.pdfRenderFailures,
		m.requestCount, m.requestDuration,
	)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry registro subyacente (tests y exportación).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) InvoiceCreated()         { m.invoicesCreated.Inc() }
func (m *Metrics) InvoiceNumberCollision() { m.numberCollisions.Inc() }

func (m *Metrics) PDFRendered(renderer string) {
	m.pdfRendered.WithLabelValues(renderer).Inc()
}

func (m *Metrics) PDFRenderFailed(renderer string) {
	m.pdfRenderFailures.WithLabelValues(renderer).Inc()
}

// Middleware cuenta y mide cada petición. La etiqueta de ruta es el patrón registrado
// (/api/invoices/:id), no la URL concreta.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "unmatched"
		}
		m.requestCount.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone el registro en /metrics.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
}
