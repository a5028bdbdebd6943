package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger dependencia comprobable (pool de PostgreSQL, cliente Redis).
type Pinger func(ctx context.Context) error

// HealthHandler estado del servicio y de sus dependencias.
type HealthHandler struct {
	service string
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler construye el handler. checks: nombre → ping.
func NewHealthHandler(service string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, checks: checks, timeout: 2 * time.Second}
}

// Check GET /health: 200 si todas las dependencias responden, 503 si alguna falla.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	status := fiber.StatusOK
	deps := make(fiber.Map, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			deps[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{"status": state, "service": h.service, "dependencies": deps})
}
