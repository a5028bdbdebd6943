package http

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/caminvoice-api/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.NewValidationError([]string{"a", "b"}), fiber.StatusBadRequest, CodeValidation},
		{fmt.Errorf("%w: renderer desconocido", domain.ErrInvalidInput), fiber.StatusBadRequest, CodeValidation},
		{domain.ErrUnauthorized, fiber.StatusUnauthorized, CodeUnauthorized},
		{domain.ErrForbidden, fiber.StatusForbidden, CodeForbidden},
		{fmt.Errorf("cargar: %w", domain.ErrNotFound), fiber.StatusNotFound, CodeNotFound},
		{domain.ErrEmailAlreadyExists, fiber.StatusConflict, CodeEmailExists},
		{domain.ErrDuplicate, fiber.StatusConflict, CodeDuplicate},
		{domain.ErrConflict, fiber.StatusConflict, CodeConflict},
		{domain.ErrInvoiceNumberExhausted, fiber.StatusConflict, CodeExhausted},
		{fmt.Errorf("%w: fuente", domain.ErrRenderFailed), fiber.StatusInternalServerError, CodeRenderFailed},
		{errors.New("conexión rechazada"), fiber.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		status, body := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, body.Code, tc.err.Error())
	}

	_, body := mapError(domain.NewValidationError([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, body.Details)

	_, body = mapError(errors.New("pq: password authentication failed"))
	assert.NotContains(t, body.Message, "password")
}
