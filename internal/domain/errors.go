package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrUserNotFound           = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists     = errors.New("el email ya está registrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrDuplicate              = errors.New("recurso duplicado")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrConflict               = errors.New("conflicto con el estado actual")
	ErrInvoiceNumberExhausted = errors.New("no se pudo generar un número de factura único")
	ErrRenderFailed           = errors.New("PDF generation failed")
)

// ValidationError agrega los mensajes legibles de una validación fallida.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationError.
type ValidationError struct {
	Errors []string
}

// NewValidationError devuelve nil si no hay mensajes.
func NewValidationError(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &ValidationError{Errors: msgs}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Has indica si la lista contiene exactamente msg.
func (e *ValidationError) Has(msg string) bool {
	for _, m := range e.Errors {
		if m == msg {
			return true
		}
	}
	return false
}
