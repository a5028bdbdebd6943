package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain"
)

// Códigos de error de la API.
const (
	CodeInvalidBody  = "INVALID_BODY"
	CodeValidation   = "VALIDATION"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeDuplicate    = "DUPLICATE"
	CodeEmailExists  = "EMAIL_EXISTS"
	CodeConflict     = "CONFLICT"
	CodeExhausted    = "NUMBER_EXHAUSTED"
	CodeRenderFailed = "RENDER_FAILED"
	CodeInternal     = "INTERNAL"
)

// respondError traduce un error de dominio a status + dto.ErrorResponse.
// Los errores no reconocidos se registran y se devuelven como 500 sin detalles internos.
func respondError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeValidation, Message: "datos inválidos", Details: ve.Errors}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: CodeUnauthorized, Message: "credenciales inválidas o sesión expirada"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: CodeForbidden, Message: "acceso denegado"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: CodeNotFound, Message: "recurso no encontrado"}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: CodeEmailExists, Message: "el email ya está registrado"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: CodeDuplicate, Message: "ya existe un recurso con esos datos"}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: CodeConflict, Message: "el recurso está en uso"}
	case errors.Is(err, domain.ErrInvoiceNumberExhausted):
		return fiber.StatusConflict, dto.ErrorResponse{Code: CodeExhausted, Message: err.Error()}
	case errors.Is(err, domain.ErrRenderFailed):
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: CodeRenderFailed, Message: domain.ErrRenderFailed.Error()}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: CodeInternal, Message: "error interno"}
	}
}

// badBody respuesta para cuerpos JSON que no se pueden decodificar.
func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: "cuerpo inválido: " + err.Error()})
}

// ErrorHandler manejador global de Fiber: errores de Fiber con su status, el resto vía mapError.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: statusCode(fe.Code), Message: fe.Message})
	}
	return respondError(c, err)
}

func statusCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	case fiber.StatusRequestTimeout:
		return "TIMEOUT"
	}
	if status >= 500 {
		return CodeInternal
	}
	return "BAD_REQUEST"
}
