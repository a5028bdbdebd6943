package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
)

// ProfileHandler perfil del emisor (uno por usuario).
type ProfileHandler struct {
	uc *billing.ProfileUseCase
}

// NewProfileHandler construye el handler.
func NewProfileHandler(uc *billing.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

// Get godoc
// @Summary      Perfil actual (guardado o por defecto)
// @Tags         profile
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.ProfileResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Current(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear perfil
// @Tags         profile
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ProfileRequest  true  "perfil"
// @Success      201   {object}  dto.ProfileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/profile [post]
func (h *ProfileHandler) Create(c *fiber.Ctx) error {
	var in dto.ProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Save godoc
// @Summary      Guardar perfil (crea o actualiza)
// @Tags         profile
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ProfileRequest  true  "perfil"
// @Success      200   {object}  dto.ProfileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/profile [put]
func (h *ProfileHandler) Save(c *fiber.Ctx) error {
	var in dto.ProfileRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Save(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar perfil
// @Tags         profile
// @Security     BearerAuth
// @Success      204
// @Router       /api/profile [delete]
func (h *ProfileHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Completion godoc
// @Summary      Completitud del perfil
// @Tags         profile
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.ProfileCompletionResponse
// @Router       /api/profile/completion [get]
func (h *ProfileHandler) Completion(c *fiber.Ctx) error {
	out, err := h.uc.CompletionStatus(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Defaults godoc
// @Summary      Perfil por defecto derivado de la cuenta
// @Tags         profile
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.ProfileResponse
// @Router       /api/profile/defaults [get]
func (h *ProfileHandler) Defaults(c *fiber.Ctx) error {
	out, err := h.uc.DefaultsResponse(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
