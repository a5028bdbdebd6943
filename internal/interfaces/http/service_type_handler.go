package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
)

// ServiceTypeHandler catálogo de servicios facturables.
type ServiceTypeHandler struct {
	uc *billing.ServiceTypeUseCase
}

// NewServiceTypeHandler construye el handler.
func NewServiceTypeHandler(uc *billing.ServiceTypeUseCase) *ServiceTypeHandler {
	return &ServiceTypeHandler{uc: uc}
}

// List godoc
// @Summary      Listar servicios
// @Tags         service-types
// @Security     BearerAuth
// @Produce      json
// @Param        active  query  bool  false  "solo activos"
// @Success      200  {array}  dto.ServiceTypeResponse
// @Router       /api/service-types [get]
func (h *ServiceTypeHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetUserID(c), c.QueryBool("active", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Servicio
// @Tags         service-types
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "ID del servicio"
// @Success      200  {object}  dto.ServiceTypeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/service-types/{id} [get]
func (h *ServiceTypeHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear servicio
// @Tags         service-types
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ServiceTypeRequest  true  "servicio"
// @Success      201   {object}  dto.ServiceTypeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/service-types [post]
func (h *ServiceTypeHandler) Create(c *fiber.Ctx) error {
	var in dto.ServiceTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar servicio
// @Tags         service-types
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID del servicio"
// @Param        body  body      dto.ServiceTypeRequest  true  "servicio"
// @Success      200   {object}  dto.ServiceTypeResponse
// @Router       /api/service-types/{id} [put]
func (h *ServiceTypeHandler) Update(c *fiber.Ctx) error {
	var in dto.ServiceTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar servicio
// @Tags         service-types
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del servicio"
// @Success      204
// @Router       /api/service-types/{id} [delete]
func (h *ServiceTypeHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
