package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturas y sus líneas (protegido).
type InvoiceHandler struct {
	uc *billing.InvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// List godoc
// @Summary      Listar facturas enriquecidas
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  dto.InvoiceResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Estadísticas de facturas
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.InvoiceStatsResponse
// @Router       /api/invoices/stats [get]
func (h *InvoiceHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de factura
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear factura con sus líneas
// @Description  Número único YYYY-MM-NNNN por usuario y mes; cabecera y líneas en una sola transacción.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateInvoiceRequest  true  "factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
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
// @Summary      Actualizar factura
// @Description  Si items viene en el cuerpo reemplaza todas las líneas.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "ID de la factura"
// @Param        body  body      dto.UpdateInvoiceRequest  true  "factura"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateInvoiceRequest
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
// @Summary      Eliminar factura y sus líneas
// @Tags         invoices
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la factura"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateStatus godoc
// @Summary      Cambiar estado
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                   true  "ID de la factura"
// @Param        body  body      dto.UpdateStatusRequest  true  "draft | sent | paid | overdue | cancelled"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetUserID(c), c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Recalculate godoc
// @Summary      Recalcular totales desde las líneas
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Router       /api/invoices/{id}/recalculate [post]
func (h *InvoiceHandler) Recalculate(c *fiber.Ctx) error {
	out, err := h.uc.RecalculateTotals(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Añadir línea
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "ID de la factura"
// @Param        body  body      dto.InvoiceItemRequest  true  "línea"
// @Success      201   {object}  dto.InvoiceItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *fiber.Ctx) error {
	var in dto.InvoiceItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.AddItem(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateItem godoc
// @Summary      Editar línea
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id      path      string                  true  "ID de la factura"
// @Param        itemId  path      string                  true  "ID de la línea"
// @Param        body    body      dto.InvoiceItemRequest  true  "línea"
// @Success      200     {object}  dto.InvoiceItemResponse
// @Router       /api/invoices/{id}/items/{itemId} [put]
func (h *InvoiceHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.InvoiceItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.UpdateItem(c.UserContext(), GetUserID(c), c.Params("id"), c.Params("itemId"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DeleteItem godoc
// @Summary      Eliminar línea
// @Tags         invoices
// @Security     BearerAuth
// @Param        id      path  string  true  "ID de la factura"
// @Param        itemId  path  string  true  "ID de la línea"
// @Success      204
// @Router       /api/invoices/{id}/items/{itemId} [delete]
func (h *InvoiceHandler) DeleteItem(c *fiber.Ctx) error {
	if err := h.uc.DeleteItem(c.UserContext(), GetUserID(c), c.Params("id"), c.Params("itemId")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
