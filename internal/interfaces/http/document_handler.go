package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
)

// HeaderDocumentDigest huella SHA-256 (base64) de la forma canónica del XML exportado.
const HeaderDocumentDigest = "X-Document-Digest"

// DocumentHandler PDFs y factura electrónica de una factura.
type DocumentHandler struct {
	uc *billing.PDFUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *billing.PDFUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// Download godoc
// @Summary      Descargar PDF
// @Tags         documents
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id        path   string  true   "ID de la factura"
// @Param        renderer  query  string  false  "vector | template"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	doc, err := h.uc.Download(c.UserContext(), GetUserID(c), c.Params("id"), c.Query("renderer"))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(doc.Filename)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Send(doc.Content)
}

// Preview godoc
// @Summary      Vista previa
// @Description  HTML si el renderer lo produce; si no, el PDF en línea.
// @Tags         documents
// @Security     BearerAuth
// @Produce      html
// @Param        id        path   string  true   "ID de la factura"
// @Param        renderer  query  string  false  "vector | template"
// @Success      200
// @Router       /api/invoices/{id}/preview [get]
func (h *DocumentHandler) Preview(c *fiber.Ctx) error {
	doc, err := h.uc.Preview(c.UserContext(), GetUserID(c), c.Params("id"), c.Query("renderer"))
	if err != nil {
		return respondError(c, err)
	}
	if html, ok := doc.PreviewHTML(); ok {
		c.Type("html", "utf-8")
		return c.SendString(html)
	}
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+doc.Filename+`"`)
	c.Set(fiber.HeaderContentType, doc.ContentType)
	return c.Send(doc.Content)
}

// Blob godoc
// @Summary      PDF como data URI (adjuntos en el cliente)
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        id        path   string  true   "ID de la factura"
// @Param        renderer  query  string  false  "vector | template"
// @Success      200
// @Router       /api/invoices/{id}/blob [get]
func (h *DocumentHandler) Blob(c *fiber.Ctx) error {
	content, err := h.uc.Blob(c.UserContext(), GetUserID(c), c.Params("id"), c.Query("renderer"))
	if err != nil {
		return respondError(c, err)
	}
	doc := billing.Document{ContentType: billing.ContentTypePDF, Content: content}
	return c.JSON(fiber.Map{"content_type": doc.ContentType, "size": len(content), "data_uri": doc.DataURI()})
}

// Archive godoc
// @Summary      Archivar copia del PDF
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        id        path   string  true   "ID de la factura"
// @Param        renderer  query  string  false  "vector | template"
// @Success      201
// @Router       /api/invoices/{id}/archive [post]
func (h *DocumentHandler) Archive(c *fiber.Ctx) error {
	path, err := h.uc.Archive(c.UserContext(), GetUserID(c), c.Params("id"), c.Query("renderer"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"path": path})
}

// UBL godoc
// @Summary      Factura electrónica UBL 2.1
// @Tags         documents
// @Security     BearerAuth
// @Produce      xml
// @Param        id  path  string  true  "ID de la factura"
// @Success      200
// @Header       200  {string}  X-Document-Digest  "base64(SHA-256(C14N))"
// @Router       /api/invoices/{id}/ubl [get]
func (h *DocumentHandler) UBL(c *fiber.Ctx) error {
	out, err := h.uc.ExportUBL(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(out.Filename)
	c.Set(HeaderDocumentDigest, out.Digest)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(out.Content)
}

// Renderers godoc
// @Summary      Renderers PDF disponibles
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Success      200
// @Router       /api/documents/renderers [get]
func (h *DocumentHandler) Renderers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"renderers": h.uc.Renderers()})
}
