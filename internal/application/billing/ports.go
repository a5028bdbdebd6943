package billing

import (
	"context"
	"time"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/repository"
)

// InvoiceTxRunner ejecuta fn dentro de una transacción con repos de facturas y líneas atados a ella.
// Si fn devuelve error se hace rollback: cabecera y líneas se escriben juntas o no se escriben.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		itemRepo repository.InvoiceItemRepository,
	) error) error
}

// InvoiceRenderer estrategia de generación del PDF de una factura enriquecida.
type InvoiceRenderer interface {
	Name() string
	Render(ctx context.Context, invoice *dto.InvoiceResponse, issuer *entity.InstructorProfile) (*Document, error)
}

// EInvoiceExporter genera la factura electrónica estructurada (UBL).
type EInvoiceExporter interface {
	Export(ctx context.Context, invoice *dto.InvoiceResponse, issuer *entity.InstructorProfile) (*EInvoice, error)
}

// EInvoice documento XML exportado y su huella sobre la forma canónica.
type EInvoice struct {
	Filename string
	Content  []byte
	Digest   string // base64(SHA-256(C14N))
}

// Metrics contadores de negocio. Las implementaciones deben ser seguras para uso concurrente.
type Metrics interface {
	InvoiceCreated()
	InvoiceNumberCollision()
	PDFRendered(renderer string)
	PDFRenderFailed(renderer string)
}

// NopMetrics descarta todas las mediciones.
type NopMetrics struct{}

func (NopMetrics) InvoiceCreated() {}
func (NopMetrics) InvoiceNumberCollision() {}
func (NopMetrics) PDFRendered(string) {}
func (NopMetrics) PDFRenderFailed(string) {}

// Clock fuente de la hora actual (inyectable en tests).
type Clock func() time.Time
