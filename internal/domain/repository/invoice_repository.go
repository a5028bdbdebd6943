package repository

import (
	"context"

	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para la cabecera de Invoice.
type InvoiceRepository interface {
	// Create devuelve domain.ErrDuplicate si el número ya existe para el usuario.
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update actualiza los campos editables de cabecera y los totales.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// UpdateTotals escribe solo subtotal, impuesto y total.
	UpdateTotals(ctx context.Context, invoice *entity.Invoice) error
	UpdateStatus(ctx context.Context, userID, id, status string) error
	// GetByID carga la factura con su cliente y sus líneas (cada una con su tipo de servicio).
	GetByID(ctx context.Context, userID, id string) (*entity.Invoice, error)
	// List ordena por fecha de factura descendente; carga cliente y líneas.
	List(ctx context.Context, userID string) ([]*entity.Invoice, error)
	ListByCustomer(ctx context.Context, userID, customerID string) ([]*entity.Invoice, error)
	// Delete elimina la factura; las líneas caen por cascada.
	Delete(ctx context.Context, userID, id string) error

	// ListNumbersByPrefix números del usuario que empiezan por prefix, orden descendente.
	ListNumbersByPrefix(ctx context.Context, userID, prefix string) ([]string, error)
	ExistsNumber(ctx context.Context, userID, number string) (bool, error)
}

// InvoiceItemRepository define el puerto de persistencia para las líneas de factura.
type InvoiceItemRepository interface {
	Create(ctx context.Context, item *entity.InvoiceItem) error
	GetByID(ctx context.Context, invoiceID, id string) (*entity.InvoiceItem, error)
	Update(ctx context.Context, item *entity.InvoiceItem) error
	Delete(ctx context.Context, invoiceID, id string) error
	DeleteByInvoice(ctx context.Context, invoiceID string) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error)
}
