package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados almacenados de una factura. Enumeración plana: las transiciones no están restringidas.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// InvoiceStatuses lista los estados válidos en orden de presentación.
var InvoiceStatuses = []string{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

// Invoice representa la cabecera de una factura.
// Subtotal, TaxAmount y TotalAmount se recalculan cada vez que cambian sus líneas.
type Invoice struct {
	ID            string
	UserID        string
	CustomerID    string
	InvoiceNumber string // YYYY-MM-NNNN, único por usuario
	InvoiceDate   time.Time
	DueDate       *time.Time
	Status        string
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal // porcentaje 0..100
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	PaymentTerms  string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relaciones cargadas en lecturas anidadas (nil si no se pidieron).
	Customer *Customer
	Items    []*InvoiceItem
}
