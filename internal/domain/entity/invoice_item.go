package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem representa una línea de factura (lección, examen, forfait...).
type InvoiceItem struct {
	ID            string
	InvoiceID     string
	ServiceTypeID string // vacío = sin tipo de servicio
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	TotalPrice    decimal.Decimal // UnitPrice × Quantity
	DurationHours decimal.NullDecimal
	ServiceDate   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	ServiceType *ServiceType
}
