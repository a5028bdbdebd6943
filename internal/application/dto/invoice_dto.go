package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest body para POST /api/invoices.
// Campos ausentes toman valores por defecto: fecha = hoy, vencimiento = fecha + plazo,
// estado = draft, tasa = la del perfil (o 21).
type CreateInvoiceRequest struct {
	CustomerID   string               `json:"customer_id"`
	InvoiceDate  *Date                `json:"invoice_date,omitempty"`
	DueDate      *Date                `json:"due_date,omitempty"`
	TaxRate      *decimal.Decimal     `json:"tax_rate,omitempty"`
	Status       string               `json:"status,omitempty"`
	PaymentTerms string               `json:"payment_terms,omitempty"`
	Notes        string               `json:"notes,omitempty"`
	Items        []InvoiceItemRequest `json:"items"`
}

// UpdateInvoiceRequest body para PUT /api/invoices/:id.
// Items nil (campo ausente) conserva las líneas; una lista (aunque vacía) las reemplaza todas.
// PaymentTerms y Notes igual: ausentes se conservan, "" los borra.
type UpdateInvoiceRequest struct {
	CustomerID   string               `json:"customer_id"`
	InvoiceDate  *Date                `json:"invoice_date"`
	DueDate      *Date                `json:"due_date,omitempty"`
	TaxRate      *decimal.Decimal     `json:"tax_rate,omitempty"`
	Status       string               `json:"status,omitempty"`
	PaymentTerms *string              `json:"payment_terms,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
	Items        []InvoiceItemRequest `json:"items,omitempty"`
}

// InvoiceItemRequest línea de factura. Los numéricos aceptan número JSON o string numérico;
// cualquier otro valor hace fallar la decodificación.
type InvoiceItemRequest struct {
	ServiceTypeID string           `json:"service_type_id,omitempty"`
	Description   string           `json:"description"`
	Quantity      *decimal.Decimal `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price"`
	DurationHours *decimal.Decimal `json:"duration_hours,omitempty"`
	ServiceDate   *Date            `json:"service_date,omitempty"`
}

// UpdateStatusRequest body para PATCH /api/invoices/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// InvoiceResponse factura enriquecida. Los campos de presentación (customer_name, items_count,
// status_display, status_severity, overdue, days_overdue) se calculan en lectura y no se persisten.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    string                `json:"customer_id"`
	Customer      *CustomerResponse     `json:"customer,omitempty"`
	InvoiceDate   Date                  `json:"invoice_date"`
	DueDate       *Date                 `json:"due_date,omitempty"`
	Status        string                `json:"status"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	TaxAmount     decimal.Decimal       `json:"tax_amount"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaymentTerms  string                `json:"payment_terms,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Items         []InvoiceItemResponse `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`

	CustomerName   string `json:"customer_name"`
	ItemsCount     int    `json:"items_count"`
	StatusDisplay  string `json:"status_display"`
	StatusSeverity string `json:"status_severity"`
	Overdue        bool   `json:"overdue"`
	DaysOverdue    int    `json:"days_overdue"`
}

// InvoiceItemResponse línea de factura en respuestas.
type InvoiceItemResponse struct {
	ID            string               `json:"id"`
	InvoiceID     string               `json:"invoice_id"`
	ServiceTypeID string               `json:"service_type_id,omitempty"`
	ServiceType   *ServiceTypeResponse `json:"service_type,omitempty"`
	Description   string               `json:"description"`
	Quantity      decimal.Decimal      `json:"quantity"`
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	TotalPrice    decimal.Decimal      `json:"total_price"`
	DurationHours *decimal.Decimal     `json:"duration_hours,omitempty"`
	ServiceDate   *Date                `json:"service_date,omitempty"`
}

// InvoiceStatsResponse agregados de GET /api/invoices/stats.
type InvoiceStatsResponse struct {
	TotalInvoices     int             `json:"total_invoices"`
	DraftInvoices     int             `json:"draft_invoices"`
	SentInvoices      int             `json:"sent_invoices"`
	PaidInvoices      int             `json:"paid_invoices"`
	OverdueInvoices   int             `json:"overdue_invoices"`
	CancelledInvoices int             `json:"cancelled_invoices"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	PendingAmount     decimal.Decimal `json:"pending_amount"`
	OverdueAmount     decimal.Decimal `json:"overdue_amount"`
}
