package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest body para POST/PUT /api/customers.
type CustomerRequest struct {
	ClientType    string `json:"client_type"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Country       string `json:"country,omitempty"`
	VATNumber     string `json:"vat_number,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// CustomerResponse cliente en respuestas (display_name calculado).
type CustomerResponse struct {
	ID            string           `json:"id"`
	ClientType    string           `json:"client_type"`
	FirstName     string           `json:"first_name,omitempty"`
	LastName      string           `json:"last_name,omitempty"`
	CompanyName   string           `json:"company_name,omitempty"`
	ContactPerson string           `json:"contact_person,omitempty"`
	Email         string           `json:"email"`
	Phone         string           `json:"phone,omitempty"`
	Address       string           `json:"address,omitempty"`
	City          string           `json:"city,omitempty"`
	PostalCode    string           `json:"postal_code,omitempty"`
	Country       string           `json:"country,omitempty"`
	VATNumber     string           `json:"vat_number,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	DisplayName   string           `json:"display_name"`
	TotalInvoices *int             `json:"total_invoices,omitempty"`
	TotalBilled   *decimal.Decimal `json:"total_billed,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// CustomerDetailResponse cliente con sus facturas.
type CustomerDetailResponse struct {
	CustomerResponse
	Invoices []InvoiceResponse `json:"invoices"`
}

// CustomerOption entrada del selector de clientes al crear una factura.
type CustomerOption struct {
	ID          string `json:"id"`
	ClientType  string `json:"client_type"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Label       string `json:"label"` // "Nombre (email)"
}

// CustomerStatsResponse agregados de GET /api/customers/stats.
type CustomerStatsResponse struct {
	TotalCustomers      int             `json:"total_customers"`
	IndividualCustomers int             `json:"individual_customers"`
	CompanyCustomers    int             `json:"company_customers"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
}
