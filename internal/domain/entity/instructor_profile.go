package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Valores por defecto del emisor.
const (
	DefaultBusinessName = "Driving School Pro"
	DefaultCountry      = "Belgium"
	DefaultPaymentTerms = "Payment due within 30 days"
)

// InstructorProfile datos del emisor de las facturas (uno por usuario).
type InstructorProfile struct {
	ID                  string
	UserID              string
	BusinessName        string
	FirstName           string
	LastName            string
	Email               string
	Phone               string
	Address             string
	City                string
	PostalCode          string
	Country             string
	VATNumber           string
	LicenseNumber       string
	IBAN                string
	BIC                 string
	BankName            string
	DefaultPaymentTerms string
	DefaultTaxRate      decimal.Decimal
	LogoURL             string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FullName nombre y apellido del instructor.
func (p *InstructorProfile) FullName() string {
	if p == nil {
		return ""
	}
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
