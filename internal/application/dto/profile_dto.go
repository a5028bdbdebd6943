package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfileRequest body para POST/PUT /api/profile.
type ProfileRequest struct {
	BusinessName        string           `json:"business_name"`
	FirstName           string           `json:"first_name"`
	LastName            string           `json:"last_name"`
	Email               string           `json:"email"`
	Phone               string           `json:"phone,omitempty"`
	Address             string           `json:"address,omitempty"`
	City                string           `json:"city,omitempty"`
	PostalCode          string           `json:"postal_code,omitempty"`
	Country             string           `json:"country,omitempty"`
	VATNumber           string           `json:"vat_number,omitempty"`
	LicenseNumber       string           `json:"license_number,omitempty"`
	IBAN                string           `json:"iban,omitempty"`
	BIC                 string           `json:"bic,omitempty"`
	BankName            string           `json:"bank_name,omitempty"`
	DefaultPaymentTerms string           `json:"default_payment_terms,omitempty"`
	DefaultTaxRate      *decimal.Decimal `json:"default_tax_rate,omitempty"`
	LogoURL             string           `json:"logo_url,omitempty"`
}

// ProfileResponse perfil del emisor.
type ProfileResponse struct {
	ID                  string          `json:"id,omitempty"`
	BusinessName        string          `json:"business_name"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	Email               string          `json:"email"`
	Phone               string          `json:"phone,omitempty"`
	Address             string          `json:"address,omitempty"`
	City                string          `json:"city,omitempty"`
	PostalCode          string          `json:"postal_code,omitempty"`
	Country             string          `json:"country,omitempty"`
	VATNumber           string          `json:"vat_number,omitempty"`
	LicenseNumber       string          `json:"license_number,omitempty"`
	IBAN                string          `json:"iban,omitempty"`
	BIC                 string          `json:"bic,omitempty"`
	BankName            string          `json:"bank_name,omitempty"`
	DefaultPaymentTerms string          `json:"default_payment_terms,omitempty"`
	DefaultTaxRate      decimal.Decimal `json:"default_tax_rate"`
	LogoURL             string          `json:"logo_url,omitempty"`
	IsDefault           bool            `json:"is_default,omitempty"` // true si no hay perfil guardado
	UpdatedAt           *time.Time      `json:"updated_at,omitempty"`
}

// ProfileCompletionResponse estado de completitud de GET /api/profile/completion.
type ProfileCompletionResponse struct {
	IsComplete            bool     `json:"is_complete"`
	CompletionPercentage  int      `json:"completion_percentage"`
	MissingRequiredFields []string `json:"missing_required_fields"`
	MissingOptionalFields []string `json:"missing_optional_fields"`
	HasProfile            bool     `json:"has_profile"`
}
