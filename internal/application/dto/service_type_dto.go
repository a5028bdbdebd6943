package dto

import "github.com/shopspring/decimal"

// ServiceTypeRequest body para POST/PUT /api/service-types.
type ServiceTypeRequest struct {
	Name                 string           `json:"name"`
	Description          string           `json:"description,omitempty"`
	Category             string           `json:"category"`
	PricingType          string           `json:"pricing_type"`
	UnitPrice            *decimal.Decimal `json:"unit_price"`
	DefaultDurationHours *decimal.Decimal `json:"default_duration_hours,omitempty"`
	IsActive             *bool            `json:"is_active,omitempty"`
}

// ServiceTypeResponse tipo de servicio en respuestas.
type ServiceTypeResponse struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Description          string           `json:"description,omitempty"`
	Category             string           `json:"category"`
	PricingType          string           `json:"pricing_type"`
	UnitPrice            decimal.Decimal  `json:"unit_price"`
	DefaultDurationHours *decimal.Decimal `json:"default_duration_hours,omitempty"`
	IsActive             bool             `json:"is_active"`
}
