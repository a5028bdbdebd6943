package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de tarificación de un tipo de servicio.
const (
	PricingPerHour    = "per_hour"
	PricingPerLesson  = "per_lesson"
	PricingFixed      = "fixed"
	PricingPerPackage = "per_package"
)

// ServiceType representa una prestación del catálogo (lección de conducción, examen, etc.).
type ServiceType struct {
	ID                   string
	UserID               string
	Name                 string
	Description          string
	Category             string
	PricingType          string
	UnitPrice            decimal.Decimal
	DefaultDurationHours decimal.NullDecimal
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
