package invoicing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

var (
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern      = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
	ibanPattern       = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{4}[0-9]{7}([A-Z0-9]?){0,16}$`)
	belgianVATPattern = regexp.MustCompile(`^BE[0-9]{10}$`)
	maxTaxRate        = decimal.NewFromInt(100)
)

// MaxDecimals escala de importes, cantidades, duraciones y tasas en la base (NUMERIC(_,2)).
const MaxDecimals = 2

// FitsScale indica si d se almacena sin redondeo en una columna NUMERIC(_,2).
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MaxDecimals))
}

// Mensajes de validación expuestos al cliente.
const (
	MsgValidEmailRequired   = "valid email required"
	MsgClientTypeRequired   = "client type required"
	MsgInvalidClientType    = "client type must be individual or company"
	MsgFirstNameRequired    = "first name required"
	MsgLastNameRequired     = "last name required"
	MsgCompanyNameRequired  = "company name required"
	MsgInvalidPhone         = "invalid phone format"
	MsgCustomerRequired     = "valid customer required"
	MsgInvoiceDateRequired  = "invoice date required"
	MsgDueBeforeInvoiceDate = "due date must be on or after invoice date"
	MsgTaxRateRange         = "tax rate must be between 0 and 100"
	MsgInvalidStatus        = "invalid status"
	MsgDescriptionRequired  = "description required"
	MsgUnitPriceRequired    = "valid unit price required"
	MsgQuantityPositive     = "quantity must be greater than 0"
	MsgDurationNonNegative  = "duration must be 0 or greater"
	MsgUnitPricePrecision   = "unit price must have at most 2 decimals"
	MsgQuantityPrecision    = "quantity must have at most 2 decimals"
	MsgDurationPrecision    = "duration must have at most 2 decimals"
	MsgTaxRatePrecision     = "tax rate must have at most 2 decimals"
	MsgServiceNameRequired  = "service name required"
	MsgCategoryRequired     = "category required"
	MsgPricingTypeRequired  = "pricing type required"
	MsgBusinessNameRequired = "business name required"
	MsgInvalidIBAN          = "invalid IBAN format"
	MsgInvalidBelgianVAT    = "invalid Belgian VAT format (BE followed by 10 digits)"
)

// IsValidEmail comprueba el formato de un email.
func IsValidEmail(s string) bool { return emailPattern.MatchString(s) }

// IsValidPhone comprueba el formato de un teléfono (7 a 20 dígitos, espacios, guiones o paréntesis).
func IsValidPhone(s string) bool { return phonePattern.MatchString(s) }

// NormalizeIBAN quita espacios y pasa a mayúsculas.
func NormalizeIBAN(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

// IsValidIBAN valida el formato (no el dígito de control) de un IBAN.
func IsValidIBAN(s string) bool { return ibanPattern.MatchString(NormalizeIBAN(s)) }

// IsValidBelgianVAT valida "BE" + 10 dígitos.
func IsValidBelgianVAT(s string) bool { return belgianVATPattern.MatchString(NormalizeIBAN(s)) }

// ── Clientes ──────────────────────────────────────────────────────────────────

// ValidateCustomer aplica las reglas por tipo de cliente.
func ValidateCustomer(c *entity.Customer) error {
	if c == nil {
		return domain.NewValidationError([]string{MsgValidEmailRequired, MsgClientTypeRequired})
	}
	var errs []string
	if !IsValidEmail(strings.TrimSpace(c.Email)) {
		errs = append(errs, MsgValidEmailRequired)
	}
	switch c.ClientType {
	case "":
		errs = append(errs, MsgClientTypeRequired)
	case entity.ClientTypeIndividual:
		if strings.TrimSpace(c.FirstName) == "" {
			errs = append(errs, MsgFirstNameRequired)
		}
		if strings.TrimSpace(c.LastName) == "" {
			errs = append(errs, MsgLastNameRequired)
		}
	case entity.ClientTypeCompany:
		if strings.TrimSpace(c.CompanyName) == "" {
			errs = append(errs, MsgCompanyNameRequired)
		}
	default:
		errs = append(errs, MsgInvalidClientType)
	}
	if c.Phone != "" && !IsValidPhone(c.Phone) {
		errs = append(errs, MsgInvalidPhone)
	}
	return domain.NewValidationError(errs)
}

// ── Facturas ──────────────────────────────────────────────────────────────────

// HeaderInput campos de cabecera sujetos a validación.
type HeaderInput struct {
	CustomerID  string
	InvoiceDate *time.Time
	DueDate     *time.Time
	TaxRate     decimal.NullDecimal
	Status      string // vacío = se asignará draft
}

// ItemInput campos de línea sujetos a validación. Los numéricos ya vienen tipados:
// un valor no numérico falla antes, al decodificar la petición.
type ItemInput struct {
	Description   string
	UnitPrice     decimal.NullDecimal
	Quantity      decimal.NullDecimal
	DurationHours decimal.NullDecimal
}

// HeaderErrors mensajes de error de la cabecera.
func HeaderErrors(h HeaderInput) []string {
	var errs []string
	if strings.TrimSpace(h.CustomerID) == "" {
		errs = append(errs, MsgCustomerRequired)
	}
	if h.InvoiceDate == nil || h.InvoiceDate.IsZero() {
		errs = append(errs, MsgInvoiceDateRequired)
	}
	if h.InvoiceDate != nil && h.DueDate != nil && h.DueDate.Before(*h.InvoiceDate) {
		errs = append(errs, MsgDueBeforeInvoiceDate)
	}
	if h.TaxRate.Valid && (h.TaxRate.Decimal.IsNegative() || h.TaxRate.Decimal.GreaterThan(maxTaxRate)) {
		errs = append(errs, MsgTaxRateRange)
	}
	if h.TaxRate.Valid && !FitsScale(h.TaxRate.Decimal) {
		errs = append(errs, MsgTaxRatePrecision)
	}
	if h.Status != "" && !IsValidStatus(h.Status) {
		errs = append(errs, MsgInvalidStatus)
	}
	return errs
}

// ItemErrors mensajes de error de una línea.
func ItemErrors(it ItemInput) []string {
	var errs []string
	if strings.TrimSpace(it.Description) == "" {
		errs = append(errs, MsgDescriptionRequired)
	}
	if !it.UnitPrice.Valid || it.UnitPrice.Decimal.IsNegative() {
		errs = append(errs, MsgUnitPriceRequired)
	} else if !FitsScale(it.UnitPrice.Decimal) {
		errs = append(errs, MsgUnitPricePrecision)
	}
	if !it.Quantity.Valid || !it.Quantity.Decimal.IsPositive() {
		errs = append(errs, MsgQuantityPositive)
	} else if !FitsScale(it.Quantity.Decimal) {
		errs = append(errs, MsgQuantityPrecision)
	}
	if it.DurationHours.Valid && it.DurationHours.Decimal.IsNegative() {
		errs = append(errs, MsgDurationNonNegative)
	} else if it.DurationHours.Valid && !FitsScale(it.DurationHours.Decimal) {
		errs = append(errs, MsgDurationPrecision)
	}
	return errs
}

// ValidateItem valida una línea suelta.
func ValidateItem(it ItemInput) error {
	return domain.NewValidationError(ItemErrors(it))
}

// ValidateInvoice valida cabecera y todas las líneas; los errores de línea llevan el prefijo "item N: ".
func ValidateInvoice(h HeaderInput, items []ItemInput) error {
	errs := HeaderErrors(h)
	for i, it := range items {
		for _, msg := range ItemErrors(it) {
			errs = append(errs, fmt.Sprintf("item %d: %s", i+1, msg))
		}
	}
	return domain.NewValidationError(errs)
}

// ── Catálogo de servicios ─────────────────────────────────────────────────────

// ValidateServiceType exige nombre, categoría, tipo de tarificación y precio positivo.
func ValidateServiceType(s *entity.ServiceType) error {
	if s == nil {
		return domain.NewValidationError([]string{MsgServiceNameRequired})
	}
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, MsgServiceNameRequired)
	}
	if strings.TrimSpace(s.Category) == "" {
		errs = append(errs, MsgCategoryRequired)
	}
	if strings.TrimSpace(s.PricingType) == "" {
		errs = append(errs, MsgPricingTypeRequired)
	}
	if !s.UnitPrice.IsPositive() {
		errs = append(errs, MsgUnitPriceRequired)
	} else if !FitsScale(s.UnitPrice) {
		errs = append(errs, MsgUnitPricePrecision)
	}
	if s.DefaultDurationHours.Valid && s.DefaultDurationHours.Decimal.IsNegative() {
		errs = append(errs, MsgDurationNonNegative)
	} else if s.DefaultDurationHours.Valid && !FitsScale(s.DefaultDurationHours.Decimal) {
		errs = append(errs, MsgDurationPrecision)
	}
	return domain.NewValidationError(errs)
}

// ── Perfil del emisor ─────────────────────────────────────────────────────────

// ValidateProfile valida los datos obligatorios y el formato de los opcionales.
func ValidateProfile(p *entity.InstructorProfile) error {
	if p == nil {
		return domain.NewValidationError([]string{MsgBusinessNameRequired})
	}
	var errs []string
	if strings.TrimSpace(p.BusinessName) == "" {
		errs = append(errs, MsgBusinessNameRequired)
	}
	if strings.TrimSpace(p.FirstName) == "" {
		errs = append(errs, MsgFirstNameRequired)
	}
	if strings.TrimSpace(p.LastName) == "" {
		errs = append(errs, MsgLastNameRequired)
	}
	if !IsValidEmail(strings.TrimSpace(p.Email)) {
		errs = append(errs, MsgValidEmailRequired)
	}
	if p.Phone != "" && !IsValidPhone(p.Phone) {
		errs = append(errs, MsgInvalidPhone)
	}
	if p.IBAN != "" && !IsValidIBAN(p.IBAN) {
		errs = append(errs, MsgInvalidIBAN)
	}
	if p.VATNumber != "" && !IsValidBelgianVAT(p.VATNumber) {
		errs = append(errs, MsgInvalidBelgianVAT)
	}
	if p.DefaultTaxRate.IsNegative() || p.DefaultTaxRate.GreaterThan(maxTaxRate) {
		errs = append(errs, MsgTaxRateRange)
	} else if !FitsScale(p.DefaultTaxRate) {
		errs = append(errs, MsgTaxRatePrecision)
	}
	return domain.NewValidationError(errs)
}
