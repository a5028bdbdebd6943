package pdf

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// Textos de sustitución para campos ausentes.
const (
	placeholderCustomer   = "Client non spécifié"
	placeholderCompany    = "Société"
	placeholderIndividual = "Client"
	placeholderService    = "Service non spécifié"
	placeholderDate       = "Date non spécifiée"
	placeholderIBAN       = "IBAN à fournir"
	placeholderBank       = "Banque à préciser"
	placeholderPhone      = "+32 XXX XX XX XX"
	placeholderEmail      = "contact@ecole-conduite.be"
	placeholderAddress    = "Adresse de l'école"
	placeholderVAT        = "TVA: BE XXXX.XXX.XXX"
	businessTagline       = "École de conduite professionnelle"
	emptyItemsLabel       = "Aucune prestation facturée"
	dateLayout            = "02/01/2006"
)

// invoiceView datos ya formateados que comparten las dos estrategias de renderizado.
type invoiceView struct {
	Number       string
	Date         string
	DueDate      string
	Notes        string
	PaymentTerms string

	Business    string
	Issuer      issuerView
	Customer    *customerView
	Items       []itemView
	TaxRate     string
	Subtotal    string
	TaxAmount   string
	Total       string
	PaymentRef  string
	FooterItems []string
}

type issuerView struct {
	Business      string
	FullName      string
	VATNumber     string
	LicenseNumber string
	Address       string
	CityLine      string
	Country       string
	Email         string
	Phone         string
	IBAN          string
	BIC           string
	BankName      string
}

type customerView struct {
	Name          string
	IsCompany     bool
	ContactPerson string
	Address       string
	CityLine      string
	Country       string
	Email         string
	Phone         string
	VATNumber     string
}

type itemView struct {
	Index       int
	Description string
	ServiceDate string // vacío si no hay fecha de servicio
	Duration    string // vacío si no hay duración
	UnitPrice   string
	Quantity    string
	Total       string
	TotalTTC    string
}

// money formato "€12.50".
func money(d decimal.Decimal) string {
	return "€" + d.StringFixed(2)
}

// formatDate dd/mm/yyyy o el texto de fecha ausente.
func formatDate(d *dto.Date) string {
	if d == nil || d.IsZero() {
		return placeholderDate
	}
	return d.Format(dateLayout)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return fallback
}

func cityLine(postalCode, city string) string {
	return strings.TrimSpace(postalCode + " " + city)
}

// customerName razón social, "nombre apellido" o los textos por defecto.
func customerName(c *dto.CustomerResponse) string {
	if c == nil {
		return placeholderCustomer
	}
	if c.ClientType == entity.ClientTypeCompany {
		return orDefault(c.CompanyName, placeholderCompany)
	}
	return orDefault(strings.TrimSpace(c.FirstName+" "+c.LastName), placeholderIndividual)
}

func buildView(inv *dto.InvoiceResponse, issuer *entity.InstructorProfile) invoiceView {
	if issuer == nil {
		issuer = &entity.InstructorProfile{}
	}
	rate := inv.TaxRate // 0 es una tasa válida (exento)
	business := orDefault(issuer.BusinessName, entity.DefaultBusinessName)

	v := invoiceView{
		Number:       inv.InvoiceNumber,
		Date:         formatDate(&inv.InvoiceDate),
		DueDate:      formatDate(inv.DueDate),
		Notes:        inv.Notes,
		PaymentTerms: inv.PaymentTerms,
		Business:     business,
		Issuer: issuerView{
			Business:      business,
			FullName:      issuer.FullName(),
			VATNumber:     issuer.VATNumber,
			LicenseNumber: issuer.LicenseNumber,
			Address:       issuer.Address,
			CityLine:      cityLine(issuer.PostalCode, issuer.City),
			Country:       issuer.Country,
			Email:         issuer.Email,
			Phone:         issuer.Phone,
			IBAN:          issuer.IBAN,
			BIC:           issuer.BIC,
			BankName:      issuer.BankName,
		},
		TaxRate:    rate.String(),
		Subtotal:   money(inv.Subtotal),
		TaxAmount:  money(inv.TaxAmount),
		Total:      money(inv.TotalAmount),
		PaymentRef: inv.InvoiceNumber,
		FooterItems: []string{
			orDefault(issuer.Phone, placeholderPhone),
			orDefault(issuer.Email, placeholderEmail),
			orDefault(issuer.Address, placeholderAddress),
			orDefault(issuer.VATNumber, placeholderVAT),
		},
	}

	if c := inv.Customer; c != nil {
		v.Customer = &customerView{
			Name:          customerName(c),
			IsCompany:     c.ClientType == entity.ClientTypeCompany,
			ContactPerson: c.ContactPerson,
			Address:       c.Address,
			CityLine:      cityLine(c.PostalCode, c.City),
			Country:       c.Country,
			Email:         c.Email,
			Phone:         c.Phone,
			VATNumber:     c.VATNumber,
		}
	}

	hundred := decimal.NewFromInt(100)
	for i, it := range inv.Items {
		ttc := it.TotalPrice.Mul(hundred.Add(rate)).Div(hundred)
		item := itemView{
			Index:       i + 1,
			Description: orDefault(it.Description, placeholderService),
			UnitPrice:   money(it.UnitPrice),
			Quantity:    it.Quantity.String(),
			Total:       money(it.TotalPrice),
			TotalTTC:    money(ttc),
		}
		if it.ServiceDate != nil && !it.ServiceDate.IsZero() {
			item.ServiceDate = it.ServiceDate.Format(dateLayout)
		}
		if it.DurationHours != nil && it.DurationHours.IsPositive() {
			item.Duration = fmt.Sprintf("%sh", it.DurationHours.String())
		}
		v.Items = append(v.Items, item)
	}
	return v
}
