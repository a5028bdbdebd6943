// Package ubl exporta facturas como documentos UBL 2.1 (subconjunto Peppol BIS 3.0)
// y calcula la huella SHA-256 de su forma canónica C14N.
package ubl

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
)

// Exporter implementa billing.EInvoiceExporter.
type Exporter struct{}

var _ billing.EInvoiceExporter = (*Exporter)(nil)

// NewExporter crea el exportador.
func NewExporter() *Exporter { return &Exporter{} }

// Export genera el XML UBL de la factura enriquecida y su digest.
func (e *Exporter) Export(ctx context.Context, inv *dto.InvoiceResponse, issuer *entity.InstructorProfile) (*billing.EInvoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := e.Build(inv, issuer)
	if err != nil {
		return nil, err
	}
	digest, err := Digest(content)
	if err != nil {
		return nil, err
	}
	return &billing.EInvoice{
		Filename: Filename(inv.InvoiceNumber),
		Content:  content,
		Digest:   digest,
	}, nil
}

// Filename nombre de descarga: facture_<número>.xml.
func Filename(invoiceNumber string) string {
	name := strings.NewReplacer("/", "-", "\\", "-", " ", "_").Replace(invoiceNumber)
	return "facture_" + name + ".xml"
}

// Build genera el documento Invoice. Requiere número, cliente y emisor.
func (e *Exporter) Build(inv *dto.InvoiceResponse, issuer *entity.InstructorProfile) ([]byte, error) {
	if inv == nil || inv.InvoiceNumber == "" {
		return nil, fmt.Errorf("ubl: factura sin número")
	}
	if inv.Customer == nil {
		return nil, fmt.Errorf("ubl: factura %s sin cliente", inv.InvoiceNumber)
	}
	if issuer == nil {
		issuer = &entity.InstructorProfile{BusinessName: entity.DefaultBusinessName}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)

	cbc(root, "CustomizationID", CustomizationID)
	cbc(root, "ProfileID", ProfileID)
	cbc(root, "ID", inv.InvoiceNumber)
	cbc(root, "IssueDate", inv.InvoiceDate.Format(dto.DateLayout))
	if inv.DueDate != nil && !inv.DueDate.IsZero() {
		cbc(root, "DueDate", inv.DueDate.Format(dto.DateLayout))
	}
	cbc(root, "InvoiceTypeCode", InvoiceTypeCommercial)
	if inv.Notes != "" {
		cbc(root, "Note", inv.Notes)
	}
	cbc(root, "DocumentCurrencyCode", CurrencyEUR)
	cbc(root, "BuyerReference", inv.InvoiceNumber)

	writeSupplier(root, issuer)
	writeCustomer(root, inv.Customer)
	writePaymentMeans(root, inv, issuer)
	if inv.PaymentTerms != "" {
		terms := root.CreateElement("cac:PaymentTerms")
		cbc(terms, "Note", inv.PaymentTerms)
	}
	writeTaxTotal(root, inv)
	writeMonetaryTotal(root, inv)
	for i, it := range inv.Items {
		writeLine(root, i+1, it, inv.TaxRate)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("ubl: serializar: %w", err)
	}
	return out, nil
}

// Digest base64(SHA-256) de la forma canónica C14N del XML.
func Digest(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("ubl: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// ── Partes ────────────────────────────────────────────────────────────────────

func writeSupplier(root *etree.Element, p *entity.InstructorProfile) {
	party := root.CreateElement("cac:AccountingSupplierParty").CreateElement("cac:Party")
	if p.Email != "" {
		endpoint := cbc(party, "EndpointID", p.Email)
		endpoint.CreateAttr("schemeID", "EM")
	}
	name := p.BusinessName
	if name == "" {
		name = entity.DefaultBusinessName
	}
	cbc(party.CreateElement("cac:PartyName"), "Name", name)
	writeAddress(party, p.Address, p.City, p.PostalCode, p.Country)
	writeTaxScheme(party, p.VATNumber)
	legal := party.CreateElement("cac:PartyLegalEntity")
	registration := p.FullName()
	if registration == "" {
		registration = name
	}
	cbc(legal, "RegistrationName", registration)
	writeContact(party, p.Phone, p.Email)
}

func writeCustomer(root *etree.Element, c *dto.CustomerResponse) {
	party := root.CreateElement("cac:AccountingCustomerParty").CreateElement("cac:Party")
	if c.Email != "" {
		endpoint := cbc(party, "EndpointID", c.Email)
		endpoint.CreateAttr("schemeID", "EM")
	}
	name := c.DisplayName
	if name == "" {
		name = strings.TrimSpace(c.CompanyName + " " + c.FirstName + " " + c.LastName)
	}
	cbc(party.CreateElement("cac:PartyName"), "Name", name)
	writeAddress(party, c.Address, c.City, c.PostalCode, c.Country)
	writeTaxScheme(party, c.VATNumber)
	cbc(party.CreateElement("cac:PartyLegalEntity"), "RegistrationName", name)
	writeContact(party, c.Phone, c.Email)
}

func writeAddress(party *etree.Element, street, city, postal, country string) {
	addr := party.CreateElement("cac:PostalAddress")
	if street != "" {
		cbc(addr, "StreetName", street)
	}
	if city != "" {
		cbc(addr, "CityName", city)
	}
	if postal != "" {
		cbc(addr, "PostalZone", postal)
	}
	cbc(addr.CreateElement("cac:Country"), "IdentificationCode", CountryCode(country))
}

func writeTaxScheme(party *etree.Element, vat string) {
	if vat == "" {
		return
	}
	ts := party.CreateElement("cac:PartyTaxScheme")
	cbc(ts, "CompanyID", strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(vat, ".", ""), " ", "")))
	cbc(ts.CreateElement("cac:TaxScheme"), "ID", TaxSchemeVAT)
}

func writeContact(party *etree.Element, phone, email string) {
	if phone == "" && email == "" {
		return
	}
	contact := party.CreateElement("cac:Contact")
	if phone != "" {
		cbc(contact, "Telephone", phone)
	}
	if email != "" {
		cbc(contact, "ElectronicMail", email)
	}
}

func writePaymentMeans(root *etree.Element, inv *dto.InvoiceResponse, p *entity.InstructorProfile) {
	pm := root.CreateElement("cac:PaymentMeans")
	cbc(pm, "PaymentMeansCode", PaymentMeansTransfer)
	cbc(pm, "PaymentID", inv.InvoiceNumber)
	iban := invoicing.NormalizeIBAN(p.IBAN)
	if iban == "" {
		return
	}
	account := pm.CreateElement("cac:PayeeFinancialAccount")
	cbc(account, "ID", iban)
	if p.BankName != "" {
		cbc(account, "Name", p.BankName)
	}
	if p.BIC != "" {
		cbc(account.CreateElement("cac:FinancialInstitutionBranch"), "ID", p.BIC)
	}
}

func writeTaxTotal(root *etree.Element, inv *dto.InvoiceResponse) {
	tt := root.CreateElement("cac:TaxTotal")
	amount(tt, "TaxAmount", inv.TaxAmount)
	sub := tt.CreateElement("cac:TaxSubtotal")
	amount(sub, "TaxableAmount", inv.Subtotal)
	amount(sub, "TaxAmount", inv.TaxAmount)
	writeTaxCategory(sub.CreateElement("cac:TaxCategory"), inv.TaxRate, true)
}

func writeTaxCategory(cat *etree.Element, rate decimal.Decimal, withReason bool) {
	code := TaxCategoryStandard
	if rate.IsZero() {
		code = TaxCategoryExempt
	}
	cbc(cat, "ID", code)
	cbc(cat, "Percent", rate.StringFixed(2))
	if withReason && code == TaxCategoryExempt {
		cbc(cat, "TaxExemptionReason", ExemptionReason)
	}
	cbc(cat.CreateElement("cac:TaxScheme"), "ID", TaxSchemeVAT)
}

func writeMonetaryTotal(root *etree.Element, inv *dto.InvoiceResponse) {
	lmt := root.CreateElement("cac:LegalMonetaryTotal")
	amount(lmt, "LineExtensionAmount", inv.Subtotal)
	amount(lmt, "TaxExclusiveAmount", inv.Subtotal)
	amount(lmt, "TaxInclusiveAmount", inv.TotalAmount)
	amount(lmt, "PayableAmount", inv.TotalAmount)
}

func writeLine(root *etree.Element, n int, it dto.InvoiceItemResponse, rate decimal.Decimal) {
	line := root.CreateElement("cac:InvoiceLine")
	cbc(line, "ID", fmt.Sprint(n))
	qty := cbc(line, "InvoicedQuantity", it.Quantity.String())
	unit := UnitCodeOne
	if it.DurationHours != nil && it.DurationHours.IsPositive() {
		unit = UnitCodeHour
	}
	qty.CreateAttr("unitCode", unit)
	amount(line, "LineExtensionAmount", it.TotalPrice)
	if it.ServiceDate != nil && !it.ServiceDate.IsZero() {
		period := line.CreateElement("cac:InvoicePeriod")
		cbc(period, "StartDate", it.ServiceDate.Format(dto.DateLayout))
		cbc(period, "EndDate", it.ServiceDate.Format(dto.DateLayout))
	}

	item := line.CreateElement("cac:Item")
	name := it.Description
	if it.ServiceType != nil && it.ServiceType.Name != "" {
		cbc(item, "Description", it.Description)
		name = it.ServiceType.Name
	}
	cbc(item, "Name", name)
	writeTaxCategory(item.CreateElement("cac:ClassifiedTaxCategory"), rate, false)

	amount(line.CreateElement("cac:Price"), "PriceAmount", it.UnitPrice)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func cbc(parent *etree.Element, local, value string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(value)
	return el
}

func amount(parent *etree.Element, local string, v decimal.Decimal) {
	cbc(parent, local, v.StringFixed(2)).CreateAttr("currencyID", CurrencyEUR)
}

var countryNames = map[string]string{
	"belgique": "BE", "belgie": "BE", "belgië": "BE", "belgium": "BE",
	"france": "FR", "luxembourg": "LU", "nederland": "NL", "pays-bas": "NL",
	"allemagne": "DE", "deutschland": "DE", "germany": "DE",
}

// CountryCode ISO 3166-1 alpha-2 a partir de un código o nombre libre. Por defecto BE.
func CountryCode(country string) string {
	c := strings.TrimSpace(country)
	if len(c) == 2 {
		return strings.ToUpper(c)
	}
	if code, ok := countryNames[strings.ToLower(c)]; ok {
		return code
	}
	return DefaultCountryCode
}
