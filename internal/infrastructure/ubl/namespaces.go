package ubl

// Namespaces UBL 2.1 y perfil Peppol BIS Billing 3.0.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	CustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:fdc:peppol.eu:2017:poacc:billing:3.0"
	ProfileID       = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
)

// Códigos UNCL1001 (tipo), UNCL4461 (medio de pago) y UNECE rec. 20 (unidades).
const (
	InvoiceTypeCommercial = "380"
	CurrencyEUR           = "EUR"
	PaymentMeansTransfer  = "58"
	UnitCodeOne           = "C62"
	UnitCodeHour          = "HUR"
	TaxSchemeVAT          = "VAT"
	TaxCategoryStandard   = "S"
	TaxCategoryExempt     = "E"
	DefaultCountryCode    = "BE"
	ExemptionReason       = "Exonération de TVA"
)
