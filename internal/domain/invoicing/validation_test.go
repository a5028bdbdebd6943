package invoicing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
)

func validationErrors(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	return ve
}

func TestValidateCustomer_ParticularSinNombres(t *testing.T) {
	err := invoicing.ValidateCustomer(&entity.Customer{ClientType: entity.ClientTypeIndividual, Email: "a@b.com"})
	ve := validationErrors(t, err)
	assert.True(t, ve.Has("first name required"))
	assert.True(t, ve.Has("last name required"))
}

func TestValidateCustomer_EmpresaValida(t *testing.T) {
	err := invoicing.ValidateCustomer(&entity.Customer{
		ClientType:  entity.ClientTypeCompany,
		CompanyName: "Acme",
		Email:       "a@b.com",
	})
	assert.NoError(t, err)
}

func TestValidateCustomer_Formatos(t *testing.T) {
	err := invoicing.ValidateCustomer(&entity.Customer{
		ClientType: entity.ClientTypeCompany,
		Email:      "no-es-email",
		Phone:      "12",
	})
	ve := validationErrors(t, err)
	assert.ElementsMatch(t, []string{
		invoicing.MsgValidEmailRequired,
		invoicing.MsgCompanyNameRequired,
		invoicing.MsgInvalidPhone,
	}, ve.Errors)
}

func TestValidateInvoice_VencimientoAnterior(t *testing.T) {
	inv := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	due := inv.AddDate(0, 0, -1)

	// Falla aunque el resto de campos sea inválido o válido.
	for _, h := range []invoicing.HeaderInput{
		{CustomerID: "c1", InvoiceDate: &inv, DueDate: &due},
		{InvoiceDate: &inv, DueDate: &due, Status: "bogus", TaxRate: decimal.NewNullDecimal(d("150"))},
	} {
		ve := validationErrors(t, invoicing.ValidateInvoice(h, nil))
		assert.True(t, ve.Has(invoicing.MsgDueBeforeInvoiceDate))
	}
}

func TestValidateInvoice_ErroresDeLinea(t *testing.T) {
	inv := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	h := invoicing.HeaderInput{CustomerID: "c1", InvoiceDate: &inv}
	items := []invoicing.ItemInput{
		{Description: "Leçon de conduite", UnitPrice: nd("50"), Quantity: nd("1")},
		{Description: "  ", UnitPrice: nd("-1"), Quantity: nd("0"), DurationHours: nd("-2")},
		{Description: "Examen"},
	}
	ve := validationErrors(t, invoicing.ValidateInvoice(h, items))
	assert.Equal(t, []string{
		"item 2: " + invoicing.MsgDescriptionRequired,
		"item 2: " + invoicing.MsgUnitPriceRequired,
		"item 2: " + invoicing.MsgQuantityPositive,
		"item 2: " + invoicing.MsgDurationNonNegative,
		"item 3: " + invoicing.MsgUnitPriceRequired,
		"item 3: " + invoicing.MsgQuantityPositive,
	}, ve.Errors)
}

func TestValidateInvoice_Valida(t *testing.T) {
	inv := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	due := inv.AddDate(0, 0, 30)
	h := invoicing.HeaderInput{
		CustomerID:  "c1",
		InvoiceDate: &inv,
		DueDate:     &due,
		TaxRate:     decimal.NewNullDecimal(d("21")),
		Status:      entity.InvoiceStatusOverdue,
	}
	items := []invoicing.ItemInput{{Description: "Leçon", UnitPrice: nd("0"), Quantity: nd("1")}}
	assert.NoError(t, invoicing.ValidateInvoice(h, items))
}

func TestValidateServiceType(t *testing.T) {
	ve := validationErrors(t, invoicing.ValidateServiceType(&entity.ServiceType{
		UnitPrice:            d("0"),
		DefaultDurationHours: nd("-1"),
	}))
	assert.ElementsMatch(t, []string{
		invoicing.MsgServiceNameRequired,
		invoicing.MsgCategoryRequired,
		invoicing.MsgPricingTypeRequired,
		invoicing.MsgUnitPriceRequired,
		invoicing.MsgDurationNonNegative,
	}, ve.Errors)

	assert.NoError(t, invoicing.ValidateServiceType(&entity.ServiceType{
		Name:        "Leçon 1h",
		Category:    "lesson",
		PricingType: entity.PricingPerHour,
		UnitPrice:   d("55"),
	}))
}

func TestValidateProfile(t *testing.T) {
	p := &entity.InstructorProfile{
		BusinessName:   "Auto-école Dupont",
		FirstName:      "Marie",
		LastName:       "Dupont",
		Email:          "marie@dupont.be",
		IBAN:           "be68 5390 0754 7034",
		VATNumber:      "BE 0123456789",
		DefaultTaxRate: d("21"),
	}
	assert.NoError(t, invoicing.ValidateProfile(p))

	p.IBAN = "BE68-XYZ"
	p.VATNumber = "FR123"
	p.DefaultTaxRate = d("101")
	ve := validationErrors(t, invoicing.ValidateProfile(p))
	assert.ElementsMatch(t, []string{
		invoicing.MsgInvalidIBAN,
		invoicing.MsgInvalidBelgianVAT,
		invoicing.MsgTaxRateRange,
	}, ve.Errors)
}

func TestItemErrors_EscalaDeDosDecimales(t *testing.T) {
	cases := []struct {
		name string
		item invoicing.ItemInput
		want []string
	}{
		{"céntimos exactos", invoicing.ItemInput{Description: "Leçon", UnitPrice: nd("49.99"), Quantity: nd("1.50")}, nil},
		{"precio por debajo del céntimo", invoicing.ItemInput{Description: "Leçon", UnitPrice: nd("0.005"), Quantity: nd("1")},
			[]string{invoicing.MsgUnitPricePrecision}},
		{"cantidad que se guardaría como 0", invoicing.ItemInput{Description: "Leçon", UnitPrice: nd("50"), Quantity: nd("0.004")},
			[]string{invoicing.MsgQuantityPrecision}},
		{"duración con tres decimales", invoicing.ItemInput{Description: "Leçon", UnitPrice: nd("50"), Quantity: nd("1"), DurationHours: nd("1.125")},
			[]string{invoicing.MsgDurationPrecision}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, invoicing.ItemErrors(tc.item))
		})
	}
}

func TestValidateInvoice_TasaConTresDecimales(t *testing.T) {
	inv := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	h := invoicing.HeaderInput{CustomerID: "c1", InvoiceDate: &inv, TaxRate: nd("20.999")}
	ve := validationErrors(t, invoicing.ValidateInvoice(h, nil))
	assert.Equal(t, []string{invoicing.MsgTaxRatePrecision}, ve.Errors)
}

func TestValidateServiceType_PrecioPorDebajoDelCentimo(t *testing.T) {
	ve := validationErrors(t, invoicing.ValidateServiceType(&entity.ServiceType{
		Name:                 "Leçon 1h",
		Category:             "lesson",
		PricingType:          entity.PricingPerHour,
		UnitPrice:            d("55.555"),
		DefaultDurationHours: nd("0.333"),
	}))
	assert.ElementsMatch(t, []string{invoicing.MsgUnitPricePrecision, invoicing.MsgDurationPrecision}, ve.Errors)
}

func TestFitsScale(t *testing.T) {
	assert.True(t, invoicing.FitsScale(d("121")))
	assert.True(t, invoicing.FitsScale(d("0.10")))
	assert.False(t, invoicing.FitsScale(d("0.005")))
}
