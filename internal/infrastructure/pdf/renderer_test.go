package pdf

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

func sampleInvoice() *dto.InvoiceResponse {
	hours := decimal.NewFromInt(2)
	served := dto.NewDate(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	due := dto.NewDate(time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC))
	return &dto.InvoiceResponse{
		ID:            "inv-1",
		InvoiceNumber: "2025-03-0007",
		InvoiceDate:   dto.NewDate(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)),
		DueDate:       &due,
		Status:        "sent",
		Subtotal:      decimal.NewFromInt(100),
		TaxRate:       decimal.NewFromInt(21),
		TaxAmount:     decimal.NewFromInt(21),
		TotalAmount:   decimal.NewFromInt(121),
		PaymentTerms:  "Paiement à 30 jours",
		Notes:         "Merci pour votre confiance",
		Customer: &dto.CustomerResponse{
			ClientType: entity.ClientTypeIndividual,
			FirstName:  "Léa",
			LastName:   "Martin",
			Email:      "lea@martin.be",
			City:       "Liège",
			PostalCode: "4000",
		},
		Items: []dto.InvoiceItemResponse{{
			ID:            "it-1",
			Description:   "Leçon de conduite",
			Quantity:      decimal.NewFromInt(2),
			UnitPrice:     decimal.NewFromInt(50),
			TotalPrice:    decimal.NewFromInt(100),
			DurationHours: &hours,
			ServiceDate:   &served,
		}},
	}
}

func sampleIssuer() *entity.InstructorProfile {
	return &entity.InstructorProfile{
		BusinessName: "Auto-École Meuse",
		FirstName:    "Jean",
		LastName:     "Dubois",
		Email:        "jean@meuse.be",
		IBAN:         "BE68539007547034",
		BankName:     "Belfius",
	}
}

func TestBuildView_FormatoYTTC(t *testing.T) {
	v := buildView(sampleInvoice(), sampleIssuer())

	assert.Equal(t, "15/03/2025", v.Date)
	assert.Equal(t, "14/04/2025", v.DueDate)
	assert.Equal(t, "€121.00", v.Total)
	assert.Equal(t, "21", v.TaxRate)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "€121.00", v.Items[0].TotalTTC)
	assert.Equal(t, "10/03/2025", v.Items[0].ServiceDate)
	assert.Equal(t, "2h", v.Items[0].Duration)
	require.NotNil(t, v.Customer)
	assert.Equal(t, "Léa Martin", v.Customer.Name)
	assert.Equal(t, "4000 Liège", v.Customer.CityLine)
}

func TestBuildView_TextosPorDefecto(t *testing.T) {
	inv := &dto.InvoiceResponse{
		InvoiceNumber: "2025-03-0001",
		Items:         []dto.InvoiceItemResponse{{Description: "  "}},
	}
	v := buildView(inv, nil)

	assert.Equal(t, entity.DefaultBusinessName, v.Business)
	assert.Nil(t, v.Customer)
	assert.Equal(t, placeholderDate, v.Date)
	assert.Equal(t, placeholderService, v.Items[0].Description)
	assert.Equal(t, []string{placeholderPhone, placeholderEmail, placeholderAddress, placeholderVAT}, v.FooterItems)
}

func TestCustomerName(t *testing.T) {
	assert.Equal(t, placeholderCustomer, customerName(nil))
	assert.Equal(t, placeholderCompany, customerName(&dto.CustomerResponse{ClientType: entity.ClientTypeCompany}))
	assert.Equal(t, "Transports SA", customerName(&dto.CustomerResponse{ClientType: entity.ClientTypeCompany, CompanyName: "Transports SA"}))
	assert.Equal(t, placeholderIndividual, customerName(&dto.CustomerResponse{ClientType: entity.ClientTypeIndividual}))
}

func TestVectorRenderer(t *testing.T) {
	r := NewVectorRenderer()
	assert.Equal(t, RendererVector, r.Name())

	doc, err := r.Render(context.Background(), sampleInvoice(), sampleIssuer())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc.Content), "%PDF"))
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Empty(t, doc.Preview)

	empty := sampleInvoice()
	empty.Items = nil
	empty.Customer = nil
	doc, err = r.Render(context.Background(), empty, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc.Content), "%PDF"))
}

func TestVectorRenderer_FacturaLargaEnUnaPagina(t *testing.T) {
	long := sampleInvoice()
	base := long.Items[0]
	long.Items = nil
	for i := 0; i < 60; i++ {
		long.Items = append(long.Items, base)
	}

	doc, err := NewVectorRenderer().Render(context.Background(), long, sampleIssuer())
	require.NoError(t, err)
	assert.Contains(t, string(doc.Content), "/Count 1\n")
}

func TestFitRows(t *testing.T) {
	cases := []struct {
		name     string
		n        int
		y, limit float64
		want     int
	}{
		{"caben todas", 5, 100, 207, 5},
		{"justo el límite", 13, 100, 204, 13},
		{"se reserva la fila del aviso", 60, 100, 207, 12},
		{"sin espacio", 3, 210, 207, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, fitRows(tc.n, tc.y, tc.limit, itemRowHeight))
		})
	}
}

func TestVectorRenderer_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewVectorRenderer().Render(ctx, sampleInvoice(), sampleIssuer())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTemplateRenderer(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	assert.Equal(t, RendererTemplate, r.Name())

	doc, err := r.Render(context.Background(), sampleInvoice(), sampleIssuer())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(doc.Content), "%PDF"))

	html, ok := doc.PreviewHTML()
	require.True(t, ok)
	assert.Contains(t, html, "2025-03-0007")
	assert.Contains(t, html, "Léa Martin")
	assert.Contains(t, html, "Référence de paiement")
	assert.Contains(t, html, "BE68539007547034")
	assert.Contains(t, html, "€121.00")
}

func TestTemplateRenderer_SinLineasNiCliente(t *testing.T) {
	r, err := NewTemplateRenderer()
	require.NoError(t, err)

	inv := sampleInvoice()
	inv.Items = nil
	inv.Customer = nil
	doc, err := r.Render(context.Background(), inv, &entity.InstructorProfile{})
	require.NoError(t, err)

	html, _ := doc.PreviewHTML()
	assert.Contains(t, html, emptyItemsLabel)
	assert.Contains(t, html, placeholderCustomer)
	assert.Contains(t, html, placeholderIBAN)
}

func TestSplitEvery(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, splitEvery("abcdefg", 3))
	assert.Equal(t, []string{"éé", "é"}, splitEvery("ééé", 2))
	assert.Nil(t, splitEvery("", 3))
}
