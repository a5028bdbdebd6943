package invoicing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func TestComputeTotals_LeccionSimple(t *testing.T) {
	got := invoicing.ComputeTotals([]invoicing.Line{{UnitPrice: nd("50"), Quantity: nd("2")}}, d("21"))

	assert.Equal(t, "100.00", got.Subtotal.StringFixed(2))
	assert.Equal(t, "21.00", got.TaxAmount.StringFixed(2))
	assert.Equal(t, "121.00", got.TotalAmount.StringFixed(2))
}

func TestComputeTotals_SinLineas(t *testing.T) {
	for _, rate := range []string{"0", "6", "21", "100"} {
		got := invoicing.ComputeTotals(nil, d(rate))
		assert.True(t, got.Subtotal.IsZero(), "rate %s", rate)
		assert.True(t, got.TaxAmount.IsZero(), "rate %s", rate)
		assert.True(t, got.TotalAmount.IsZero(), "rate %s", rate)
	}
}

func TestComputeTotals_ValoresAusentes(t *testing.T) {
	lines := []invoicing.Line{
		{UnitPrice: nd("40")}, // cantidad ausente → 1
		{Quantity: nd("3")},   // precio ausente → 0
		{UnitPrice: nd("12.5"), Quantity: nd("2")},
	}
	got := invoicing.ComputeTotals(lines, d("0"))
	assert.Equal(t, "65.00", got.Subtotal.StringFixed(2))
	assert.True(t, got.TaxAmount.IsZero())
}

func TestComputeTotals_TotalEsSumaExacta(t *testing.T) {
	cases := []struct {
		name  string
		lines []invoicing.Line
		rate  string
	}{
		{"redondeo hacia arriba", []invoicing.Line{{UnitPrice: nd("33.335"), Quantity: nd("1")}}, "21"},
		{"fracción de hora", []invoicing.Line{{UnitPrice: nd("47.50"), Quantity: nd("1.5")}}, "21"},
		{"varias líneas", []invoicing.Line{
			{UnitPrice: nd("0.01"), Quantity: nd("7")},
			{UnitPrice: nd("19.99"), Quantity: nd("3")},
		}, "6"},
		{"tasa máxima", []invoicing.Line{{UnitPrice: nd("10.005"), Quantity: nd("1")}}, "100"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := invoicing.ComputeTotals(tc.lines, d(tc.rate))
			assert.True(t, got.TotalAmount.Equal(got.Subtotal.Add(got.TaxAmount)))
			assert.True(t, got.Subtotal.Equal(got.Subtotal.Round(2)))
			assert.True(t, got.TaxAmount.Equal(got.TaxAmount.Round(2)))
		})
	}
}

func TestComputeTotals_RedondeoMitadLejosDeCero(t *testing.T) {
	got := invoicing.ComputeTotals([]invoicing.Line{{UnitPrice: nd("0.125"), Quantity: nd("1")}}, d("0"))
	assert.Equal(t, "0.13", got.Subtotal.StringFixed(2))
}

func TestComputeTotals_Idempotente(t *testing.T) {
	items := []*entity.InvoiceItem{
		{UnitPrice: d("45"), Quantity: d("2")},
		{UnitPrice: d("60"), Quantity: d("1.25")},
	}
	first := invoicing.ComputeTotals(invoicing.LinesFromItems(items), d("21"))
	second := invoicing.ComputeTotals(invoicing.LinesFromItems(items), d("21"))

	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.TaxAmount.String(), second.TaxAmount.String())
	assert.Equal(t, first.TotalAmount.String(), second.TotalAmount.String())
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "71.25", invoicing.LineTotal(d("47.50"), d("1.5")).StringFixed(2))
}
