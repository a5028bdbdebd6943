// Package invoicing contiene las reglas puras de facturación: totales, numeración,
// estado derivado (vencimiento) y validación de entradas. Sin I/O.
package invoicing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Line es la vista mínima de una línea para el cálculo de totales.
// UnitPrice ausente cuenta como 0; Quantity ausente cuenta como 1.
type Line struct {
	UnitPrice decimal.NullDecimal
	Quantity  decimal.NullDecimal
}

// Totals resultado del cálculo, redondeado a 2 decimales.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// ComputeTotals calcula subtotal, impuesto y total de un conjunto de líneas.
//
//	subtotal = Σ precio × cantidad
//	impuesto = subtotal × tasa / 100
//	total    = subtotal + impuesto
//
// Subtotal e impuesto se redondean al céntimo (mitad lejos de cero) y el total es su suma
// exacta, de modo que TotalAmount == Subtotal + TaxAmount siempre.
func ComputeTotals(lines []Line, taxRate decimal.Decimal) Totals {
	sum := decimal.Zero
	for _, l := range lines {
		price := decimal.Zero
		if l.UnitPrice.Valid {
			price = l.UnitPrice.Decimal
		}
		qty := decimal.NewFromInt(1)
		if l.Quantity.Valid {
			qty = l.Quantity.Decimal
		}
		sum = sum.Add(price.Mul(qty))
	}
	tax := sum.Mul(taxRate).Div(hundred)

	subtotal := sum.Round(2)
	taxAmount := tax.Round(2)
	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		TotalAmount: subtotal.Add(taxAmount),
	}
}

// LineTotal total_price de una línea.
func LineTotal(unitPrice, quantity decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(quantity).Round(2)
}

// LinesFromItems adapta las líneas persistidas al cálculo de totales.
func LinesFromItems(items []*entity.InvoiceItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		lines = append(lines, Line{
			UnitPrice: decimal.NewNullDecimal(it.UnitPrice),
			Quantity:  decimal.NewNullDecimal(it.Quantity),
		})
	}
	return lines
}

// ApplyTotals copia los totales a la cabecera.
func ApplyTotals(inv *entity.Invoice, t Totals) {
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.TotalAmount = t.TotalAmount
}
