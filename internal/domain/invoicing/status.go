package invoicing

import (
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// Severidades de presentación de un estado.
const (
	SeverityDanger    = "danger"
	SeveritySecondary = "secondary"
	SeverityWarning   = "warning"
	SeveritySuccess   = "success"
)

var titleCaser = cases.Title(language.English)

// IsValidStatus indica si s pertenece a la enumeración almacenada.
func IsValidStatus(s string) bool {
	return slices.Contains(entity.InvoiceStatuses, s)
}

// StatusLabel etiqueta legible ("draft" → "Draft"). Valores desconocidos se devuelven tal cual.
func StatusLabel(s string) string {
	if !IsValidStatus(s) {
		return s
	}
	return titleCaser.String(s)
}

// StatusSeverity severidad visual: el vencimiento derivado tiene prioridad sobre el estado almacenado.
func StatusSeverity(status string, overdue bool) string {
	if overdue {
		return SeverityDanger
	}
	switch status {
	case entity.InvoiceStatusSent:
		return SeverityWarning
	case entity.InvoiceStatusPaid:
		return SeveritySuccess
	case entity.InvoiceStatusOverdue:
		return SeverityDanger
	}
	// draft, cancelled y cualquier estado desconocido
	return SeveritySecondary
}

// Overdue deriva el vencimiento: estado distinto de paid/cancelled y fecha de vencimiento anterior a now.
// days es el número de días completos transcurridos desde el vencimiento (0 si no está vencida).
func Overdue(status string, due *time.Time, now time.Time) (overdue bool, days int) {
	if status == entity.InvoiceStatusPaid || status == entity.InvoiceStatusCancelled {
		return false, 0
	}
	if due == nil || !due.Before(now) {
		return false, 0
	}
	return true, int(math.Floor(now.Sub(*due).Hours() / 24))
}

// Stats agregados del listado de facturas de un usuario.
type Stats struct {
	Total         int
	Draft         int
	Sent          int
	Paid          int
	Overdue       int // derivado, no el estado almacenado
	Cancelled     int
	TotalRevenue  decimal.Decimal // pagadas
	PendingAmount decimal.Decimal // draft + sent
	OverdueAmount decimal.Decimal
}

// ComputeStats recorre todas las facturas una vez.
func ComputeStats(invoices []*entity.Invoice, now time.Time) Stats {
	s := Stats{
		TotalRevenue:  decimal.Zero,
		PendingAmount: decimal.Zero,
		OverdueAmount: decimal.Zero,
	}
	for _, inv := range invoices {
		if inv == nil {
			continue
		}
		s.Total++
		switch inv.Status {
		case entity.InvoiceStatusDraft:
			s.Draft++
			s.PendingAmount = s.PendingAmount.Add(inv.TotalAmount)
		case entity.InvoiceStatusSent:
			s.Sent++
			s.PendingAmount = s.PendingAmount.Add(inv.TotalAmount)
		case entity.InvoiceStatusPaid:
			s.Paid++
			s.TotalRevenue = s.TotalRevenue.Add(inv.TotalAmount)
		case entity.InvoiceStatusCancelled:
			s.Cancelled++
		}
		if over, _ := Overdue(inv.Status, inv.DueDate, now); over {
			s.Overdue++
			s.OverdueAmount = s.OverdueAmount.Add(inv.TotalAmount)
		}
	}
	return s
}
