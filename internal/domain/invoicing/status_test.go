package invoicing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
)

var now = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := time.Date(2025, time.June, 15-n, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestOverdue_EnviadaVencida(t *testing.T) {
	over, days := invoicing.Overdue(entity.InvoiceStatusSent, daysAgo(5), now)
	assert.True(t, over)
	assert.Equal(t, 5, days)
}

func TestOverdue_PagadaNuncaVence(t *testing.T) {
	over, days := invoicing.Overdue(entity.InvoiceStatusPaid, daysAgo(5), now)
	assert.False(t, over)
	assert.Zero(t, days)

	over, _ = invoicing.Overdue(entity.InvoiceStatusCancelled, daysAgo(5), now)
	assert.False(t, over)
}

func TestOverdue_SinVencimientoOFutura(t *testing.T) {
	over, _ := invoicing.Overdue(entity.InvoiceStatusDraft, nil, now)
	assert.False(t, over)

	future := now.AddDate(0, 0, 3)
	over, _ = invoicing.Overdue(entity.InvoiceStatusSent, &future, now)
	assert.False(t, over)
}

func TestOverdue_MismoDia(t *testing.T) {
	over, days := invoicing.Overdue(entity.InvoiceStatusSent, daysAgo(0), now)
	assert.True(t, over)
	assert.Zero(t, days)
}

func TestStatusLabelYSeverity(t *testing.T) {
	assert.Equal(t, "Draft", invoicing.StatusLabel("draft"))
	assert.Equal(t, "Cancelled", invoicing.StatusLabel("cancelled"))
	assert.Equal(t, "archived", invoicing.StatusLabel("archived"))

	assert.Equal(t, invoicing.SeverityDanger, invoicing.StatusSeverity(entity.InvoiceStatusSent, true))
	assert.Equal(t, invoicing.SeverityWarning, invoicing.StatusSeverity(entity.InvoiceStatusSent, false))
	assert.Equal(t, invoicing.SeveritySuccess, invoicing.StatusSeverity(entity.InvoiceStatusPaid, false))
	assert.Equal(t, invoicing.SeveritySecondary, invoicing.StatusSeverity(entity.InvoiceStatusDraft, false))
	assert.Equal(t, invoicing.SeverityDanger, invoicing.StatusSeverity(entity.InvoiceStatusOverdue, false))
	assert.Equal(t, invoicing.SeveritySecondary, invoicing.StatusSeverity(entity.InvoiceStatusCancelled, false))
	assert.Equal(t, invoicing.SeveritySecondary, invoicing.StatusSeverity("archived", false))
	assert.Equal(t, invoicing.SeveritySecondary, invoicing.StatusSeverity("", false))
}

func TestComputeStats(t *testing.T) {
	invoices := []*entity.Invoice{
		{Status: entity.InvoiceStatusDraft, TotalAmount: d("100")},
		{Status: entity.InvoiceStatusSent, TotalAmount: d("50"), DueDate: daysAgo(2)},
		{Status: entity.InvoiceStatusPaid, TotalAmount: d("200"), DueDate: daysAgo(40)},
		{Status: entity.InvoiceStatusCancelled, TotalAmount: d("75"), DueDate: daysAgo(40)},
	}
	s := invoicing.ComputeStats(invoices, now)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Draft)
	assert.Equal(t, 1, s.Sent)
	assert.Equal(t, 1, s.Paid)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, "200.00", s.TotalRevenue.StringFixed(2))
	assert.Equal(t, "150.00", s.PendingAmount.StringFixed(2))
	assert.Equal(t, "50.00", s.OverdueAmount.StringFixed(2))
}
