package analytics_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/application/analytics"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
)

type stubInvoices struct {
	list    []dto.InvoiceResponse
	listErr error
}

func (s stubInvoices) List(context.Context, string) ([]dto.InvoiceResponse, error) {
	return s.list, s.listErr
}

func (s stubInvoices) Stats(context.Context, string) (*dto.InvoiceStatsResponse, error) {
	return &dto.InvoiceStatsResponse{TotalInvoices: len(s.list), TotalRevenue: decimal.NewFromInt(150)}, nil
}

type stubCustomers struct{}

func (stubCustomers) Stats(context.Context, string) (*dto.CustomerStatsResponse, error) {
	return &dto.CustomerStatsResponse{TotalCustomers: 2}, nil
}

type stubProfiles struct{}

func (stubProfiles) CompletionStatus(context.Context, string) (*dto.ProfileCompletionResponse, error) {
	return &dto.ProfileCompletionResponse{CompletionPercentage: 40}, nil
}

func TestGetSummary(t *testing.T) {
	var list []dto.InvoiceResponse
	for i := 1; i <= 7; i++ {
		list = append(list, dto.InvoiceResponse{ID: fmt.Sprintf("inv-%d", i)})
	}
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	uc := analytics.NewDashboardUseCase(stubInvoices{list: list}, stubCustomers{}, stubProfiles{}).
		WithClock(func() time.Time { return now })

	got, err := uc.GetSummary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "June 2025", got.DateLabel)
	assert.Equal(t, 7, got.Invoices.TotalInvoices)
	assert.Equal(t, 2, got.Customers.TotalCustomers)
	assert.Equal(t, 40, got.Profile.CompletionPercentage)
	require.Len(t, got.RecentInvoices, 5)
	assert.Equal(t, "inv-1", got.RecentInvoices[0].ID)
}

func TestGetSummary_SinFacturas(t *testing.T) {
	uc := analytics.NewDashboardUseCase(stubInvoices{}, stubCustomers{}, stubProfiles{})
	got, err := uc.GetSummary(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, got.RecentInvoices)
	assert.Empty(t, got.RecentInvoices)
}

func TestGetSummary_PropagaErrores(t *testing.T) {
	boom := errors.New("db caída")
	uc := analytics.NewDashboardUseCase(stubInvoices{listErr: boom}, stubCustomers{}, stubProfiles{})
	_, err := uc.GetSummary(context.Background(), "user-1")
	assert.ErrorIs(t, err, boom)
}
