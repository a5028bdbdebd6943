// Package analytics contiene el resumen del panel principal: KPIs de facturación,
// clientes y completitud del perfil del emisor.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
)

const dashboardRecentInvoices = 5 // número de facturas en el widget del dashboard

// InvoiceSource lecturas de facturas (billing.InvoiceUseCase).
type InvoiceSource interface {
	List(ctx context.Context, userID string) ([]dto.InvoiceResponse, error)
	Stats(ctx context.Context, userID string) (*dto.InvoiceStatsResponse, error)
}

// CustomerSource estadísticas de clientes (billing.CustomerUseCase).
type CustomerSource interface {
	Stats(ctx context.Context, userID string) (*dto.CustomerStatsResponse, error)
}

// ProfileSource completitud del perfil (billing.ProfileUseCase).
type ProfileSource interface {
	CompletionStatus(ctx context.Context, userID string) (*dto.ProfileCompletionResponse, error)
}

// DashboardUseCase genera el resumen del panel del usuario.
//
// No accede a repositorios: compone los casos de uso de facturación, que ya derivan
// estados vencidos y totales.
type DashboardUseCase struct {
	invoices  InvoiceSource
	customers CustomerSource
	profiles  ProfileSource
	now       func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(invoices InvoiceSource, customers CustomerSource, profiles ProfileSource) *DashboardUseCase {
	return &DashboardUseCase{invoices: invoices, customers: customers, profiles: profiles, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO del usuario.
//
// Cuatro lecturas en paralelo:
//  1. Stats de facturas      → Invoices
//  2. List de facturas       → RecentInvoices (las 5 más recientes)
//  3. Stats de clientes      → Customers
//  4. CompletionStatus       → Profile
func (uc *DashboardUseCase) GetSummary(ctx context.Context, userID string) (*dto.DashboardSummaryDTO, error) {
	type invoiceStatsResult struct {
		stats *dto.InvoiceStatsResponse
		err   error
	}
	type invoiceListResult struct {
		list []dto.InvoiceResponse
		err  error
	}
	type customerStatsResult struct {
		stats *dto.CustomerStatsResponse
		err   error
	}
	type profileResult struct {
		status *dto.ProfileCompletionResponse
		err    error
	}

	statsCh := make(chan invoiceStatsResult, 1)
	listCh := make(chan invoiceListResult, 1)
	customersCh := make(chan customerStatsResult, 1)
	profileCh := make(chan profileResult, 1)

	go func() {
		s, err := uc.invoices.Stats(ctx, userID)
		statsCh <- invoiceStatsResult{s, err}
	}()
	go func() {
		l, err := uc.invoices.List(ctx, userID)
		listCh <- invoiceListResult{l, err}
	}()
	go func() {
		s, err := uc.customers.Stats(ctx, userID)
		customersCh <- customerStatsResult{s, err}
	}()
	go func() {
		s, err := uc.profiles.CompletionStatus(ctx, userID)
		profileCh <- profileResult{s, err}
	}()

	stats := <-statsCh
	list := <-listCh
	customers := <-customersCh
	profile := <-profileCh

	if stats.err != nil {
		return nil, fmt.Errorf("dashboard: estadísticas de facturas: %w", stats.err)
	}
	if list.err != nil {
		return nil, fmt.Errorf("dashboard: facturas recientes: %w", list.err)
	}
	if customers.err != nil {
		return nil, fmt.Errorf("dashboard: estadísticas de clientes: %w", customers.err)
	}
	if profile.err != nil {
		return nil, fmt.Errorf("dashboard: perfil: %w", profile.err)
	}

	recent := list.list
	if len(recent) > dashboardRecentInvoices {
		recent = recent[:dashboardRecentInvoices]
	}
	if recent == nil {
		recent = []dto.InvoiceResponse{}
	}

	return &dto.DashboardSummaryDTO{
		Invoices:       *stats.stats,
		Customers:      *customers.stats,
		Profile:        *profile.status,
		RecentInvoices: recent,
		DateLabel:      uc.now().Format("January 2006"),
	}, nil
}
