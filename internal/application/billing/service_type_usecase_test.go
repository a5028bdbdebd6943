package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

func TestServiceTypeCreate_ActivoPorDefecto(t *testing.T) {
	f := newFixture()
	got, err := f.services.Create(context.Background(), testUserID, dto.ServiceTypeRequest{
		Name:                 "Examen blanc",
		Category:             "exam",
		PricingType:          entity.PricingFixed,
		UnitPrice:            dp("120"),
		DefaultDurationHours: dp("1.5"),
	})
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.DefaultDurationHours)
	assert.Equal(t, "1.5", got.DefaultDurationHours.String())
}

func TestServiceTypeCreate_Validacion(t *testing.T) {
	f := newFixture()
	_, err := f.services.Create(context.Background(), testUserID, dto.ServiceTypeRequest{Name: "Sin precio"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("category required"))
	assert.True(t, ve.Has("valid unit price required"))
}

func TestServiceTypeList_OrdenYFiltro(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inactive := false
	_, err := f.services.Create(ctx, testUserID, dto.ServiceTypeRequest{
		Name: "Autoroute", Category: "lesson", PricingType: entity.PricingPerLesson, UnitPrice: dp("60"), IsActive: &inactive,
	})
	require.NoError(t, err)

	all, err := f.services.List(ctx, testUserID, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Autoroute", all[0].Name)

	active, err := f.services.List(ctx, testUserID, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Leçon 1h", active[0].Name)
}

func TestServiceTypeDelete_LineasQuedanSinTipo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv, err := f.invoices.Create(ctx, testUserID, createReq(lesson("50", "1")))
	require.NoError(t, err)

	require.NoError(t, f.services.Delete(ctx, testUserID, "svc-1"))
	got, err := f.invoices.Get(ctx, testUserID, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].ServiceType)

	_, err = f.services.Get(ctx, testUserID, "svc-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
