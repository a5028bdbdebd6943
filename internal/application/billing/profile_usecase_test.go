package billing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

func validProfile() dto.ProfileRequest {
	return dto.ProfileRequest{
		BusinessName: "Auto-école Dupont",
		FirstName:    "Marie",
		LastName:     "Dupont",
		Email:        "marie@dupont.be",
	}
}

func TestProfileCurrent_SinPerfilDevuelveDefectos(t *testing.T) {
	f := newFixture()
	got, err := f.profiles.Current(context.Background(), testUserID)
	require.NoError(t, err)

	assert.True(t, got.IsDefault)
	assert.Equal(t, entity.DefaultBusinessName, got.BusinessName)
	assert.Equal(t, "Marie", got.FirstName)
	assert.Equal(t, "Claire Dupont", got.LastName)
	assert.Equal(t, "marie@dupont.be", got.Email)
	assert.Equal(t, entity.DefaultCountry, got.Country)
	assert.Equal(t, "21.00", got.DefaultTaxRate.StringFixed(2))

	p, err := f.profiles.Get(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProfileCreate_AplicaDefectosYConservaTasaCero(t *testing.T) {
	f := newFixture()
	req := validProfile()
	req.DefaultTaxRate = dp("0")

	got, err := f.profiles.Create(context.Background(), testUserID, req)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultCountry, got.Country)
	assert.Equal(t, entity.DefaultPaymentTerms, got.DefaultPaymentTerms)
	assert.True(t, got.DefaultTaxRate.IsZero())
	assert.False(t, got.IsDefault)

	_, err = f.profiles.Create(context.Background(), testUserID, validProfile())
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestProfileUpdate_SinPerfil(t *testing.T) {
	f := newFixture()
	_, err := f.profiles.Update(context.Background(), testUserID, validProfile())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestProfileSave_Upsert(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.profiles.Save(ctx, testUserID, validProfile())
	require.NoError(t, err)
	req := validProfile()
	req.City = "Namur"
	second, err := f.profiles.Save(ctx, testUserID, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Namur", second.City)
	assert.Len(t, f.store.profiles, 1)
}

func TestProfileSave_Validacion(t *testing.T) {
	f := newFixture()
	req := validProfile()
	req.IBAN = "XX"
	req.VATNumber = "BE12"

	_, err := f.profiles.Save(context.Background(), testUserID, req)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("invalid IBAN format"))
	assert.True(t, ve.Has("invalid Belgian VAT format (BE followed by 10 digits)"))
	assert.Empty(t, f.store.profiles)
}

func TestProfileCompletion(t *testing.T) {
	none := billing.ProfileCompletion(nil)
	assert.False(t, none.HasProfile)
	assert.Zero(t, none.CompletionPercentage)
	assert.Equal(t, []string{"All fields"}, none.MissingRequiredFields)

	p := &entity.InstructorProfile{
		BusinessName: "Auto-école Dupont",
		FirstName:    "Marie",
		LastName:     "Dupont",
		Email:        "marie@dupont.be",
		Country:      "Belgium",
		IBAN:         "BE68539007547034",
	}
	got := billing.ProfileCompletion(p)
	assert.True(t, got.IsComplete)
	assert.True(t, got.HasProfile)
	assert.Equal(t, 43, got.CompletionPercentage) // 6 de 14
	assert.Empty(t, got.MissingRequiredFields)
	assert.Contains(t, got.MissingOptionalFields, "Bank Name")
	assert.NotContains(t, got.MissingOptionalFields, "IBAN")

	p.Email = " "
	got = billing.ProfileCompletion(p)
	assert.False(t, got.IsComplete)
	assert.Equal(t, []string{"Email"}, got.MissingRequiredFields)
}

func TestProfileIssuerFor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	issuer, err := f.profiles.IssuerFor(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultBusinessName, issuer.BusinessName)

	_, err = f.profiles.Save(ctx, testUserID, validProfile())
	require.NoError(t, err)
	issuer, err = f.profiles.IssuerFor(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "Auto-école Dupont", issuer.BusinessName)

	require.NoError(t, f.profiles.Delete(ctx, testUserID))
	status, err := f.profiles.CompletionStatus(ctx, testUserID)
	require.NoError(t, err)
	assert.False(t, status.HasProfile)
}
