package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/domain"
)

func TestCheckViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "invoice_items_quantity_check"}

	err := checkViolation(fmt.Errorf("insert invoice item: %w", pgErr))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "invoice_items_quantity_check")

	assert.NoError(t, checkViolation(&pgconn.PgError{Code: codeUniqueViolation}))
	assert.NoError(t, checkViolation(errors.New("conexión cerrada")))
}

func TestPgCode(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("x: %w", &pgconn.PgError{Code: "23503"})))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 6, 15, 23, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), dateOnly(in))
	assert.Nil(t, dateOnlyPtr(nil))
	assert.Nil(t, nullIfEmpty(""))
}
