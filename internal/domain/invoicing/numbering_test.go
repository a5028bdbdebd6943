package invoicing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
)

func TestNumberPrefix(t *testing.T) {
	now := time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-", invoicing.NumberPrefix(now))
}

func TestNextSequence(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
		want     int
	}{
		{"sin facturas", nil, 1},
		{"una factura", []string{"2025-03-0001"}, 2},
		{"toma la mayor", []string{"2025-03-0002", "2025-03-0009", "2025-03-0004"}, 10},
		{"sin dígitos finales", []string{"2025-03-abc"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, invoicing.NextSequence(tc.existing))
		})
	}
}

func TestNextNumber_Relleno(t *testing.T) {
	now := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-12-0001", invoicing.NextNumber(now, nil))
	assert.Equal(t, "2025-12-0100", invoicing.NextNumber(now, []string{"2025-12-0099"}))
}
