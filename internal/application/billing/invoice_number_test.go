package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/caminvoice-api/internal/application/billing"
	"github.com/jhoicas/caminvoice-api/internal/domain"
)

// numberSource fuente de números controlada: taken simula números ocupados por otra escritura.
type numberSource struct {
	numbers []string
	taken   map[string]bool
	lookups int
	listErr error
}

func (s *numberSource) ListNumbersByPrefix(_ context.Context, _, _ string) ([]string, error) {
	return s.numbers, s.listErr
}

func (s *numberSource) ExistsNumber(_ context.Context, _, number string) (bool, error) {
	s.lookups++
	return s.taken[number], nil
}

func noSleep(calls *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*calls = append(*calls, d)
		return nil
	}
}

func TestGenerate_PrimeroDelMesYSiguiente(t *testing.T) {
	src := &numberSource{}
	g := billing.NewInvoiceNumberGenerator(src, billing.NumberGeneratorConfig{}, billing.WithNumberClock(fixedClock))

	n, err := g.Generate(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-0001", n)

	src.numbers = []string{"2025-06-0001"}
	n, err = g.Generate(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-0002", n)
}

func TestGenerate_ErrorDeConsulta(t *testing.T) {
	src := &numberSource{listErr: errBoom}
	g := billing.NewInvoiceNumberGenerator(src, billing.NumberGeneratorConfig{}, billing.WithNumberClock(fixedClock))

	_, err := g.Generate(context.Background(), testUserID)
	assert.ErrorIs(t, err, errBoom)
}

func TestGenerateUnique_SinColision(t *testing.T) {
	src := &numberSource{numbers: []string{"2025-06-0007"}}
	g := billing.NewInvoiceNumberGenerator(src, billing.NumberGeneratorConfig{}, billing.WithNumberClock(fixedClock))

	n, err := g.GenerateUnique(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-0008", n)
	assert.Equal(t, 1, src.lookups)
}

func TestGenerateUnique_ColisionPersistenteAgotaReintentos(t *testing.T) {
	src := &numberSource{taken: map[string]bool{"2025-06-0001": true}}
	var sleeps []time.Duration
	m := newRecordingMetrics()
	g := billing.NewInvoiceNumberGenerator(src,
		billing.NumberGeneratorConfig{MaxRetries: 3, RetryDelay: 100 * time.Millisecond},
		billing.WithNumberClock(fixedClock),
		billing.WithNumberSleeper(noSleep(&sleeps)),
		billing.WithNumberMetrics(m),
	)

	_, err := g.GenerateUnique(context.Background(), testUserID)
	assert.True(t, errors.Is(err, domain.ErrInvoiceNumberExhausted))
	assert.Equal(t, 3, src.lookups)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, sleeps)
	assert.Equal(t, 3, m.collisions)
}

func TestGenerateUnique_ColisionTransitoria(t *testing.T) {
	src := &numberSource{taken: map[string]bool{"2025-06-0001": true}}
	var sleeps []time.Duration
	sleeper := func(ctx context.Context, d time.Duration) error {
		// otra escritura confirma 0001 mientras esperamos
		src.numbers = []string{"2025-06-0001"}
		return noSleep(&sleeps)(ctx, d)
	}
	g := billing.NewInvoiceNumberGenerator(src, billing.NumberGeneratorConfig{RetryDelay: 50 * time.Millisecond},
		billing.WithNumberClock(fixedClock),
		billing.WithNumberSleeper(sleeper),
	)

	n, err := g.GenerateUnique(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-0002", n)
	assert.Len(t, sleeps, 1)
	assert.Equal(t, 50*time.Millisecond, sleeps[0])
}

func TestGenerateUnique_ContextoCancelado(t *testing.T) {
	src := &numberSource{taken: map[string]bool{"2025-06-0001": true}}
	g := billing.NewInvoiceNumberGenerator(src,
		billing.NumberGeneratorConfig{MaxRetries: 5, RetryDelay: time.Hour},
		billing.WithNumberClock(fixedClock),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.GenerateUnique(ctx, testUserID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewInvoiceNumberGenerator_ValoresPorDefecto(t *testing.T) {
	g := billing.NewInvoiceNumberGenerator(&numberSource{}, billing.NumberGeneratorConfig{MaxRetries: -1})
	assert.Equal(t, billing.DefaultNumberRetries, g.MaxRetries())
}
