package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
)

// Valores por defecto del bucle de unicidad.
const (
	DefaultNumberRetries    = 3
	DefaultNumberRetryDelay = 100 * time.Millisecond
)

// NumberSource consultas que necesita el generador (subconjunto de InvoiceRepository).
type NumberSource interface {
	ListNumbersByPrefix(ctx context.Context, userID, prefix string) ([]string, error)
	ExistsNumber(ctx context.Context, userID, number string) (bool, error)
}

// NumberGeneratorConfig política de reintentos ante colisión.
type NumberGeneratorConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// InvoiceNumberGenerator produce números YYYY-MM-NNNN únicos por usuario y mes.
type InvoiceNumberGenerator struct {
	src     NumberSource
	cfg     NumberGeneratorConfig
	now     Clock
	sleep   func(ctx context.Context, d time.Duration) error
	metrics Metrics
}

// NumberOption personaliza el generador.
type NumberOption func(*InvoiceNumberGenerator)

// WithNumberClock fija el reloj usado para el prefijo.
func WithNumberClock(c Clock) NumberOption {
	return func(g *InvoiceNumberGenerator) { g.now = c }
}

// WithNumberSleeper reemplaza la espera entre reintentos.
func WithNumberSleeper(s func(ctx context.Context, d time.Duration) error) NumberOption {
	return func(g *InvoiceNumberGenerator) { g.sleep = s }
}

// WithNumberMetrics registra colisiones.
func WithNumberMetrics(m Metrics) NumberOption {
	return func(g *InvoiceNumberGenerator) { g.metrics = m }
}

// NewInvoiceNumberGenerator construye el generador. MaxRetries <= 0 toma el valor por defecto;
// RetryDelay negativo también, y cero significa reintentar sin espera.
func NewInvoiceNumberGenerator(src NumberSource, cfg NumberGeneratorConfig, opts ...NumberOption) *InvoiceNumberGenerator {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultNumberRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = DefaultNumberRetryDelay
	}
	g := &InvoiceNumberGenerator{
		src:     src,
		cfg:     cfg,
		now:     time.Now,
		sleep:   sleepCtx,
		metrics: NopMetrics{},
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// MaxRetries intentos configurados.
func (g *InvoiceNumberGenerator) MaxRetries() int { return g.cfg.MaxRetries }

// Generate calcula el siguiente número del mes sin comprobar colisiones.
func (g *InvoiceNumberGenerator) Generate(ctx context.Context, userID string) (string, error) {
	now := g.now()
	prefix := invoicing.NumberPrefix(now)
	numbers, err := g.src.ListNumbersByPrefix(ctx, userID, prefix)
	if err != nil {
		return "", fmt.Errorf("listar números de factura: %w", err)
	}
	return invoicing.FormatNumber(prefix, invoicing.NextSequence(numbers)), nil
}

// GenerateUnique genera y comprueba por consulta puntual que el número esté libre.
// Ante colisión espera RetryDelay y regenera; agotados los intentos devuelve ErrInvoiceNumberExhausted.
func (g *InvoiceNumberGenerator) GenerateUnique(ctx context.Context, userID string) (string, error) {
	for attempt := 1; attempt <= g.cfg.MaxRetries; attempt++ {
		number, err := g.Generate(ctx, userID)
		if err != nil {
			return "", err
		}
		exists, err := g.src.ExistsNumber(ctx, userID, number)
		if err != nil {
			return "", fmt.Errorf("comprobar número de factura: %w", err)
		}
		if !exists {
			return number, nil
		}
		g.metrics.InvoiceNumberCollision()
		log.Warn().Str("user_id", userID).Str("number", number).Int("attempt", attempt).
			Msg("número de factura en uso, regenerando")
		if attempt < g.cfg.MaxRetries {
			if err := g.sleep(ctx, g.cfg.RetryDelay); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("%w tras %d intentos", domain.ErrInvoiceNumberExhausted, g.cfg.MaxRetries)
}

// Backoff espera el retardo configurado entre reintentos disparados por conflicto al insertar.
func (g *InvoiceNumberGenerator) Backoff(ctx context.Context) error {
	g.metrics.InvoiceNumberCollision()
	return g.sleep(ctx, g.cfg.RetryDelay)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
