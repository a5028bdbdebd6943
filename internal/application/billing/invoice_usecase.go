package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
	"github.com/jhoicas/caminvoice-api/internal/domain/repository"
)

// InvoiceConfig valores por defecto al crear facturas.
type InvoiceConfig struct {
	DefaultTaxRate decimal.Decimal // si el usuario no tiene perfil
	PaymentDays    int             // vencimiento = fecha de factura + PaymentDays
}

// InvoiceUseCase casos de uso de facturas y sus líneas.
type InvoiceUseCase struct {
	txRunner        InvoiceTxRunner
	invoiceRepo     repository.InvoiceRepository
	customerRepo    repository.CustomerRepository
	serviceTypeRepo repository.ServiceTypeRepository
	profileRepo     repository.ProfileRepository
	numbers         *InvoiceNumberGenerator
	cfg             InvoiceConfig
	now             Clock
	metrics         Metrics
}

// NewInvoiceUseCase construye el caso de uso inyectando sus dependencias.
func NewInvoiceUseCase(
	txRunner InvoiceTxRunner,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	serviceTypeRepo repository.ServiceTypeRepository,
	profileRepo repository.ProfileRepository,
	numbers *InvoiceNumberGenerator,
	cfg InvoiceConfig,
	metrics Metrics,
) *InvoiceUseCase {
	if cfg.PaymentDays <= 0 {
		cfg.PaymentDays = 30
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &InvoiceUseCase{
		txRunner:        txRunner,
		invoiceRepo:     invoiceRepo,
		customerRepo:    customerRepo,
		serviceTypeRepo: serviceTypeRepo,
		profileRepo:     profileRepo,
		numbers:         numbers,
		cfg:             cfg,
		now:             time.Now,
		metrics:         metrics,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *InvoiceUseCase) WithClock(c Clock) *InvoiceUseCase {
	uc.now = c
	return uc
}

// ── Lecturas ──────────────────────────────────────────────────────────────────

// List devuelve las facturas del usuario enriquecidas, más recientes primero.
func (uc *InvoiceUseCase) List(ctx context.Context, userID string) ([]dto.InvoiceResponse, error) {
	list, err := uc.invoiceRepo.List(ctx, userID)
	if err != nil {
		return nil, gatewayError("listar facturas", userID, err)
	}
	return enrichInvoices(list, uc.now()), nil
}

// Get devuelve la factura con cliente, líneas y tipos de servicio, enriquecida.
func (uc *InvoiceUseCase) Get(ctx context.Context, userID, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return EnrichInvoice(inv, uc.now()), nil
}

// Stats agregados por estado calculados sobre el listado completo.
func (uc *InvoiceUseCase) Stats(ctx context.Context, userID string) (*dto.InvoiceStatsResponse, error) {
	list, err := uc.invoiceRepo.List(ctx, userID)
	if err != nil {
		return nil, gatewayError("estadísticas de facturas", userID, err)
	}
	s := invoicing.ComputeStats(list, uc.now())
	return &dto.InvoiceStatsResponse{
		TotalInvoices:     s.Total,
		DraftInvoices:     s.Draft,
		SentInvoices:      s.Sent,
		PaidInvoices:      s.Paid,
		OverdueInvoices:   s.Overdue,
		CancelledInvoices: s.Cancelled,
		TotalRevenue:      s.TotalRevenue,
		PendingAmount:     s.PendingAmount,
		OverdueAmount:     s.OverdueAmount,
	}, nil
}

// ── Escrituras de cabecera ────────────────────────────────────────────────────

// Create valida cabecera y líneas, genera el número, calcula totales y persiste cabecera y líneas
// en una sola transacción. Un conflicto de número al insertar regenera el número (reintentos acotados).
func (uc *InvoiceUseCase) Create(ctx context.Context, userID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	now := uc.now()
	invoiceDate := dto.NewDate(now).Time
	if in.InvoiceDate != nil && !in.InvoiceDate.IsZero() {
		invoiceDate = in.InvoiceDate.Time
	}
	dueDate := invoiceDate.AddDate(0, 0, uc.cfg.PaymentDays)
	if in.DueDate != nil && !in.DueDate.IsZero() {
		dueDate = in.DueDate.Time
	}
	status := in.Status
	if status == "" {
		status = entity.InvoiceStatusDraft
	}

	header := invoicing.HeaderInput{
		CustomerID:  in.CustomerID,
		InvoiceDate: &invoiceDate,
		DueDate:     &dueDate,
		TaxRate:     nullDecimal(in.TaxRate),
		Status:      status,
	}
	if err := invoicing.ValidateInvoice(header, itemInputs(in.Items)); err != nil {
		return nil, err
	}

	if err := uc.ensureCustomer(ctx, userID, in.CustomerID); err != nil {
		return nil, err
	}
	if err := uc.ensureServiceTypes(ctx, userID, in.Items); err != nil {
		return nil, err
	}

	taxRate, paymentTerms, err := uc.issuerDefaults(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	if in.PaymentTerms != "" {
		paymentTerms = in.PaymentTerms
	}

	inv := &entity.Invoice{
		ID:           uuid.New().String(),
		UserID:       userID,
		CustomerID:   in.CustomerID,
		InvoiceDate:  invoiceDate,
		DueDate:      &dueDate,
		Status:       status,
		TaxRate:      taxRate,
		PaymentTerms: paymentTerms,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	items := buildItems(inv.ID, in.Items, now)
	invoicing.ApplyTotals(inv, invoicing.ComputeTotals(invoicing.LinesFromItems(items), taxRate))

	if err := uc.insertWithUniqueNumber(ctx, inv, items); err != nil {
		return nil, err
	}
	uc.metrics.InvoiceCreated()
	log.Info().Str("user_id", userID).Str("invoice_id", inv.ID).Str("number", inv.InvoiceNumber).
		Msg("factura creada")

	return uc.Get(ctx, userID, inv.ID)
}

// insertWithUniqueNumber asigna número y persiste. Si la restricción UNIQUE(user_id, invoice_number)
// rechaza el insert, la transacción se revierte entera y se regenera el número.
func (uc *InvoiceUseCase) insertWithUniqueNumber(ctx context.Context, inv *entity.Invoice, items []*entity.InvoiceItem) error {
	maxAttempts := uc.numbers.MaxRetries()
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		number, err := uc.numbers.GenerateUnique(ctx, inv.UserID)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number

		err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, itemRepo repository.InvoiceItemRepository) error {
			if err := invoiceRepo.Create(ctx, inv); err != nil {
				return err
			}
			for _, it := range items {
				if err := itemRepo.Create(ctx, it); err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return gatewayError("crear factura", inv.UserID, err)
		}
		log.Warn().Str("user_id", inv.UserID).Str("number", number).Int("attempt", attempt).
			Msg("conflicto de número de factura al insertar")
		if attempt < maxAttempts {
			if err := uc.numbers.Backoff(ctx); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w tras %d intentos", domain.ErrInvoiceNumberExhausted, maxAttempts)
}

// Update valida y actualiza la cabecera. Los campos ausentes conservan su valor.
// Si in.Items no es nil reemplaza todas las líneas (borrado + reinserción) en la misma transacción;
// si es nil recalcula los totales desde las líneas guardadas.
func (uc *InvoiceUseCase) Update(ctx context.Context, userID, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	customerChanged := in.CustomerID != "" && in.CustomerID != inv.CustomerID
	if in.CustomerID != "" {
		inv.CustomerID = in.CustomerID
	}
	if in.InvoiceDate != nil && !in.InvoiceDate.IsZero() {
		inv.InvoiceDate = in.InvoiceDate.Time
	}
	if in.DueDate != nil && !in.DueDate.IsZero() {
		inv.DueDate = in.DueDate.TimePtr()
	}
	if in.TaxRate != nil {
		inv.TaxRate = *in.TaxRate
	}
	if in.Status != "" {
		inv.Status = in.Status
	}
	if in.PaymentTerms != nil {
		inv.PaymentTerms = *in.PaymentTerms
	}
	if in.Notes != nil {
		inv.Notes = *in.Notes
	}

	header := invoicing.HeaderInput{
		CustomerID:  inv.CustomerID,
		InvoiceDate: &inv.InvoiceDate,
		DueDate:     inv.DueDate,
		TaxRate:     decimal.NewNullDecimal(inv.TaxRate),
		Status:      inv.Status,
	}
	if err := invoicing.ValidateInvoice(header, itemInputs(in.Items)); err != nil {
		return nil, err
	}
	if customerChanged {
		if err := uc.ensureCustomer(ctx, userID, inv.CustomerID); err != nil {
			return nil, err
		}
	}
	if err := uc.ensureServiceTypes(ctx, userID, in.Items); err != nil {
		return nil, err
	}

	now := uc.now()
	inv.UpdatedAt = now
	replace := in.Items != nil
	newItems := buildItems(inv.ID, in.Items, now)

	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, itemRepo repository.InvoiceItemRepository) error {
		items := newItems
		if !replace {
			stored, err := itemRepo.ListByInvoice(ctx, inv.ID)
			if err != nil {
				return err
			}
			items = stored
		}
		invoicing.ApplyTotals(inv, invoicing.ComputeTotals(invoicing.LinesFromItems(items), inv.TaxRate))
		if err := invoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		if !replace {
			return nil
		}
		if err := itemRepo.DeleteByInvoice(ctx, inv.ID); err != nil {
			return err
		}
		for _, it := range newItems {
			if err := itemRepo.Create(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, gatewayError("actualizar factura", userID, err)
	}
	return uc.Get(ctx, userID, id)
}

// UpdateStatus escribe el estado directamente. Un valor fuera de la enumeración falla antes de tocar la DB.
func (uc *InvoiceUseCase) UpdateStatus(ctx context.Context, userID, id, status string) (*dto.InvoiceResponse, error) {
	if !invoicing.IsValidStatus(status) {
		return nil, domain.NewValidationError([]string{invoicing.MsgInvalidStatus})
	}
	if err := uc.invoiceRepo.UpdateStatus(ctx, userID, id, status); err != nil {
		return nil, gatewayError("actualizar estado", userID, err)
	}
	return uc.Get(ctx, userID, id)
}

// Delete elimina la factura y, por cascada, sus líneas.
func (uc *InvoiceUseCase) Delete(ctx context.Context, userID, id string) error {
	if err := uc.invoiceRepo.Delete(ctx, userID, id); err != nil {
		return gatewayError("eliminar factura", userID, err)
	}
	return nil
}

// ── Líneas ────────────────────────────────────────────────────────────────────

// AddItem agrega una línea y recalcula los totales desde todas las líneas guardadas.
func (uc *InvoiceUseCase) AddItem(ctx context.Context, userID, invoiceID string, in dto.InvoiceItemRequest) (*dto.InvoiceItemResponse, error) {
	if err := invoicing.ValidateItem(itemInput(in)); err != nil {
		return nil, err
	}
	inv, err := uc.load(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureServiceTypes(ctx, userID, []dto.InvoiceItemRequest{in}); err != nil {
		return nil, err
	}
	now := uc.now()
	item := buildItems(inv.ID, []dto.InvoiceItemRequest{in}, now)[0]

	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, itemRepo repository.InvoiceItemRepository) error {
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		return uc.recompute(ctx, invoiceRepo, itemRepo, inv, now)
	})
	if err != nil {
		return nil, gatewayError("agregar línea", userID, err)
	}
	r := toItemResponse(item)
	return &r, nil
}

// UpdateItem reemplaza los campos de una línea y recalcula los totales.
func (uc *InvoiceUseCase) UpdateItem(ctx context.Context, userID, invoiceID, itemID string, in dto.InvoiceItemRequest) (*dto.InvoiceItemResponse, error) {
	if err := invoicing.ValidateItem(itemInput(in)); err != nil {
		return nil, err
	}
	inv, err := uc.load(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := uc.ensureServiceTypes(ctx, userID, []dto.InvoiceItemRequest{in}); err != nil {
		return nil, err
	}
	now := uc.now()
	var updated *entity.InvoiceItem

	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, itemRepo repository.InvoiceItemRepository) error {
		current, err := itemRepo.GetByID(ctx, inv.ID, itemID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		updated = buildItems(inv.ID, []dto.InvoiceItemRequest{in}, now)[0]
		updated.ID = current.ID
		updated.CreatedAt = current.CreatedAt
		if err := itemRepo.Update(ctx, updated); err != nil {
			return err
		}
		return uc.recompute(ctx, invoiceRepo, itemRepo, inv, now)
	})
	if err != nil {
		return nil, gatewayError("actualizar línea", userID, err)
	}
	r := toItemResponse(updated)
	return &r, nil
}

// DeleteItem elimina una línea y recalcula los totales.
func (uc *InvoiceUseCase) DeleteItem(ctx context.Context, userID, invoiceID, itemID string) error {
	inv, err := uc.load(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	now := uc.now()
	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, itemRepo repository.InvoiceItemRepository) error {
		if err := itemRepo.Delete(ctx, inv.ID, itemID); err != nil {
			return err
		}
		return uc.recompute(ctx, invoiceRepo, itemRepo, inv, now)
	})
	if err != nil {
		return gatewayError("eliminar línea", userID, err)
	}
	return nil
}

// RecalculateTotals recalcula y guarda los totales desde las líneas persistidas. Idempotente.
func (uc *InvoiceUseCase) RecalculateTotals(ctx context.Context, userID, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.load(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	err = uc.txRunner.RunInvoice(ctx, func(invoiceRepo repository.InvoiceRepository, itemRepo repository.InvoiceItemRepository) error {
		return uc.recompute(ctx, invoiceRepo, itemRepo, inv, uc.now())
	})
	if err != nil {
		return nil, gatewayError("recalcular totales", userID, err)
	}
	return uc.Get(ctx, userID, invoiceID)
}

// recompute lee todas las líneas actuales de la factura (dentro de la tx) y reescribe los totales.
func (uc *InvoiceUseCase) recompute(
	ctx context.Context,
	invoiceRepo repository.InvoiceRepository,
	itemRepo repository.InvoiceItemRepository,
	inv *entity.Invoice,
	now time.Time,
) error {
	items, err := itemRepo.ListByInvoice(ctx, inv.ID)
	if err != nil {
		return err
	}
	invoicing.ApplyTotals(inv, invoicing.ComputeTotals(invoicing.LinesFromItems(items), inv.TaxRate))
	inv.UpdatedAt = now
	return invoiceRepo.UpdateTotals(ctx, inv)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (uc *InvoiceUseCase) load(ctx context.Context, userID, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, gatewayError("obtener factura", userID, err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (uc *InvoiceUseCase) ensureCustomer(ctx context.Context, userID, customerID string) error {
	c, err := uc.customerRepo.GetByID(ctx, userID, customerID)
	if err != nil {
		return gatewayError("obtener cliente", userID, err)
	}
	if c == nil {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
	}
	return nil
}

func (uc *InvoiceUseCase) ensureServiceTypes(ctx context.Context, userID string, items []dto.InvoiceItemRequest) error {
	seen := make(map[string]bool)
	for _, it := range items {
		if it.ServiceTypeID == "" || seen[it.ServiceTypeID] {
			continue
		}
		seen[it.ServiceTypeID] = true
		st, err := uc.serviceTypeRepo.GetByID(ctx, userID, it.ServiceTypeID)
		if err != nil {
			return gatewayError("obtener tipo de servicio", userID, err)
		}
		if st == nil {
			return fmt.Errorf("%w: tipo de servicio %s", domain.ErrNotFound, it.ServiceTypeID)
		}
	}
	return nil
}

// issuerDefaults tasa y condiciones de pago del perfil del emisor, o las de configuración.
func (uc *InvoiceUseCase) issuerDefaults(ctx context.Context, userID string) (decimal.Decimal, string, error) {
	taxRate := uc.cfg.DefaultTaxRate
	terms := entity.DefaultPaymentTerms
	p, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return taxRate, terms, gatewayError("obtener perfil", userID, err)
	}
	if p != nil {
		taxRate = p.DefaultTaxRate
		if p.DefaultPaymentTerms != "" {
			terms = p.DefaultPaymentTerms
		}
	}
	return taxRate, terms, nil
}

func itemInput(in dto.InvoiceItemRequest) invoicing.ItemInput {
	return invoicing.ItemInput{
		Description:   in.Description,
		UnitPrice:     nullDecimal(in.UnitPrice),
		Quantity:      nullDecimal(in.Quantity),
		DurationHours: nullDecimal(in.DurationHours),
	}
}

func itemInputs(items []dto.InvoiceItemRequest) []invoicing.ItemInput {
	out := make([]invoicing.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, itemInput(it))
	}
	return out
}

// buildItems asume entradas ya validadas (precio y cantidad presentes).
func buildItems(invoiceID string, in []dto.InvoiceItemRequest, now time.Time) []*entity.InvoiceItem {
	out := make([]*entity.InvoiceItem, 0, len(in))
	for _, it := range in {
		price, qty := decimal.Zero, decimal.NewFromInt(1)
		if it.UnitPrice != nil {
			price = *it.UnitPrice
		}
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		out = append(out, &entity.InvoiceItem{
			ID:            uuid.New().String(),
			InvoiceID:     invoiceID,
			ServiceTypeID: it.ServiceTypeID,
			Description:   strings.TrimSpace(it.Description),
			Quantity:      qty,
			UnitPrice:     price,
			TotalPrice:    invoicing.LineTotal(price, qty),
			DurationHours: nullDecimal(it.DurationHours),
			ServiceDate:   it.ServiceDate.TimePtr(),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return out
}

// gatewayError registra el error de persistencia y lo devuelve sin cambiar su tipo.
func gatewayError(op, userID string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	log.Error().Err(err).Str("op", op).Str("user_id", userID).Msg("error de persistencia")
	return err
}
