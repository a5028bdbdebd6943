package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// Cabecera + cliente (LEFT JOIN: una factura sin cliente visible sigue listándose).
const invoiceSelect = `
	SELECT i.id, i.user_id, i.customer_id, i.invoice_number, i.invoice_date, i.due_date, i.status,
	       i.subtotal, i.tax_rate, i.tax_amount, i.total_amount,
	       COALESCE(i.payment_terms, ''), COALESCE(i.notes, ''), i.created_at, i.updated_at,
	       c.id, c.client_type, c.first_name, c.last_name, c.company_name, c.email, c.phone,
	       c.address, c.city, c.postal_code, c.country, c.vat_number
	FROM invoices i
	LEFT JOIN customers c ON c.id = i.customer_id AND c.user_id = i.user_id`

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var (
		custID, clientType                            *string
		first, last, company, email, phone            *string
		address, city, postalCode, country, vatNumber *string
	)
	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.CustomerID, &inv.InvoiceNumber, &inv.InvoiceDate, &inv.DueDate, &inv.Status,
		&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.TotalAmount,
		&inv.PaymentTerms, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
		&custID, &clientType, &first, &last, &company, &email, &phone,
		&address, &city, &postalCode, &country, &vatNumber,
	)
	if err != nil {
		return nil, err
	}
	if custID != nil {
		inv.Customer = &entity.Customer{
			ID:          *custID,
			UserID:      inv.UserID,
			ClientType:  deref(clientType),
			FirstName:   deref(first),
			LastName:    deref(last),
			CompanyName: deref(company),
			Email:       deref(email),
			Phone:       deref(phone),
			Address:     deref(address),
			City:        deref(city),
			PostalCode:  deref(postalCode),
			Country:     deref(country),
			VATNumber:   deref(vatNumber),
		}
	}
	return &inv, nil
}

func deref(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}

// Create persiste la cabecera. ErrDuplicate si (user_id, invoice_number) ya existe.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, user_id, customer_id, invoice_number, invoice_date, due_date, status,
		                      subtotal, tax_rate, tax_amount, total_amount, payment_terms, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.UserID, inv.CustomerID, inv.InvoiceNumber, dateOnly(inv.InvoiceDate), dateOnlyPtr(inv.DueDate), inv.Status,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.TotalAmount,
		nullIfEmpty(inv.PaymentTerms), nullIfEmpty(inv.Notes), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cliente inexistente", domain.ErrInvalidInput)
		}
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update escribe los campos editables de cabecera y los totales.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET customer_id = $3, invoice_date = $4, due_date = $5, status = $6,
		    subtotal = $7, tax_rate = $8, tax_amount = $9, total_amount = $10,
		    payment_terms = $11, notes = $12, updated_at = $13
		WHERE user_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		inv.UserID, inv.ID, inv.CustomerID, dateOnly(inv.InvoiceDate), dateOnlyPtr(inv.DueDate), inv.Status,
		inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.TotalAmount,
		nullIfEmpty(inv.PaymentTerms), nullIfEmpty(inv.Notes), inv.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cliente inexistente", domain.ErrInvalidInput)
		}
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateTotals escribe solo subtotal, impuesto y total.
func (r *InvoiceRepo) UpdateTotals(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices SET subtotal = $3, tax_amount = $4, total_amount = $5, updated_at = $6
		WHERE user_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, inv.UserID, inv.ID, inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update invoice totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus escritura directa del estado.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, userID, id, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE invoices SET status = $3, updated_at = now() WHERE user_id = $1 AND id = $2`,
		userID, id, status)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID factura con cliente y líneas (cada una con su tipo de servicio).
func (r *InvoiceRepo) GetByID(ctx context.Context, userID, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, invoiceSelect+` WHERE i.user_id = $1 AND i.id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.attachItems(ctx, []*entity.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// List facturas del usuario por fecha descendente.
func (r *InvoiceRepo) List(ctx context.Context, userID string) ([]*entity.Invoice, error) {
	return r.list(ctx, invoiceSelect+` WHERE i.user_id = $1 ORDER BY i.invoice_date DESC, i.invoice_number DESC`, userID)
}

// ListByCustomer facturas de un cliente por fecha descendente.
func (r *InvoiceRepo) ListByCustomer(ctx context.Context, userID, customerID string) ([]*entity.Invoice, error) {
	return r.list(ctx, invoiceSelect+` WHERE i.user_id = $1 AND i.customer_id = $2 ORDER BY i.invoice_date DESC, i.invoice_number DESC`, userID, customerID)
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachItems carga en una sola consulta las líneas de todas las facturas dadas.
func (r *InvoiceRepo) attachItems(ctx context.Context, invoices []*entity.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Invoice, len(invoices))
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		inv.Items = []*entity.InvoiceItem{}
		byID[inv.ID] = inv
		ids = append(ids, inv.ID)
	}
	items, err := queryItems(ctx, r.q, itemSelect+` WHERE it.invoice_id = ANY($1::uuid[]) ORDER BY it.created_at, it.id`, ids)
	if err != nil {
		return err
	}
	for _, it := range items {
		if inv, ok := byID[it.InvoiceID]; ok {
			inv.Items = append(inv.Items, it)
		}
	}
	return nil
}

// Delete elimina la factura; las líneas caen por cascada.
func (r *InvoiceRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListNumbersByPrefix números del usuario con ese prefijo, orden descendente.
func (r *InvoiceRepo) ListNumbersByPrefix(ctx context.Context, userID, prefix string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT invoice_number FROM invoices
		WHERE user_id = $1 AND starts_with(invoice_number, $2)
		ORDER BY invoice_number DESC`, userID, prefix)
	if err != nil {
		return nil, fmt.Errorf("list invoice numbers: %w", err)
	}
	numbers, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan invoice number: %w", err)
	}
	return numbers, nil
}

// ExistsNumber consulta puntual de existencia del número.
func (r *InvoiceRepo) ExistsNumber(ctx context.Context, userID, number string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM invoices WHERE user_id = $1 AND invoice_number = $2)`,
		userID, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return exists, nil
}

// ── Líneas ────────────────────────────────────────────────────────────────────

var _ repository.InvoiceItemRepository = (*InvoiceItemRepo)(nil)

const itemSelect = `
	SELECT it.id, it.invoice_id, it.service_type_id, it.description, it.quantity, it.unit_price, it.total_price,
	       it.duration_hours, it.service_date, it.created_at, it.updated_at,
	       st.id, st.name, st.category, st.pricing_type, st.unit_price
	FROM invoice_items it
	LEFT JOIN service_types st ON st.id = it.service_type_id`

// InvoiceItemRepo líneas de factura (usable con pool o tx).
type InvoiceItemRepo struct {
	q Querier
}

// NewInvoiceItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceItemRepository(q Querier) *InvoiceItemRepo {
	return &InvoiceItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.InvoiceItem, error) {
	var it entity.InvoiceItem
	var (
		serviceTypeID                  *string
		stID, stName, stCat, stPricing *string
		stPrice                        decimal.NullDecimal
	)
	err := row.Scan(
		&it.ID, &it.InvoiceID, &serviceTypeID, &it.Description, &it.Quantity, &it.UnitPrice, &it.TotalPrice,
		&it.DurationHours, &it.ServiceDate, &it.CreatedAt, &it.UpdatedAt,
		&stID, &stName, &stCat, &stPricing, &stPrice,
	)
	if err != nil {
		return nil, err
	}
	it.ServiceTypeID = deref(serviceTypeID)
	if stID != nil {
		it.ServiceType = &entity.ServiceType{
			ID:          *stID,
			Name:        deref(stName),
			Category:    deref(stCat),
			PricingType: deref(stPricing),
			UnitPrice:   stPrice.Decimal,
		}
	}
	return &it, nil
}

func queryItems(ctx context.Context, q Querier, query string, args ...any) ([]*entity.InvoiceItem, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Create persiste una línea.
func (r *InvoiceItemRepo) Create(ctx context.Context, it *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, service_type_id, description, quantity, unit_price, total_price,
		                           duration_hours, service_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.InvoiceID, nullIfEmpty(it.ServiceTypeID), it.Description, it.Quantity, it.UnitPrice, it.TotalPrice,
		it.DurationHours, dateOnlyPtr(it.ServiceDate), it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: factura o tipo de servicio inexistente", domain.ErrInvalidInput)
		}
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// GetByID línea de una factura o (nil, nil).
func (r *InvoiceItemRepo) GetByID(ctx context.Context, invoiceID, id string) (*entity.InvoiceItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, itemSelect+` WHERE it.invoice_id = $1 AND it.id = $2`, invoiceID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice item: %w", err)
	}
	return it, nil
}

// Update reescribe una línea.
func (r *InvoiceItemRepo) Update(ctx context.Context, it *entity.InvoiceItem) error {
	query := `
		UPDATE invoice_items
		SET service_type_id = $3, description = $4, quantity = $5, unit_price = $6, total_price = $7,
		    duration_hours = $8, service_date = $9, updated_at = $10
		WHERE invoice_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		it.InvoiceID, it.ID, nullIfEmpty(it.ServiceTypeID), it.Description, it.Quantity, it.UnitPrice, it.TotalPrice,
		it.DurationHours, dateOnlyPtr(it.ServiceDate), it.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: tipo de servicio inexistente", domain.ErrInvalidInput)
		}
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update invoice item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una línea.
func (r *InvoiceItemRepo) Delete(ctx context.Context, invoiceID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1 AND id = $2`, invoiceID, id)
	if err != nil {
		return fmt.Errorf("delete invoice item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByInvoice elimina todas las líneas de la factura (reemplazo completo).
func (r *InvoiceItemRepo) DeleteByInvoice(ctx context.Context, invoiceID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	return nil
}

// ListByInvoice líneas de la factura en orden de creación.
func (r *InvoiceItemRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.InvoiceItem, error) {
	return queryItems(ctx, r.q, itemSelect+` WHERE it.invoice_id = $1 ORDER BY it.created_at, it.id`, invoiceID)
}
