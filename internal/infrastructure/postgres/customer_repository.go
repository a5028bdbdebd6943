package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `
	id, user_id, client_type,
	COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(company_name, ''), COALESCE(contact_person, ''),
	email, COALESCE(phone, ''), COALESCE(address, ''), COALESCE(city, ''), COALESCE(postal_code, ''),
	COALESCE(country, ''), COALESCE(vat_number, ''), COALESCE(notes, ''),
	created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(
		&c.ID, &c.UserID, &c.ClientType,
		&c.FirstName, &c.LastName, &c.CompanyName, &c.ContactPerson,
		&c.Email, &c.Phone, &c.Address, &c.City, &c.PostalCode,
		&c.Country, &c.VATNumber, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `
		INSERT INTO customers (id, user_id, client_type, first_name, last_name, company_name, contact_person,
		                       email, phone, address, city, postal_code, country, vat_number, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.UserID, c.ClientType,
		nullIfEmpty(c.FirstName), nullIfEmpty(c.LastName), nullIfEmpty(c.CompanyName), nullIfEmpty(c.ContactPerson),
		c.Email, nullIfEmpty(c.Phone), nullIfEmpty(c.Address), nullIfEmpty(c.City), nullIfEmpty(c.PostalCode),
		nullIfEmpty(c.Country), nullIfEmpty(c.VATNumber), nullIfEmpty(c.Notes),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente del usuario por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, userID, id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE user_id = $1 AND id = $2`
	c, err := scanCustomer(r.q.QueryRow(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// List clientes del usuario, los más recientes primero.
func (r *CustomerRepo) List(ctx context.Context, userID string) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza un cliente.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	query := `
		UPDATE customers
		SET client_type = $3, first_name = $4, last_name = $5, company_name = $6, contact_person = $7,
		    email = $8, phone = $9, address = $10, city = $11, postal_code = $12, country = $13,
		    vat_number = $14, notes = $15, updated_at = $16
		WHERE user_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		c.UserID, c.ID, c.ClientType,
		nullIfEmpty(c.FirstName), nullIfEmpty(c.LastName), nullIfEmpty(c.CompanyName), nullIfEmpty(c.ContactPerson),
		c.Email, nullIfEmpty(c.Phone), nullIfEmpty(c.Address), nullIfEmpty(c.City), nullIfEmpty(c.PostalCode),
		nullIfEmpty(c.Country), nullIfEmpty(c.VATNumber), nullIfEmpty(c.Notes),
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un cliente. ErrConflict si aún hay facturas que lo referencian.
func (r *CustomerRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customers WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
