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

var _ repository.ServiceTypeRepository = (*ServiceTypeRepo)(nil)

const serviceTypeColumns = `
	id, user_id, name, COALESCE(description, ''), category, pricing_type,
	unit_price, default_duration_hours, is_active, created_at, updated_at`

// ServiceTypeRepo catálogo de servicios sobre PostgreSQL.
type ServiceTypeRepo struct {
	q Querier
}

// NewServiceTypeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceTypeRepository(q Querier) *ServiceTypeRepo {
	return &ServiceTypeRepo{q: q}
}

func scanServiceType(row pgx.Row) (*entity.ServiceType, error) {
	var st entity.ServiceType
	err := row.Scan(
		&st.ID, &st.UserID, &st.Name, &st.Description, &st.Category, &st.PricingType,
		&st.UnitPrice, &st.DefaultDurationHours, &st.IsActive, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Create persiste un tipo de servicio.
func (r *ServiceTypeRepo) Create(ctx context.Context, st *entity.ServiceType) error {
	query := `
		INSERT INTO service_types (id, user_id, name, description, category, pricing_type,
		                           unit_price, default_duration_hours, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		st.ID, st.UserID, st.Name, nullIfEmpty(st.Description), st.Category, st.PricingType,
		st.UnitPrice, st.DefaultDurationHours, st.IsActive, st.CreatedAt, st.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert service type: %w", err)
	}
	return nil
}

// GetByID obtiene un tipo de servicio del usuario.
func (r *ServiceTypeRepo) GetByID(ctx context.Context, userID, id string) (*entity.ServiceType, error) {
	query := `SELECT ` + serviceTypeColumns + ` FROM service_types WHERE user_id = $1 AND id = $2`
	st, err := scanServiceType(r.q.QueryRow(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service type: %w", err)
	}
	return st, nil
}

// List tipos de servicio del usuario ordenados por nombre.
func (r *ServiceTypeRepo) List(ctx context.Context, userID string) ([]*entity.ServiceType, error) {
	query := `SELECT ` + serviceTypeColumns + ` FROM service_types WHERE user_id = $1 ORDER BY name ASC`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list service types: %w", err)
	}
	defer rows.Close()
	var list []*entity.ServiceType
	for rows.Next() {
		st, err := scanServiceType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service type: %w", err)
		}
		list = append(list, st)
	}
	return list, rows.Err()
}

// Update actualiza un tipo de servicio.
func (r *ServiceTypeRepo) Update(ctx context.Context, st *entity.ServiceType) error {
	query := `
		UPDATE service_types
		SET name = $3, description = $4, category = $5, pricing_type = $6, unit_price = $7,
		    default_duration_hours = $8, is_active = $9, updated_at = $10
		WHERE user_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query,
		st.UserID, st.ID, st.Name, nullIfEmpty(st.Description), st.Category, st.PricingType, st.UnitPrice,
		st.DefaultDurationHours, st.IsActive, st.UpdatedAt,
	)
	if err != nil {
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update service type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el tipo de servicio; las líneas que lo usaban quedan sin tipo (ON DELETE SET NULL).
func (r *ServiceTypeRepo) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM service_types WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete service type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
