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

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

// ProfileRepo perfil del emisor (tabla instructor_profile, una fila por usuario).
type ProfileRepo struct {
	q Querier
}

// NewProfileRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProfileRepository(q Querier) *ProfileRepo {
	return &ProfileRepo{q: q}
}

// profileArgs orden común a INSERT y UPDATE: $1 id, $2 user_id, $3..$19 campos, $20 created_at, $21 updated_at.
func profileArgs(p *entity.InstructorProfile) []any {
	return []any{
		p.ID, p.UserID, p.BusinessName, p.FirstName, p.LastName,
		nullIfEmpty(p.Email), nullIfEmpty(p.Phone), nullIfEmpty(p.Address), nullIfEmpty(p.City),
		nullIfEmpty(p.PostalCode), nullIfEmpty(p.Country), nullIfEmpty(p.VATNumber), nullIfEmpty(p.LicenseNumber),
		nullIfEmpty(p.IBAN), nullIfEmpty(p.BIC), nullIfEmpty(p.BankName), nullIfEmpty(p.DefaultPaymentTerms),
		p.DefaultTaxRate, nullIfEmpty(p.LogoURL), p.CreatedAt, p.UpdatedAt,
	}
}

const profileInsert = `
	INSERT INTO instructor_profile (id, user_id, business_name, first_name, last_name, email, phone, address, city,
	                                postal_code, country, vat_number, license_number, iban, bic, bank_name,
	                                default_payment_terms, default_tax_rate, logo_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

// GetByUserID devuelve el perfil del usuario o (nil, nil).
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID string) (*entity.InstructorProfile, error) {
	query := `
		SELECT id, user_id, business_name, first_name, last_name,
		       COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), COALESCE(city, ''),
		       COALESCE(postal_code, ''), COALESCE(country, ''), COALESCE(vat_number, ''), COALESCE(license_number, ''),
		       COALESCE(iban, ''), COALESCE(bic, ''), COALESCE(bank_name, ''), COALESCE(default_payment_terms, ''),
		       default_tax_rate, COALESCE(logo_url, ''), created_at, updated_at
		FROM instructor_profile WHERE user_id = $1`
	var p entity.InstructorProfile
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.BusinessName, &p.FirstName, &p.LastName,
		&p.Email, &p.Phone, &p.Address, &p.City,
		&p.PostalCode, &p.Country, &p.VATNumber, &p.LicenseNumber,
		&p.IBAN, &p.BIC, &p.BankName, &p.DefaultPaymentTerms,
		&p.DefaultTaxRate, &p.LogoURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Create inserta el perfil. ErrDuplicate si el usuario ya tiene uno.
func (r *ProfileRepo) Create(ctx context.Context, p *entity.InstructorProfile) error {
	if _, err := r.q.Exec(ctx, profileInsert, profileArgs(p)...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Update reescribe el perfil del usuario.
func (r *ProfileRepo) Update(ctx context.Context, p *entity.InstructorProfile) error {
	query := `
		UPDATE instructor_profile
		SET business_name = $2, first_name = $3, last_name = $4, email = $5, phone = $6, address = $7, city = $8,
		    postal_code = $9, country = $10, vat_number = $11, license_number = $12, iban = $13, bic = $14,
		    bank_name = $15, default_payment_terms = $16, default_tax_rate = $17, logo_url = $18, updated_at = $19
		WHERE user_id = $1`
	// mismos campos que profileArgs sin id ni created_at
	args := profileArgs(p)
	args = append(args[1:19], p.UpdatedAt)
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Upsert inserta o actualiza por user_id; conserva id y created_at de la fila existente y los copia en p.
func (r *ProfileRepo) Upsert(ctx context.Context, p *entity.InstructorProfile) error {
	query := profileInsert + `
	ON CONFLICT (user_id) DO UPDATE
	SET business_name = EXCLUDED.business_name, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
	    email = EXCLUDED.email, phone = EXCLUDED.phone, address = EXCLUDED.address, city = EXCLUDED.city,
	    postal_code = EXCLUDED.postal_code, country = EXCLUDED.country, vat_number = EXCLUDED.vat_number,
	    license_number = EXCLUDED.license_number, iban = EXCLUDED.iban, bic = EXCLUDED.bic,
	    bank_name = EXCLUDED.bank_name, default_payment_terms = EXCLUDED.default_payment_terms,
	    default_tax_rate = EXCLUDED.default_tax_rate, logo_url = EXCLUDED.logo_url, updated_at = EXCLUDED.updated_at
	RETURNING id, created_at`
	if err := r.q.QueryRow(ctx, query, profileArgs(p)...).Scan(&p.ID, &p.CreatedAt); err != nil {
		if cerr := checkViolation(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// Delete elimina el perfil del usuario.
func (r *ProfileRepo) Delete(ctx context.Context, userID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM instructor_profile WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
