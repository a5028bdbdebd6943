package billing

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/caminvoice-api/internal/application/dto"
	"github.com/jhoicas/caminvoice-api/internal/domain"
	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
	"github.com/jhoicas/caminvoice-api/internal/domain/invoicing"
	"github.com/jhoicas/caminvoice-api/internal/domain/repository"
)

// profileField campo evaluado en la completitud del perfil.
type profileField struct {
	label string
	value func(p *entity.InstructorProfile) string
}

var requiredProfileFields = []profileField{
	{"Business Name", func(p *entity.InstructorProfile) string { return p.BusinessName }},
	{"First Name", func(p *entity.InstructorProfile) string { return p.FirstName }},
	{"Last Name", func(p *entity.InstructorProfile) string { return p.LastName }},
	{"Email", func(p *entity.InstructorProfile) string { return p.Email }},
}

var optionalProfileFields = []profileField{
	{"Phone", func(p *entity.InstructorProfile) string { return p.Phone }},
	{"Address", func(p *entity.InstructorProfile) string { return p.Address }},
	{"City", func(p *entity.InstructorProfile) string { return p.City }},
	{"Postal Code", func(p *entity.InstructorProfile) string { return p.PostalCode }},
	{"Country", func(p *entity.InstructorProfile) string { return p.Country }},
	{"VAT Number", func(p *entity.InstructorProfile) string { return p.VATNumber }},
	{"License Number", func(p *entity.InstructorProfile) string { return p.LicenseNumber }},
	{"IBAN", func(p *entity.InstructorProfile) string { return p.IBAN }},
	{"BIC", func(p *entity.InstructorProfile) string { return p.BIC }},
	{"Bank Name", func(p *entity.InstructorProfile) string { return p.BankName }},
}

// ProfileUseCase perfil del emisor de facturas (uno por usuario).
type ProfileUseCase struct {
	repo           repository.ProfileRepository
	userRepo       repository.UserRepository
	defaultTaxRate decimal.Decimal
	now            Clock
}

// NewProfileUseCase construye el caso de uso. defaultTaxRate se aplica cuando la petición no trae tasa.
func NewProfileUseCase(repo repository.ProfileRepository, userRepo repository.UserRepository, defaultTaxRate decimal.Decimal) *ProfileUseCase {
	return &ProfileUseCase{repo: repo, userRepo: userRepo, defaultTaxRate: defaultTaxRate, now: time.Now}
}

// Get devuelve el perfil guardado o nil si el usuario aún no tiene.
func (uc *ProfileUseCase) Get(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	p, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, gatewayError("obtener perfil", userID, err)
	}
	return toProfileResponse(p, false), nil
}

// Current devuelve el perfil guardado o, si no existe, los valores por defecto (is_default = true).
func (uc *ProfileUseCase) Current(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	p, isDefault, err := uc.issuer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(p, isDefault), nil
}

// Create valida y crea el perfil. ErrDuplicate si ya existe uno.
func (uc *ProfileUseCase) Create(ctx context.Context, userID string, in dto.ProfileRequest) (*dto.ProfileResponse, error) {
	p, err := uc.prepare(userID, in)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, gatewayError("crear perfil", userID, err)
	}
	return toProfileResponse(p, false), nil
}

// Update reemplaza el perfil existente. ErrNotFound si no hay perfil.
func (uc *ProfileUseCase) Update(ctx context.Context, userID string, in dto.ProfileRequest) (*dto.ProfileResponse, error) {
	current, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, gatewayError("obtener perfil", userID, err)
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	p, err := uc.prepare(userID, in)
	if err != nil {
		return nil, err
	}
	p.ID = current.ID
	p.CreatedAt = current.CreatedAt
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, gatewayError("actualizar perfil", userID, err)
	}
	return toProfileResponse(p, false), nil
}

// Save crea o actualiza según exista perfil para el usuario.
func (uc *ProfileUseCase) Save(ctx context.Context, userID string, in dto.ProfileRequest) (*dto.ProfileResponse, error) {
	p, err := uc.prepare(userID, in)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Upsert(ctx, p); err != nil {
		return nil, gatewayError("guardar perfil", userID, err)
	}
	return toProfileResponse(p, false), nil
}

// Delete elimina el perfil del usuario.
func (uc *ProfileUseCase) Delete(ctx context.Context, userID string) error {
	if err := uc.repo.Delete(ctx, userID); err != nil {
		return gatewayError("eliminar perfil", userID, err)
	}
	return nil
}

// CompletionStatus campos obligatorios y opcionales que faltan y porcentaje completado.
func (uc *ProfileUseCase) CompletionStatus(ctx context.Context, userID string) (*dto.ProfileCompletionResponse, error) {
	p, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, gatewayError("obtener perfil", userID, err)
	}
	return ProfileCompletion(p), nil
}

// ProfileCompletion calcula la completitud de p; nil equivale a "sin perfil".
func ProfileCompletion(p *entity.InstructorProfile) *dto.ProfileCompletionResponse {
	if p == nil {
		return &dto.ProfileCompletionResponse{
			MissingRequiredFields: []string{"All fields"},
			MissingOptionalFields: []string{},
		}
	}
	missing := func(fields []profileField) []string {
		out := []string{}
		for _, f := range fields {
			if strings.TrimSpace(f.value(p)) == "" {
				out = append(out, f.label)
			}
		}
		return out
	}
	req, opt := missing(requiredProfileFields), missing(optionalProfileFields)
	total := len(requiredProfileFields) + len(optionalProfileFields)
	completed := total - len(req) - len(opt)
	return &dto.ProfileCompletionResponse{
		IsComplete:            len(req) == 0,
		CompletionPercentage:  int(math.Round(float64(completed) / float64(total) * 100)),
		MissingRequiredFields: req,
		MissingOptionalFields: opt,
		HasProfile:            true,
	}
}

// Defaults perfil por defecto derivado de la cuenta del usuario (no se persiste).
func (uc *ProfileUseCase) Defaults(ctx context.Context, userID string) (*entity.InstructorProfile, error) {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, gatewayError("obtener usuario", userID, err)
	}
	return DefaultProfile(u, uc.defaultTaxRate), nil
}

// DefaultsResponse perfil por defecto listo para prellenar el formulario.
func (uc *ProfileUseCase) DefaultsResponse(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	p, err := uc.Defaults(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(p, true), nil
}

// DefaultProfile construye el emisor por defecto: el nombre de la cuenta se parte en nombre y apellidos.
func DefaultProfile(u *entity.User, taxRate decimal.Decimal) *entity.InstructorProfile {
	p := &entity.InstructorProfile{
		BusinessName:        entity.DefaultBusinessName,
		Country:             entity.DefaultCountry,
		DefaultPaymentTerms: entity.DefaultPaymentTerms,
		DefaultTaxRate:      taxRate,
	}
	if u == nil {
		return p
	}
	p.UserID = u.ID
	p.Email = u.Email
	if parts := strings.Fields(u.Name); len(parts) > 0 {
		p.FirstName = parts[0]
		p.LastName = strings.Join(parts[1:], " ")
	}
	return p
}

// IssuerFor perfil con el que se emiten los documentos: el guardado o el por defecto.
func (uc *ProfileUseCase) IssuerFor(ctx context.Context, userID string) (*entity.InstructorProfile, error) {
	p, _, err := uc.issuer(ctx, userID)
	return p, err
}

func (uc *ProfileUseCase) issuer(ctx context.Context, userID string) (*entity.InstructorProfile, bool, error) {
	p, err := uc.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, false, gatewayError("obtener perfil", userID, err)
	}
	if p != nil {
		return p, false, nil
	}
	d, err := uc.Defaults(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// prepare normaliza la petición, aplica valores por defecto y valida.
// Una tasa 0 explícita se conserva; solo la ausencia toma el valor por defecto.
func (uc *ProfileUseCase) prepare(userID string, in dto.ProfileRequest) (*entity.InstructorProfile, error) {
	now := uc.now()
	p := &entity.InstructorProfile{
		ID:                  uuid.New().String(),
		UserID:              userID,
		BusinessName:        strings.TrimSpace(in.BusinessName),
		FirstName:           strings.TrimSpace(in.FirstName),
		LastName:            strings.TrimSpace(in.LastName),
		Email:               strings.TrimSpace(in.Email),
		Phone:               strings.TrimSpace(in.Phone),
		Address:             strings.TrimSpace(in.Address),
		City:                strings.TrimSpace(in.City),
		PostalCode:          strings.TrimSpace(in.PostalCode),
		Country:             strings.TrimSpace(in.Country),
		VATNumber:           strings.TrimSpace(in.VATNumber),
		LicenseNumber:       strings.TrimSpace(in.LicenseNumber),
		IBAN:                strings.TrimSpace(in.IBAN),
		BIC:                 strings.TrimSpace(in.BIC),
		BankName:            strings.TrimSpace(in.BankName),
		DefaultPaymentTerms: strings.TrimSpace(in.DefaultPaymentTerms),
		DefaultTaxRate:      uc.defaultTaxRate,
		LogoURL:             strings.TrimSpace(in.LogoURL),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if p.Country == "" {
		p.Country = entity.DefaultCountry
	}
	if p.DefaultPaymentTerms == "" {
		p.DefaultPaymentTerms = entity.DefaultPaymentTerms
	}
	if in.DefaultTaxRate != nil {
		p.DefaultTaxRate = *in.DefaultTaxRate
	}
	if err := invoicing.ValidateProfile(p); err != nil {
		return nil, err
	}
	return p, nil
}
