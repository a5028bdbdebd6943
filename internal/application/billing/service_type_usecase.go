package billing

import (
	"context"
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

// ServiceTypeUseCase catálogo de prestaciones facturables del instructor.
type ServiceTypeUseCase struct {
	repo repository.ServiceTypeRepository
	now  Clock
}

// NewServiceTypeUseCase construye el caso de uso.
func NewServiceTypeUseCase(repo repository.ServiceTypeRepository) *ServiceTypeUseCase {
	return &ServiceTypeUseCase{repo: repo, now: time.Now}
}

// List devuelve el catálogo ordenado por nombre. activeOnly filtra los desactivados.
func (uc *ServiceTypeUseCase) List(ctx context.Context, userID string, activeOnly bool) ([]dto.ServiceTypeResponse, error) {
	list, err := uc.repo.List(ctx, userID)
	if err != nil {
		return nil, gatewayError("listar tipos de servicio", userID, err)
	}
	out := make([]dto.ServiceTypeResponse, 0, len(list))
	for _, st := range list {
		if activeOnly && !st.IsActive {
			continue
		}
		out = append(out, *toServiceTypeResponse(st))
	}
	return out, nil
}

// Get devuelve un tipo de servicio del usuario.
func (uc *ServiceTypeUseCase) Get(ctx context.Context, userID, id string) (*dto.ServiceTypeResponse, error) {
	st, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toServiceTypeResponse(st), nil
}

// Create valida y crea. Si is_active no viene, el servicio nace activo.
func (uc *ServiceTypeUseCase) Create(ctx context.Context, userID string, in dto.ServiceTypeRequest) (*dto.ServiceTypeResponse, error) {
	now := uc.now()
	st := &entity.ServiceType{
		ID:        uuid.New().String(),
		UserID:    userID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyServiceTypeRequest(st, in)
	if err := invoicing.ValidateServiceType(st); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, st); err != nil {
		return nil, gatewayError("crear tipo de servicio", userID, err)
	}
	return toServiceTypeResponse(st), nil
}

// Update reemplaza los campos editables.
func (uc *ServiceTypeUseCase) Update(ctx context.Context, userID, id string, in dto.ServiceTypeRequest) (*dto.ServiceTypeResponse, error) {
	st, err := uc.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyServiceTypeRequest(st, in)
	if err := invoicing.ValidateServiceType(st); err != nil {
		return nil, err
	}
	st.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, st); err != nil {
		return nil, gatewayError("actualizar tipo de servicio", userID, err)
	}
	return toServiceTypeResponse(st), nil
}

// Delete elimina el tipo de servicio; las líneas que lo referencian quedan sin tipo.
func (uc *ServiceTypeUseCase) Delete(ctx context.Context, userID, id string) error {
	if err := uc.repo.Delete(ctx, userID, id); err != nil {
		return gatewayError("eliminar tipo de servicio", userID, err)
	}
	return nil
}

func (uc *ServiceTypeUseCase) load(ctx context.Context, userID, id string) (*entity.ServiceType, error) {
	st, err := uc.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, gatewayError("obtener tipo de servicio", userID, err)
	}
	if st == nil {
		return nil, domain.ErrNotFound
	}
	return st, nil
}

func applyServiceTypeRequest(st *entity.ServiceType, in dto.ServiceTypeRequest) {
	st.Name = strings.TrimSpace(in.Name)
	st.Description = in.Description
	st.Category = strings.TrimSpace(in.Category)
	st.PricingType = strings.TrimSpace(in.PricingType)
	st.UnitPrice = decimal.Zero
	if in.UnitPrice != nil {
		st.UnitPrice = *in.UnitPrice
	}
	st.DefaultDurationHours = nullDecimal(in.DefaultDurationHours)
	if in.IsActive != nil {
		st.IsActive = *in.IsActive
	}
}
