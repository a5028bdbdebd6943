package repository

import (
	"context"

	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// ServiceTypeRepository define el puerto de persistencia del catálogo de servicios.
type ServiceTypeRepository interface {
	Create(ctx context.Context, st *entity.ServiceType) error
	GetByID(ctx context.Context, userID, id string) (*entity.ServiceType, error)
	// List ordena por nombre ascendente.
	List(ctx context.Context, userID string) ([]*entity.ServiceType, error)
	Update(ctx context.Context, st *entity.ServiceType) error
	Delete(ctx context.Context, userID, id string) error
}
