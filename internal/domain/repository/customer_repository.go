package repository

import (
	"context"

	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
// Todas las lecturas y escrituras van acotadas al usuario dueño.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	// GetByID devuelve (nil, nil) si no existe para ese usuario.
	GetByID(ctx context.Context, userID, id string) (*entity.Customer, error)
	// List ordena por fecha de creación descendente.
	List(ctx context.Context, userID string) ([]*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	// Delete borra físicamente; ErrNotFound si no había fila.
	Delete(ctx context.Context, userID, id string) error
}
