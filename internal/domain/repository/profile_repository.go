package repository

import (
	"context"

	"github.com/jhoicas/caminvoice-api/internal/domain/entity"
)

// ProfileRepository define el puerto de persistencia del perfil del emisor (uno por usuario).
type ProfileRepository interface {
	// GetByUserID devuelve (nil, nil) si el usuario aún no tiene perfil.
	GetByUserID(ctx context.Context, userID string) (*entity.InstructorProfile, error)
	Create(ctx context.Context, p *entity.InstructorProfile) error
	Update(ctx context.Context, p *entity.InstructorProfile) error
	// Upsert inserta o actualiza según user_id.
	Upsert(ctx context.Context, p *entity.InstructorProfile) error
	Delete(ctx context.Context, userID string) error
}
