package entity

import "time"

// User representa una cuenta de instructor (dueña de clientes, servicios y facturas).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserStatusActive estado de una cuenta habilitada.
const UserStatusActive = "active"
