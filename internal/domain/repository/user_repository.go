package repository

import "github.com/jhoicas/farmacia-pos/internal/domain/entity"

// UserRepository puerto de usuarios para autenticación.
type UserRepository interface {
	GetByUsername(username string) (*entity.User, error)
	GetByID(id string) (*entity.User, error)
}
