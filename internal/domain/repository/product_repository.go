package repository

import "github.com/jhoicas/farmacia-pos/internal/domain/entity"

// ProductRepository puerto de solo lectura sobre el catálogo. El CRUD de
// productos vive fuera del motor.
type ProductRepository interface {
	GetByID(id string) (*entity.Product, error)
}
