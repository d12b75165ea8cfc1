package repository

import "github.com/jhoicas/farmacia-pos/internal/domain/entity"

// SupplierRepository puerto de solo lectura sobre proveedores.
type SupplierRepository interface {
	GetByID(id string) (*entity.Supplier, error)
}
