package repository

import (
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// InventoryItemRepository puerto del libro de inventario (lotes por producto).
// Es el único camino de escritura sobre inventory_items; los decrementos y
// chequeos de unicidad deben correr dentro de la transacción del caller.
type InventoryItemRepository interface {
	GetByID(id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE) antes de
	// leer su cantidad; obligatorio en todo read-then-write.
	GetForUpdate(id string) (*entity.InventoryItem, error)
	// ExistsBatch chequeo explícito de unicidad (product_id, batch_number)
	// previo al insert, para devolver un error de dominio claro.
	ExistsBatch(productID, batchNumber string) (bool, error)
	Create(item *entity.InventoryItem) error
	Update(item *entity.InventoryItem) error
	Delete(id string) error
	// Decrement resta qty al lote. El caller ya validó la cantidad bajo lock.
	Decrement(id string, qty int64) error

	TotalByProduct(productID string) (int64, error)
	List() ([]entity.InventoryItemDetail, error)
	ListByProduct(productID, batchNumber string) ([]entity.InventoryItemDetail, error)

	// Consultas del escáner de alertas.
	ListExpired(today time.Time) ([]entity.BatchAlert, error)
	ListExpiringSoon(today time.Time, windowDays int) ([]entity.BatchAlert, error)
	ListLowStock(threshold int64) ([]entity.BatchAlert, error)
	ListOutOfStockProducts() ([]entity.ProductStockTotal, error)
}
