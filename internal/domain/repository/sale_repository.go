package repository

import "github.com/jhoicas/farmacia-pos/internal/domain/entity"

// SaleRepository puerto del registro de ventas. Las ventas son inmutables:
// solo Create/CreateItem dentro de la transacción de liquidación y lecturas.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	// CountByInventoryItem cuántas líneas de venta referencian un lote
	// (bloquea el borrado del lote).
	CountByInventoryItem(inventoryItemID string) (int64, error)
	ListHistory() ([]entity.SaleSummary, error)
	GetReceipt(saleID string) (*entity.Receipt, error)
}
