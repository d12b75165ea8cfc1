package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem es un lote físico de un producto: el registro autoritativo
// del libro de inventario. (product_id, batch_number) es único por producto
// y quantity_of_packages nunca baja de cero.
type InventoryItem struct {
	ID                 string
	ProductID          string
	BatchNumber        string
	ExpiryDate         time.Time
	QuantityOfPackages int64
	PurchasePrice      decimal.Decimal
	SellingPrice       decimal.Decimal
	SupplierID         string // vacío = sin proveedor asociado
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InventoryItemDetail fila de lectura para listados: lote + datos del
// producto y nombre del proveedor.
type InventoryItemDetail struct {
	InventoryItem
	ProductName          string
	Brand                string
	RequiresPrescription bool
	SupplierName         string
}

// BatchAlert fila que devuelven las consultas del escáner de alertas a nivel
// de lote (vencidos, por vencer, stock bajo).
type BatchAlert struct {
	InventoryItemID    string
	ProductID          string
	ProductName        string
	BatchNumber        string
	ExpiryDate         time.Time
	QuantityOfPackages int64
}

// ProductStockTotal stock físico agregado de un producto sobre todos sus lotes.
type ProductStockTotal struct {
	ProductID   string
	ProductName string
	TotalStock  int64
}
