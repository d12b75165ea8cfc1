package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest alta manual de un lote en el libro de inventario.
type CreateBatchRequest struct {
	ProductID          string          `json:"product_id"`
	BatchNumber        string          `json:"batch_number"`
	ExpiryDate         string          `json:"expiry_date"` // YYYY-MM-DD
	QuantityOfPackages int64           `json:"quantity_of_packages"`
	PurchasePrice      decimal.Decimal `json:"purchase_price"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	SupplierID         string          `json:"supplier_id,omitempty"`
}

// UpdateBatchRequest ajuste manual de un lote existente.
type UpdateBatchRequest struct {
	BatchNumber        string          `json:"batch_number"`
	ExpiryDate         string          `json:"expiry_date"` // YYYY-MM-DD
	QuantityOfPackages int64           `json:"quantity_of_packages"`
	PurchasePrice      decimal.Decimal `json:"purchase_price"`
	SellingPrice       decimal.Decimal `json:"selling_price"`
	SupplierID         string          `json:"supplier_id,omitempty"`
}

// InventoryItemResponse fila de listado de inventario.
type InventoryItemResponse struct {
	ID                   string          `json:"id"`
	ProductID            string          `json:"product_id"`
	ProductName          string          `json:"name"`
	Brand                string          `json:"brand"`
	RequiresPrescription bool            `json:"requires_prescription"`
	BatchNumber          string          `json:"batch_number"`
	ExpiryDate           time.Time       `json:"expiry_date"`
	QuantityOfPackages   int64           `json:"quantity_of_packages"`
	PurchasePrice        decimal.Decimal `json:"purchase_price"`
	SellingPrice         decimal.Decimal `json:"selling_price"`
	SupplierID           string          `json:"supplier_id,omitempty"`
	SupplierName         string          `json:"supplier_name,omitempty"`
}
