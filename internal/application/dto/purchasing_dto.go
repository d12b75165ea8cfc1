package dto

import "github.com/shopspring/decimal"

// POItemRequest línea de una orden de compra (producto pedido).
type POItemRequest struct {
	ProductID    string          `json:"product_id"`
	Quantity     int64           `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
}

// CreatePORequest alta de orden de compra.
type CreatePORequest struct {
	SupplierID string          `json:"supplier_id"`
	Items      []POItemRequest `json:"items"`
}

// EditPORequest reemplaza proveedor y líneas de una orden Pending.
type EditPORequest struct {
	SupplierID string          `json:"supplier_id"`
	Items      []POItemRequest `json:"items"`
}

// ReceivedItemRequest ítem recibido: se convierte en un lote del libro.
type ReceivedItemRequest struct {
	ProductID    string          `json:"product_id"`
	BatchNumber  string          `json:"batch_number"`
	ExpiryDate   string          `json:"expiry_date"` // YYYY-MM-DD
	Quantity     int64           `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// ReceivePORequest recepción de una orden Pending.
type ReceivePORequest struct {
	ReceivedItems []ReceivedItemRequest `json:"receivedItems"`
}

// POListQuery filtros del listado de órdenes.
type POListQuery struct {
	Status    string `query:"status"`
	CreatedBy string `query:"created_by"`
	TimeRange string `query:"time_range"` // today | last_7_days | last_30_days | custom
	DateFrom  string `query:"date_from"`  // YYYY-MM-DD (custom)
	DateTo    string `query:"date_to"`    // YYYY-MM-DD (custom)
}
