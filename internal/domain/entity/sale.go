package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale registro financiero inmutable de una venta liquidada.
// Se crea una sola vez, de forma atómica; nunca se actualiza ni se borra.
type Sale struct {
	ID          string
	UserID      string
	TotalAmount decimal.Decimal
	TaxAmount   decimal.Decimal
	CreatedAt   time.Time
}

// SaleItem línea de una venta. PriceAtSale es el precio del lote releído del
// libro en el momento de la liquidación.
type SaleItem struct {
	ID              string
	SaleID          string
	InventoryItemID string
	Quantity        int64
	PriceAtSale     decimal.Decimal
	PrescriptionRef string
}

// SaleSummary fila del historial de ventas.
type SaleSummary struct {
	ID          string
	TotalAmount decimal.Decimal
	TaxAmount   decimal.Decimal
	CashierName string
	CreatedAt   time.Time
}

// Receipt detalle completo de una venta para el recibo (JSON o PDF).
type Receipt struct {
	SaleID      string
	TotalAmount decimal.Decimal
	TaxAmount   decimal.Decimal
	CashierName string
	CreatedAt   time.Time
	Lines       []ReceiptLine
}

// ReceiptLine línea del recibo con el nombre del producto resuelto.
type ReceiptLine struct {
	ProductName string
	BatchNumber string
	Quantity    int64
	PriceAtSale decimal.Decimal
}
