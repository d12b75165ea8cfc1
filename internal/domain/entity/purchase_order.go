package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. Pending es el único estado editable;
// Received y Cancelled son terminales (salvo borrado admin).
const (
	POStatusPending   = "Pending"
	POStatusReceived  = "Received"
	POStatusCancelled = "Cancelled"
)

// Acciones registradas en el historial de la orden.
const (
	POActionCreated   = "Created"
	POActionEdited    = "Edited"
	POActionCancelled = "Cancelled"
	POActionReceived  = "Received"
)

// PurchaseOrder cabecera de la orden de compra. La recepción es la única
// transición que crea lotes de inventario y es irreversible.
type PurchaseOrder struct {
	ID          string
	SupplierID  string
	Status      string
	CreatedBy   string
	UpdatedBy   string
	ReceivedBy  string
	CanceledBy  string
	DateCreated time.Time
	UpdatedAt   time.Time
	ReceivedAt  *time.Time
	CanceledAt  *time.Time
}

// PurchaseOrderItem línea de la orden (producto pedido, aún no es un lote).
type PurchaseOrderItem struct {
	ID           string
	POID         string
	ProductID    string
	Quantity     int64
	PricePerItem decimal.Decimal
}

// POHistoryEntry entrada append-only del historial de auditoría de la orden.
type POHistoryEntry struct {
	ID        string
	POID      string
	Action    string
	ChangedBy string
	ChangedAt time.Time
}

// PurchaseOrderSummary fila de listado con agregados.
type PurchaseOrderSummary struct {
	ID            string
	Status        string
	SupplierName  string
	CreatedByName string
	TotalItems    int64
	TotalQuantity int64
	TotalValue    decimal.Decimal
	DateCreated   time.Time
	ReceivedAt    *time.Time
	CanceledAt    *time.Time
}

// PurchaseOrderDetail cabecera + líneas + historial reciente.
type PurchaseOrderDetail struct {
	PurchaseOrder
	SupplierName  string
	CreatedByName string
	TotalValue    decimal.Decimal
	Items         []PurchaseOrderItemDetail
	History       []POHistoryView
}

// PurchaseOrderItemDetail línea con el nombre del producto resuelto.
type PurchaseOrderItemDetail struct {
	PurchaseOrderItem
	ProductName string
}

// POHistoryView entrada de historial con el username resuelto.
type POHistoryView struct {
	Action        string
	ChangedByName string
	ChangedAt     time.Time
}
