package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta pendiente (reserva).
const (
	PendingSaleStatusPending   = "pending"
	PendingSaleStatusCompleted = "completed"
)

// CartItem línea de un carrito. UnitPrice es el precio capturado al reservar;
// la liquidación NUNCA lo usa para cobrar: siempre relee el precio del lote.
type CartItem struct {
	InventoryItemID string          `json:"inventory_item_id"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	PrescriptionRef string          `json:"prescription_ref,omitempty"` // referencia opaca al adjunto de receta
}

// PendingSale carrito preparado por un farmacéutico a la espera de liquidación
// en caja. Mientras está en pending sus cantidades son un reclamo blando sobre
// el stock: reducen la disponibilidad sin tocar el libro. Nunca se borra
// físicamente; consume la caja exactamente una vez pasándolo a completed.
type PendingSale struct {
	ID           string
	PharmacistID string
	Cart         []CartItem
	Status       string
	CreatedAt    time.Time
}

// PendingSaleQueueEntry fila de la cola que consulta la caja.
type PendingSaleQueueEntry struct {
	ID             string
	PharmacistName string
	Cart           []CartItem
	CreatedAt      time.Time
}
