package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// CartLine línea de carrito que envía el cliente. El precio NO viaja en el
// request: la liquidación lo relee siempre del libro.
type CartLine struct {
	InventoryItemID string `json:"inventory_item_id"`
	Quantity        int64  `json:"quantity"`
	PrescriptionRef string `json:"prescription_ref,omitempty"`
}

// HandoffRequest un farmacéutico entrega un carrito a la caja (reserva).
type HandoffRequest struct {
	Cart []CartLine `json:"cart"`
}

// SettleRequest liquidación en caja: o bien una reserva (PendingSaleID) o un
// carrito directo; exactamente uno de los dos.
type SettleRequest struct {
	PendingSaleID string     `json:"pending_sale_id,omitempty"`
	Cart          []CartLine `json:"cart,omitempty"`
}

// SettleResponse resultado de la liquidación.
type SettleResponse struct {
	SaleID      string          `json:"sale_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// PendingSaleResponse fila de la cola de caja.
type PendingSaleResponse struct {
	ID             string            `json:"id"`
	PharmacistName string            `json:"pharmacist_name"`
	Cart           []entity.CartItem `json:"cart_data"`
	CreatedAt      time.Time         `json:"created_at"`
}
