package repository

import "github.com/jhoicas/farmacia-pos/internal/domain/entity"

// PendingSaleRepository puerto del almacén de reservas (ventas pendientes).
// Las reservas jamás se borran: forman la cola que consume la caja.
type PendingSaleRepository interface {
	Create(ps *entity.PendingSale) error
	// GetForUpdate bloquea la reserva (FOR UPDATE) para consumirla
	// exactamente una vez. Devuelve nil si no existe.
	GetForUpdate(id string) (*entity.PendingSale, error)
	MarkCompleted(id string) error
	// SumPendingClaims suma las cantidades que todas las reservas pending
	// reclaman sobre un lote (escaneo del cart_data embebido en SQL).
	SumPendingClaims(inventoryItemID string) (int64, error)
	ListPending() ([]entity.PendingSaleQueueEntry, error)
}
