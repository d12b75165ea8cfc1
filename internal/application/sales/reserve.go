package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// ReserveUseCase entrega de carrito del farmacéutico a la caja: crea una
// venta pendiente cuyas cantidades son un reclamo blando sobre el stock.
type ReserveUseCase struct {
	txRunner TxRunner
	audit    AuditRecorder
}

// NewReserveUseCase construye el caso de uso.
func NewReserveUseCase(txRunner TxRunner, audit AuditRecorder) *ReserveUseCase {
	return &ReserveUseCase{txRunner: txRunner, audit: audit}
}

// Reserve valida disponibilidad (física menos reclamos pendientes) y crea la
// reserva. La secuencia completa corre en una transacción: se bloquea cada
// lote referenciado (SELECT FOR UPDATE), se agrega lo reclamado por TODAS
// las reservas pending sobre ese lote y recién entonces se inserta — así dos
// entregas concurrentes no pueden pasar ambas el chequeo y sobre-reservar.
func (uc *ReserveUseCase) Reserve(ctx context.Context, actor dto.Actor, cart []dto.CartLine) (string, error) {
	if len(cart) == 0 {
		return "", fmt.Errorf("carrito vacío: %w", domain.ErrInvalidInput)
	}
	for _, line := range cart {
		if line.InventoryItemID == "" || line.Quantity <= 0 {
			return "", fmt.Errorf("línea de carrito inválida: %w", domain.ErrInvalidInput)
		}
	}

	reservationID := uuid.New().String()
	now := time.Now()

	err := uc.txRunner.RunSales(ctx, func(
		invRepo repository.InventoryItemRepository,
		pendingRepo repository.PendingSaleRepository,
		_ repository.SaleRepository,
	) error {
		items := make([]entity.CartItem, 0, len(cart))
		for _, line := range cart {
			// Bloquea la fila del lote antes de leer cantidades
			item, err := invRepo.GetForUpdate(line.InventoryItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return fmt.Errorf("lote %s del carrito: %w", line.InventoryItemID, domain.ErrNotFound)
			}
			// Reclamos de todas las demás reservas pendientes sobre este lote
			claimed, err := pendingRepo.SumPendingClaims(line.InventoryItemID)
			if err != nil {
				return err
			}
			if item.QuantityOfPackages-claimed < line.Quantity {
				return fmt.Errorf("lote %s: %w", item.BatchNumber, domain.ErrInsufficientAvailableStock)
			}
			items = append(items, entity.CartItem{
				InventoryItemID: line.InventoryItemID,
				Quantity:        line.Quantity,
				UnitPrice:       item.SellingPrice,
				PrescriptionRef: line.PrescriptionRef,
			})
		}
		return pendingRepo.Create(&entity.PendingSale{
			ID:           reservationID,
			PharmacistID: actor.UserID,
			Cart:         items,
			Status:       entity.PendingSaleStatusPending,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return "", err
	}

	uc.audit.Record(actor.UserID, actor.Username, "sale_handoff", map[string]any{
		"key":            "sale_handoff",
		"reservation_id": reservationID,
	})
	return reservationID, nil
}
