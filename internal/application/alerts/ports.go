package alerts

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// TxRunner ejecuta el barrido completo dentro de una transacción de BD:
// la compuerta de deduplicación (chequeo + insert) debe ver un snapshot
// consistente aunque corran dos barridos a la vez.
type TxRunner interface {
	RunAlerts(ctx context.Context, fn func(
		invRepo repository.InventoryItemRepository,
		notifRepo repository.NotificationRepository,
	) error) error
}
