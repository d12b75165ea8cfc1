package purchasing

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// TxRunner corre el ciclo de vida de la orden en una transacción. El repo de
// inventario entra porque la recepción crea lotes; el de notificaciones para
// limpiar alertas de stock del producto recibido.
type TxRunner interface {
	RunPurchasing(ctx context.Context, fn func(
		poRepo repository.PurchaseOrderRepository,
		invRepo repository.InventoryItemRepository,
		productRepo repository.ProductRepository,
		notifRepo repository.NotificationRepository,
	) error) error
}

// AlertScanner se dispara tras una recepción para refrescar las alertas de
// stock con los lotes nuevos.
type AlertScanner interface {
	Scan(ctx context.Context) error
}

// AuditRecorder sink de auditoría fire-and-forget.
type AuditRecorder interface {
	Record(userID, username, action string, details map[string]any)
}
