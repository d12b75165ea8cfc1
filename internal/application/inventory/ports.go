package inventory

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// TxRunner corre las mutaciones del libro en una transacción, con los
// repositorios atados a esa tx. El repo de ventas entra para el chequeo de
// referencias antes de borrar un lote.
type TxRunner interface {
	RunInventory(ctx context.Context, fn func(
		invRepo repository.InventoryItemRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// AlertScanner se dispara después de cada mutación del libro para que las
// alertas reflejen el estado nuevo sin esperar el barrido periódico.
type AlertScanner interface {
	Scan(ctx context.Context) error
}

// AuditRecorder sink de auditoría fire-and-forget.
type AuditRecorder interface {
	Record(userID, username, action string, details map[string]any)
}
