package sales

import (
	"context"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando los
// repositorios de venta atados a esa tx. Garantiza atomicidad entre el
// decremento del libro, el registro de la venta y el cierre de la reserva.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		invRepo repository.InventoryItemRepository,
		pendingRepo repository.PendingSaleRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// AuditRecorder sink de auditoría fire-and-forget (colaborador externo).
type AuditRecorder interface {
	Record(userID, username, action string, details map[string]any)
}

// ReceiptPDFGenerator genera la representación en PDF de un recibo de venta.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(receipt *entity.Receipt, pharmacyName string) ([]byte, error)
}
