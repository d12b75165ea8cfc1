package repository

import (
	"time"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// POFilter filtros del listado de órdenes de compra.
type POFilter struct {
	Status    string
	CreatedBy string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// PurchaseOrderRepository puerto del ciclo de vida de órdenes de compra.
// Toda transición de estado se hace bajo GetForUpdate dentro de la
// transacción del caso de uso.
type PurchaseOrderRepository interface {
	Create(po *entity.PurchaseOrder) error
	CreateItem(item *entity.PurchaseOrderItem) error
	// GetForUpdate bloquea la cabecera (FOR UPDATE). Devuelve nil si no existe.
	GetForUpdate(id string) (*entity.PurchaseOrder, error)
	UpdateSupplier(id, supplierID, updatedBy string) error
	DeleteItems(poID string) error
	SetCancelled(id, canceledBy string) error
	SetReceived(id, receivedBy string) error
	AddHistory(poID, action, changedBy string) error
	DeleteHistory(poID string) error
	Delete(id string) error

	List(filter POFilter) ([]entity.PurchaseOrderSummary, error)
	GetDetail(id string) (*entity.PurchaseOrderDetail, error)
}
