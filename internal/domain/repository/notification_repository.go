package repository

import "github.com/jhoicas/farmacia-pos/internal/domain/entity"

// NotificationRepository puerto de la tabla de notificaciones. La compuerta
// de deduplicación (ExistsUnread + Create en la misma transacción) es la que
// garantiza a lo sumo una alerta no leída por (product_id, type).
type NotificationRepository interface {
	// ExistsUnread verifica si ya hay una notificación NO leída para el par
	// (productID, tipo). Debe consultarse inmediatamente antes del insert,
	// dentro de la misma transacción del barrido.
	ExistsUnread(productID, notificationType string) (bool, error)
	Create(n *entity.Notification) error
	// MarkReadByProduct marca como leídas las alertas no leídas del producto
	// (best effort al recibir stock nuevo; el caller ignora el error).
	MarkReadByProduct(productID string) error

	List(status string, limit int) ([]entity.Notification, error)
	UnreadCount() (int64, error)
	MarkRead(id string) (bool, error)
	MarkAllRead() error
}
