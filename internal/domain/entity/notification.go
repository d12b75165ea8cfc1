package entity

import "time"

// Tipos de alerta de salud del inventario.
const (
	NotificationTypeExpired      = "expired"
	NotificationTypeExpiringSoon = "expiring_soon"
	NotificationTypeOutOfStock   = "out_of_stock"
	NotificationTypeLowStock     = "low_stock"
)

// Notification alerta derivada del libro de inventario. El escáner garantiza
// como máximo UNA notificación no leída por par (product_id, type); la tabla
// en sí es append-only respecto a la creación.
type Notification struct {
	ID        string
	ProductID string
	Type      string
	Message   string // JSON {key, name, batch, ...} para traducción en el front
	Link      string
	IsRead    bool
	CreatedAt time.Time
}
