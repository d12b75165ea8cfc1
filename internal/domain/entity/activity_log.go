package entity

import "time"

// ActivityLogEntry registro de auditoría fire-and-forget. Un fallo al
// escribirlo jamás revierte la transacción de negocio que lo originó.
type ActivityLogEntry struct {
	ID        string
	UserID    string
	Username  string
	Action    string // minúsculas con guiones bajos: sale_completed, create_po, ...
	Details   string // JSON con contexto adicional
	CreatedAt time.Time
}
