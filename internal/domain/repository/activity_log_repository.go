package repository

import "github.com/jhoicas/farmacia-pos/internal/domain/entity"

// ActivityLogRepository puerto del sink de auditoría (append-only).
type ActivityLogRepository interface {
	Insert(entry *entity.ActivityLogEntry) error
}
