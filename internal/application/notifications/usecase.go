// Package notifications expone la lectura y el marcado de alertas generadas
// por el escáner de inventario. La creación vive en el escáner; aquí solo se
// consulta y se marca como leído.
package notifications

import (
	"fmt"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// UseCase lecturas y marcado de notificaciones.
type UseCase struct {
	notifRepo repository.NotificationRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(notifRepo repository.NotificationRepository) *UseCase {
	return &UseCase{notifRepo: notifRepo}
}

// List devuelve notificaciones filtradas por estado: "unread", "read" o ""
// (todas), más recientes primero.
func (uc *UseCase) List(status string, limit int) ([]entity.Notification, error) {
	switch status {
	case "", "unread", "read":
	default:
		return nil, fmt.Errorf("estado %q: %w", status, domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.notifRepo.List(status, limit)
}

// UnreadCount total de alertas sin leer (para el badge del front).
func (uc *UseCase) UnreadCount() (int64, error) {
	return uc.notifRepo.UnreadCount()
}

// MarkRead marca una notificación como leída.
func (uc *UseCase) MarkRead(id string) error {
	ok, err := uc.notifRepo.MarkRead(id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notificación %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// MarkAllRead marca todas como leídas. Vuelve a habilitar la generación de
// alertas nuevas para todos los pares (producto, tipo).
func (uc *UseCase) MarkAllRead() error {
	return uc.notifRepo.MarkAllRead()
}
