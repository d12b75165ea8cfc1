package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación de la tabla de notificaciones.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// ExistsUnread compuerta de deduplicación: ¿hay alerta no leída para el par
// (producto, tipo)? Debe correr en la misma transacción que el insert.
func (r *NotificationRepo) ExistsUnread(productID, notificationType string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE product_id = $1 AND type = $2 AND is_read = false
		)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, productID, notificationType).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists unread notification: %w", err)
	}
	return exists, nil
}

// Create inserta una notificación.
func (r *NotificationRepo) Create(n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, product_id, type, message, link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		n.ID, n.ProductID, n.Type, n.Message, nullIfEmpty(n.Link), n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// MarkReadByProduct marca como leídas todas las no leídas del producto.
func (r *NotificationRepo) MarkReadByProduct(productID string) error {
	query := `UPDATE notifications SET is_read = true WHERE product_id = $1 AND is_read = false`
	_, err := r.q.Exec(context.Background(), query, productID)
	if err != nil {
		return fmt.Errorf("mark notifications read by product: %w", err)
	}
	return nil
}

// List notificaciones filtradas por estado, más recientes primero.
func (r *NotificationRepo) List(status string, limit int) ([]entity.Notification, error) {
	query := `
		SELECT id, product_id, type, message, COALESCE(link, ''), is_read, created_at
		FROM notifications`
	switch status {
	case "unread":
		query += ` WHERE is_read = false`
	case "read":
		query += ` WHERE is_read = true`
	}
	query += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.ProductID, &n.Type, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount total de no leídas.
func (r *NotificationRepo) UnreadCount() (int64, error) {
	var n int64
	if err := r.q.QueryRow(context.Background(), `SELECT COUNT(*) FROM notifications WHERE is_read = false`).Scan(&n); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return n, nil
}

// MarkRead marca una notificación. Falso si el ID no existe.
func (r *NotificationRepo) MarkRead(id string) (bool, error) {
	tag, err := r.q.Exec(context.Background(), `UPDATE notifications SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead marca todas como leídas.
func (r *NotificationRepo) MarkAllRead() error {
	_, err := r.q.Exec(context.Background(), `UPDATE notifications SET is_read = true WHERE is_read = false`)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
