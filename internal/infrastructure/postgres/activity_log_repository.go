package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo tabla de auditoría append-only.
type ActivityLogRepo struct {
	q Querier
}

// NewActivityLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivityLogRepository(q Querier) *ActivityLogRepo {
	return &ActivityLogRepo{q: q}
}

// Insert agrega una entrada. Nunca se actualiza ni se borra.
func (r *ActivityLogRepo) Insert(e *entity.ActivityLogEntry) error {
	query := `
		INSERT INTO activity_log (id, user_id, username, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, nullIfEmpty(e.UserID), e.Username, e.Action, e.Details, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}
