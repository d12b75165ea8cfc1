package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.PendingSaleRepository = (*PendingSaleRepo)(nil)

// PendingSaleRepo implementación del almacén de reservas. El carrito se
// persiste como jsonb en cart_data; la agregación de reclamos se hace en SQL
// expandiendo ese jsonb, no trayendo filas a memoria.
type PendingSaleRepo struct {
	q Querier
}

// NewPendingSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPendingSaleRepository(q Querier) *PendingSaleRepo {
	return &PendingSaleRepo{q: q}
}

// Create inserta una reserva en estado pending.
func (r *PendingSaleRepo) Create(ps *entity.PendingSale) error {
	cart, err := json.Marshal(ps.Cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	query := `
		INSERT INTO pending_sales (id, pharmacist_id, cart_data, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err = r.q.Exec(context.Background(), query, ps.ID, ps.PharmacistID, cart, ps.Status, ps.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pending sale: %w", err)
	}
	return nil
}

// GetForUpdate obtiene la reserva y bloquea su fila: dos cajas no pueden
// liquidar la misma reserva a la vez. Devuelve nil si no existe.
func (r *PendingSaleRepo) GetForUpdate(id string) (*entity.PendingSale, error) {
	query := `
		SELECT id, pharmacist_id, cart_data, status, created_at
		FROM pending_sales WHERE id = $1
		FOR UPDATE`
	var ps entity.PendingSale
	var cart []byte
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&ps.ID, &ps.PharmacistID, &cart, &ps.Status, &ps.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending sale for update: %w", err)
	}
	if err := json.Unmarshal(cart, &ps.Cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return &ps, nil
}

// MarkCompleted consume la reserva: pending -> completed. La fila nunca se borra.
func (r *PendingSaleRepo) MarkCompleted(id string) error {
	query := `UPDATE pending_sales SET status = $2 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, entity.PendingSaleStatusCompleted)
	if err != nil {
		return fmt.Errorf("mark pending sale completed: %w", err)
	}
	return nil
}

// SumPendingClaims total reclamado sobre un lote por TODAS las reservas
// pending: expande el jsonb del carrito y suma las cantidades del lote.
func (r *PendingSaleRepo) SumPendingClaims(inventoryItemID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM((item->>'quantity')::bigint), 0)
		FROM pending_sales ps,
		     jsonb_array_elements(ps.cart_data) AS item
		WHERE ps.status = 'pending'
		  AND item->>'inventory_item_id' = $1`
	var sum int64
	if err := r.q.QueryRow(context.Background(), query, inventoryItemID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum pending claims: %w", err)
	}
	return sum, nil
}

// ListPending cola de reservas a la espera de caja, más antiguas primero.
func (r *PendingSaleRepo) ListPending() ([]entity.PendingSaleQueueEntry, error) {
	query := `
		SELECT ps.id, COALESCE(u.username, ''), ps.cart_data, ps.created_at
		FROM pending_sales ps
		LEFT JOIN users u ON u.id = ps.pharmacist_id
		WHERE ps.status = 'pending'
		ORDER BY ps.created_at`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list pending sales: %w", err)
	}
	defer rows.Close()

	var out []entity.PendingSaleQueueEntry
	for rows.Next() {
		var e entity.PendingSaleQueueEntry
		var cart []byte
		if err := rows.Scan(&e.ID, &e.PharmacistName, &cart, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("list pending sales: %w", err)
		}
		if err := json.Unmarshal(cart, &e.Cart); err != nil {
			return nil, fmt.Errorf("unmarshal cart: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
