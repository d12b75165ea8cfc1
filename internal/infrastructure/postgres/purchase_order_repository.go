package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación del ciclo de vida de órdenes de compra.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta la cabecera.
func (r *PurchaseOrderRepo) Create(po *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, supplier_id, status, created_by, date_created, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`
	_, err := r.q.Exec(context.Background(), query,
		po.ID, po.SupplierID, po.Status, po.CreatedBy, po.DateCreated,
	)
	if err != nil {
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

// CreateItem inserta una línea de la orden.
func (r *PurchaseOrderRepo) CreateItem(item *entity.PurchaseOrderItem) error {
	query := `
		INSERT INTO purchase_order_items (id, po_id, product_id, quantity, price_per_item)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.POID, item.ProductID, item.Quantity, item.PricePerItem,
	)
	if err != nil {
		return fmt.Errorf("insert purchase order item: %w", err)
	}
	return nil
}

// GetForUpdate bloquea la cabecera (FOR UPDATE). Devuelve nil si no existe.
func (r *PurchaseOrderRepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, supplier_id, status, created_by,
		       COALESCE(updated_by::text, ''), COALESCE(received_by::text, ''), COALESCE(canceled_by::text, ''),
		       date_created, updated_at, received_at, canceled_at
		FROM purchase_orders WHERE id = $1
		FOR UPDATE`
	var po entity.PurchaseOrder
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&po.ID, &po.SupplierID, &po.Status, &po.CreatedBy,
		&po.UpdatedBy, &po.ReceivedBy, &po.CanceledBy,
		&po.DateCreated, &po.UpdatedAt, &po.ReceivedAt, &po.CanceledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order for update: %w", err)
	}
	return &po, nil
}

// UpdateSupplier cambia el proveedor de la orden (edición).
func (r *PurchaseOrderRepo) UpdateSupplier(id, supplierID, updatedBy string) error {
	query := `
		UPDATE purchase_orders
		SET supplier_id = $2, updated_by = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, supplierID, updatedBy)
	if err != nil {
		return fmt.Errorf("update purchase order supplier: %w", err)
	}
	return nil
}

// DeleteItems borra todas las líneas de la orden (previo al reemplazo).
func (r *PurchaseOrderRepo) DeleteItems(poID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM purchase_order_items WHERE po_id = $1`, poID)
	if err != nil {
		return fmt.Errorf("delete purchase order items: %w", err)
	}
	return nil
}

// SetCancelled transición a Cancelled con sello de quién y cuándo.
func (r *PurchaseOrderRepo) SetCancelled(id, canceledBy string) error {
	query := `
		UPDATE purchase_orders
		SET status = $2, canceled_by = $3, canceled_at = now(), updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, entity.POStatusCancelled, canceledBy)
	if err != nil {
		return fmt.Errorf("cancel purchase order: %w", err)
	}
	return nil
}

// SetReceived transición a Received con sello de quién y cuándo.
func (r *PurchaseOrderRepo) SetReceived(id, receivedBy string) error {
	query := `
		UPDATE purchase_orders
		SET status = $2, received_by = $3, received_at = now(), updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, entity.POStatusReceived, receivedBy)
	if err != nil {
		return fmt.Errorf("receive purchase order: %w", err)
	}
	return nil
}

// AddHistory agrega una entrada append-only al historial de la orden.
func (r *PurchaseOrderRepo) AddHistory(poID, action, changedBy string) error {
	query := `
		INSERT INTO po_history (id, po_id, action, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, now())`
	_, err := r.q.Exec(context.Background(), query, uuid.New().String(), poID, action, changedBy)
	if err != nil {
		return fmt.Errorf("insert po history: %w", err)
	}
	return nil
}

// DeleteHistory borra el historial de la orden (solo en el borrado admin).
func (r *PurchaseOrderRepo) DeleteHistory(poID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM po_history WHERE po_id = $1`, poID)
	if err != nil {
		return fmt.Errorf("delete po history: %w", err)
	}
	return nil
}

// Delete borra la cabecera.
func (r *PurchaseOrderRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}
	return nil
}

// List listado con agregados por orden y filtros opcionales.
func (r *PurchaseOrderRepo) List(filter repository.POFilter) ([]entity.PurchaseOrderSummary, error) {
	query := `
		SELECT po.id, po.status, COALESCE(s.name, ''), COALESCE(u.username, ''),
		       COUNT(poi.id), COALESCE(SUM(poi.quantity), 0),
		       COALESCE(SUM(poi.quantity * poi.price_per_item), 0),
		       po.date_created, po.received_at, po.canceled_at
		FROM purchase_orders po
		LEFT JOIN suppliers s ON s.id = po.supplier_id
		LEFT JOIN users u ON u.id = po.created_by
		LEFT JOIN purchase_order_items poi ON poi.po_id = po.id
		WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND po.status = $%d", len(args))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		query += fmt.Sprintf(" AND po.created_by = $%d", len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND po.date_created >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND po.date_created < $%d", len(args))
	}
	query += `
		GROUP BY po.id, po.status, s.name, u.username, po.date_created, po.received_at, po.canceled_at
		ORDER BY po.date_created DESC`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var out []entity.PurchaseOrderSummary
	for rows.Next() {
		var s entity.PurchaseOrderSummary
		if err := rows.Scan(
			&s.ID, &s.Status, &s.SupplierName, &s.CreatedByName,
			&s.TotalItems, &s.TotalQuantity, &s.TotalValue,
			&s.DateCreated, &s.ReceivedAt, &s.CanceledAt,
		); err != nil {
			return nil, fmt.Errorf("list purchase orders: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetDetail cabecera + líneas + historial. Devuelve nil si la orden no existe.
func (r *PurchaseOrderRepo) GetDetail(id string) (*entity.PurchaseOrderDetail, error) {
	head := `
		SELECT po.id, po.supplier_id, po.status, po.created_by,
		       COALESCE(po.updated_by::text, ''), COALESCE(po.received_by::text, ''), COALESCE(po.canceled_by::text, ''),
		       po.date_created, po.updated_at, po.received_at, po.canceled_at,
		       COALESCE(s.name, ''), COALESCE(u.username, '')
		FROM purchase_orders po
		LEFT JOIN suppliers s ON s.id = po.supplier_id
		LEFT JOIN users u ON u.id = po.created_by
		WHERE po.id = $1`
	var d entity.PurchaseOrderDetail
	err := r.q.QueryRow(context.Background(), head, id).Scan(
		&d.ID, &d.SupplierID, &d.Status, &d.CreatedBy,
		&d.UpdatedBy, &d.ReceivedBy, &d.CanceledBy,
		&d.DateCreated, &d.UpdatedAt, &d.ReceivedAt, &d.CanceledAt,
		&d.SupplierName, &d.CreatedByName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order detail: %w", err)
	}

	items := `
		SELECT poi.id, poi.po_id, poi.product_id, poi.quantity, poi.price_per_item, p.name
		FROM purchase_order_items poi
		JOIN products p ON p.id = poi.product_id
		WHERE poi.po_id = $1
		ORDER BY p.name`
	rows, err := r.q.Query(context.Background(), items, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseOrderItemDetail
		if err := rows.Scan(&it.ID, &it.POID, &it.ProductID, &it.Quantity, &it.PricePerItem, &it.ProductName); err != nil {
			return nil, fmt.Errorf("get purchase order items: %w", err)
		}
		d.Items = append(d.Items, it)
		d.TotalValue = d.TotalValue.Add(it.PricePerItem.Mul(decimal.NewFromInt(it.Quantity)))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hist := `
		SELECT h.action, COALESCE(u.username, ''), h.changed_at
		FROM po_history h
		LEFT JOIN users u ON u.id = h.changed_by
		WHERE h.po_id = $1
		ORDER BY h.changed_at DESC
		LIMIT 20`
	hrows, err := r.q.Query(context.Background(), hist, id)
	if err != nil {
		return nil, fmt.Errorf("get purchase order history: %w", err)
	}
	defer hrows.Close()
	for hrows.Next() {
		var h entity.POHistoryView
		if err := hrows.Scan(&h.Action, &h.ChangedByName, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("get purchase order history: %w", err)
		}
		d.History = append(d.History, h)
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}
