package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

// InventoryItemRepo implementación del libro de inventario (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

const inventoryItemCols = `id, product_id, batch_number, expiry_date, quantity_of_packages,
	purchase_price, selling_price, COALESCE(supplier_id::text, ''), created_at, updated_at`

func scanInventoryItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	err := row.Scan(
		&it.ID, &it.ProductID, &it.BatchNumber, &it.ExpiryDate, &it.QuantityOfPackages,
		&it.PurchasePrice, &it.SellingPrice, &it.SupplierID, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

// GetByID obtiene un lote por ID. Devuelve nil si no existe.
func (r *InventoryItemRepo) GetByID(id string) (*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryItemCols + ` FROM inventory_items WHERE id = $1`
	it, err := scanInventoryItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(id string) (*entity.InventoryItem, error) {
	query := `SELECT ` + inventoryItemCols + ` FROM inventory_items WHERE id = $1 FOR UPDATE`
	it, err := scanInventoryItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get inventory item for update: %w", err)
	}
	return it, nil
}

// ExistsBatch verifica la unicidad (product_id, batch_number).
func (r *InventoryItemRepo) ExistsBatch(productID, batchNumber string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM inventory_items WHERE product_id = $1 AND batch_number = $2)`
	var exists bool
	if err := r.q.QueryRow(context.Background(), query, productID, batchNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists batch: %w", err)
	}
	return exists, nil
}

// Create inserta un lote nuevo en el libro.
func (r *InventoryItemRepo) Create(item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, product_id, batch_number, expiry_date, quantity_of_packages,
			purchase_price, selling_price, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.ProductID, item.BatchNumber, item.ExpiryDate, item.QuantityOfPackages,
		item.PurchasePrice, item.SellingPrice, nullIfEmpty(item.SupplierID),
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lote %s del producto %s: %w", item.BatchNumber, item.ProductID, domain.ErrDuplicateBatch)
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// Update actualiza todos los campos editables de un lote.
func (r *InventoryItemRepo) Update(item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET batch_number = $2, expiry_date = $3, quantity_of_packages = $4,
		    purchase_price = $5, selling_price = $6, supplier_id = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.BatchNumber, item.ExpiryDate, item.QuantityOfPackages,
		item.PurchasePrice, item.SellingPrice, nullIfEmpty(item.SupplierID), item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("lote %s del producto %s: %w", item.BatchNumber, item.ProductID, domain.ErrDuplicateBatch)
		}
		return fmt.Errorf("update inventory item: %w", err)
	}
	return nil
}

// Delete borra un lote.
func (r *InventoryItemRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("lote %s: %w", id, domain.ErrReferencedByOtherRecords)
		}
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

// Decrement resta qty al lote. El CHECK quantity_of_packages >= 0 de la tabla
// es la última línea de defensa; el caso de uso ya validó bajo lock.
func (r *InventoryItemRepo) Decrement(id string, qty int64) error {
	query := `
		UPDATE inventory_items
		SET quantity_of_packages = quantity_of_packages - $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, qty)
	if err != nil {
		return fmt.Errorf("decrement inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// TotalByProduct stock físico total de un producto sobre todos sus lotes.
func (r *InventoryItemRepo) TotalByProduct(productID string) (int64, error) {
	query := `SELECT COALESCE(SUM(quantity_of_packages), 0) FROM inventory_items WHERE product_id = $1`
	var total int64
	if err := r.q.QueryRow(context.Background(), query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("total by product: %w", err)
	}
	return total, nil
}

const inventoryDetailQuery = `
	SELECT i.id, i.product_id, i.batch_number, i.expiry_date, i.quantity_of_packages,
	       i.purchase_price, i.selling_price, COALESCE(i.supplier_id::text, ''),
	       i.created_at, i.updated_at,
	       p.name, COALESCE(p.brand, ''), p.requires_prescription,
	       COALESCE(s.name, '')
	FROM inventory_items i
	JOIN products p ON p.id = i.product_id
	LEFT JOIN suppliers s ON s.id = i.supplier_id`

func collectDetails(rows pgx.Rows) ([]entity.InventoryItemDetail, error) {
	defer rows.Close()
	var out []entity.InventoryItemDetail
	for rows.Next() {
		var d entity.InventoryItemDetail
		if err := rows.Scan(
			&d.ID, &d.ProductID, &d.BatchNumber, &d.ExpiryDate, &d.QuantityOfPackages,
			&d.PurchasePrice, &d.SellingPrice, &d.SupplierID, &d.CreatedAt, &d.UpdatedAt,
			&d.ProductName, &d.Brand, &d.RequiresPrescription, &d.SupplierName,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// List devuelve el libro completo con producto y proveedor resueltos.
func (r *InventoryItemRepo) List() ([]entity.InventoryItemDetail, error) {
	rows, err := r.q.Query(context.Background(), inventoryDetailQuery+` ORDER BY p.name, i.expiry_date`)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	out, err := collectDetails(rows)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return out, nil
}

// ListByProduct lotes de un producto, con filtro opcional por número de lote.
func (r *InventoryItemRepo) ListByProduct(productID, batchNumber string) ([]entity.InventoryItemDetail, error) {
	query := inventoryDetailQuery + ` WHERE i.product_id = $1`
	args := []any{productID}
	if batchNumber != "" {
		query += ` AND i.batch_number = $2`
		args = append(args, batchNumber)
	}
	query += ` ORDER BY i.expiry_date`

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	out, err := collectDetails(rows)
	if err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}
	return out, nil
}

const batchAlertCols = `i.id, i.product_id, p.name, i.batch_number, i.expiry_date, i.quantity_of_packages`

func collectBatchAlerts(rows pgx.Rows) ([]entity.BatchAlert, error) {
	defer rows.Close()
	var out []entity.BatchAlert
	for rows.Next() {
		var a entity.BatchAlert
		if err := rows.Scan(&a.InventoryItemID, &a.ProductID, &a.ProductName, &a.BatchNumber, &a.ExpiryDate, &a.QuantityOfPackages); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListExpired lotes con stock cuya fecha ya pasó.
func (r *InventoryItemRepo) ListExpired(today time.Time) ([]entity.BatchAlert, error) {
	query := `
		SELECT ` + batchAlertCols + `
		FROM inventory_items i JOIN products p ON p.id = i.product_id
		WHERE i.expiry_date < $1 AND i.quantity_of_packages > 0
		ORDER BY i.expiry_date`
	rows, err := r.q.Query(context.Background(), query, today)
	if err != nil {
		return nil, fmt.Errorf("list expired: %w", err)
	}
	out, err := collectBatchAlerts(rows)
	if err != nil {
		return nil, fmt.Errorf("list expired: %w", err)
	}
	return out, nil
}

// ListExpiringSoon lotes con stock que vencen dentro de la ventana.
// El corte se calcula acá para que ambos parámetros viajen como timestamp.
func (r *InventoryItemRepo) ListExpiringSoon(today time.Time, windowDays int) ([]entity.BatchAlert, error) {
	cutoff := today.AddDate(0, 0, windowDays)
	query := `
		SELECT ` + batchAlertCols + `
		FROM inventory_items i JOIN products p ON p.id = i.product_id
		WHERE i.expiry_date >= $1 AND i.expiry_date < $2
		  AND i.quantity_of_packages > 0
		ORDER BY i.expiry_date`
	rows, err := r.q.Query(context.Background(), query, today, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring soon: %w", err)
	}
	out, err := collectBatchAlerts(rows)
	if err != nil {
		return nil, fmt.Errorf("list expiring soon: %w", err)
	}
	return out, nil
}

// ListLowStock lotes con 0 < cantidad <= umbral.
func (r *InventoryItemRepo) ListLowStock(threshold int64) ([]entity.BatchAlert, error) {
	query := `
		SELECT ` + batchAlertCols + `
		FROM inventory_items i JOIN products p ON p.id = i.product_id
		WHERE i.quantity_of_packages > 0 AND i.quantity_of_packages <= $1
		ORDER BY i.quantity_of_packages`
	rows, err := r.q.Query(context.Background(), query, threshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	out, err := collectBatchAlerts(rows)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return out, nil
}

// ListOutOfStockProducts productos cuyo stock agregado es cero. El LEFT JOIN
// incluye productos sin ningún lote (nunca ingresados o con sus lotes
// borrados), no solo los que tienen lotes en cero.
func (r *InventoryItemRepo) ListOutOfStockProducts() ([]entity.ProductStockTotal, error) {
	query := `
		SELECT p.id, p.name, COALESCE(SUM(i.quantity_of_packages), 0) AS total
		FROM products p
		LEFT JOIN inventory_items i ON i.product_id = p.id
		GROUP BY p.id, p.name
		HAVING COALESCE(SUM(i.quantity_of_packages), 0) = 0
		ORDER BY p.name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list out of stock: %w", err)
	}
	defer rows.Close()

	var out []entity.ProductStockTotal
	for rows.Next() {
		var t entity.ProductStockTotal
		if err := rows.Scan(&t.ProductID, &t.ProductName, &t.TotalStock); err != nil {
			return nil, fmt.Errorf("list out of stock: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
