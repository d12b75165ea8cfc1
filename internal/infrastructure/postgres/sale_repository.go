package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del registro de ventas (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de la venta.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, user_id, total_amount, tax_amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.UserID, sale.TotalAmount, sale.TaxAmount, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateItem persiste una línea de venta.
func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (id, sale_id, inventory_item_id, quantity, price_at_sale, prescription_ref)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SaleID, item.InventoryItemID, item.Quantity, item.PriceAtSale,
		nullIfEmpty(item.PrescriptionRef),
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	return nil
}

// CountByInventoryItem líneas de venta que referencian un lote.
func (r *SaleRepo) CountByInventoryItem(inventoryItemID string) (int64, error) {
	query := `SELECT COUNT(*) FROM sale_items WHERE inventory_item_id = $1`
	var n int64
	if err := r.q.QueryRow(context.Background(), query, inventoryItemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sale items by inventory item: %w", err)
	}
	return n, nil
}

// ListHistory historial de ventas, más recientes primero.
func (r *SaleRepo) ListHistory() ([]entity.SaleSummary, error) {
	query := `
		SELECT s.id, s.total_amount, s.tax_amount, COALESCE(u.username, ''), s.created_at
		FROM sales s
		LEFT JOIN users u ON u.id = s.user_id
		ORDER BY s.created_at DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list sale history: %w", err)
	}
	defer rows.Close()

	var out []entity.SaleSummary
	for rows.Next() {
		var s entity.SaleSummary
		if err := rows.Scan(&s.ID, &s.TotalAmount, &s.TaxAmount, &s.CashierName, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("list sale history: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetReceipt recibo completo de una venta: cabecera + líneas con producto y
// lote resueltos. Devuelve nil si la venta no existe.
func (r *SaleRepo) GetReceipt(saleID string) (*entity.Receipt, error) {
	head := `
		SELECT s.id, s.total_amount, s.tax_amount, COALESCE(u.username, ''), s.created_at
		FROM sales s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.id = $1`
	var rec entity.Receipt
	err := r.q.QueryRow(context.Background(), head, saleID).Scan(
		&rec.SaleID, &rec.TotalAmount, &rec.TaxAmount, &rec.CashierName, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}

	lines := `
		SELECT p.name, i.batch_number, si.quantity, si.price_at_sale
		FROM sale_items si
		JOIN inventory_items i ON i.id = si.inventory_item_id
		JOIN products p ON p.id = i.product_id
		WHERE si.sale_id = $1
		ORDER BY p.name`
	rows, err := r.q.Query(context.Background(), lines, saleID)
	if err != nil {
		return nil, fmt.Errorf("get receipt lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l entity.ReceiptLine
		if err := rows.Scan(&l.ProductName, &l.BatchNumber, &l.Quantity, &l.PriceAtSale); err != nil {
			return nil, fmt.Errorf("get receipt lines: %w", err)
		}
		rec.Lines = append(rec.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}
