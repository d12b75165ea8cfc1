package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/farmacia-pos/internal/application/alerts"
	"github.com/jhoicas/farmacia-pos/internal/application/inventory"
	"github.com/jhoicas/farmacia-pos/internal/application/purchasing"
	"github.com/jhoicas/farmacia-pos/internal/application/sales"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

var _ sales.TxRunner = (*TxRunner)(nil)
var _ purchasing.TxRunner = (*TxRunner)(nil)
var _ alerts.TxRunner = (*TxRunner)(nil)
var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL, con los
// repos atados a la tx. Commit solo si fn devuelve nil; cualquier error
// revierte todo lo hecho dentro del callback.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSales transacción de liquidación: libro + reservas + ventas.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	invRepo repository.InventoryItemRepository,
	pendingRepo repository.PendingSaleRepository,
	saleRepo repository.SaleRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInventoryItemRepository(tx), NewPendingSaleRepository(tx), NewSaleRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunPurchasing transacción del ciclo de vida de órdenes de compra; la
// recepción además escribe lotes y limpia notificaciones.
func (r *TxRunner) RunPurchasing(ctx context.Context, fn func(
	poRepo repository.PurchaseOrderRepository,
	invRepo repository.InventoryItemRepository,
	productRepo repository.ProductRepository,
	notifRepo repository.NotificationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewPurchaseOrderRepository(tx), NewInventoryItemRepository(tx), NewProductRepository(tx), NewNotificationRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunAlerts transacción del barrido de alertas: la compuerta de
// deduplicación (ExistsUnread + Create) necesita correr en la misma tx.
func (r *TxRunner) RunAlerts(ctx context.Context, fn func(
	invRepo repository.InventoryItemRepository,
	notifRepo repository.NotificationRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInventoryItemRepository(tx), NewNotificationRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunInventory transacción de mutaciones manuales del libro; el repo de
// ventas entra para el chequeo de referencias antes de borrar.
func (r *TxRunner) RunInventory(ctx context.Context, fn func(
	invRepo repository.InventoryItemRepository,
	saleRepo repository.SaleRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewInventoryItemRepository(tx), NewSaleRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
