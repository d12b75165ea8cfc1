package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// UseCase operaciones sobre el libro de inventario: altas manuales de lotes,
// ajustes, bajas y lecturas. Las mutaciones corren en transacción; las
// lecturas van directo al pool.
type UseCase struct {
	txRunner TxRunner
	invRepo  repository.InventoryItemRepository
	scanner  AlertScanner
	audit    AuditRecorder
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, invRepo repository.InventoryItemRepository, scanner AlertScanner, audit AuditRecorder, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, invRepo: invRepo, scanner: scanner, audit: audit, log: log}
}

// parseExpiry valida formato YYYY-MM-DD y que la fecha no sea anterior a hoy
// (hoy mismo es aceptable: el lote vence al final del día).
func parseExpiry(s string) (time.Time, error) {
	expiry, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha de vencimiento %q: %w", s, domain.ErrInvalidInput)
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if expiry.Before(today) {
		return time.Time{}, fmt.Errorf("fecha %s ya pasó: %w", s, domain.ErrInvalidExpiry)
	}
	return expiry, nil
}

// CreateBatch alta manual de un lote. (producto, número de lote) es único:
// el duplicado se rechaza con un error de dominio antes del insert.
func (uc *UseCase) CreateBatch(ctx context.Context, actor dto.Actor, req dto.CreateBatchRequest) (*entity.InventoryItem, error) {
	if req.ProductID == "" || req.BatchNumber == "" {
		return nil, fmt.Errorf("producto y número de lote son obligatorios: %w", domain.ErrInvalidInput)
	}
	if req.QuantityOfPackages < 0 {
		return nil, fmt.Errorf("la cantidad no puede ser negativa: %w", domain.ErrInvalidInput)
	}
	if req.PurchasePrice.IsNegative() || req.SellingPrice.IsNegative() {
		return nil, fmt.Errorf("los precios no pueden ser negativos: %w", domain.ErrInvalidInput)
	}
	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	item := &entity.InventoryItem{
		ID:                 uuid.New().String(),
		ProductID:          req.ProductID,
		BatchNumber:        req.BatchNumber,
		ExpiryDate:         expiry,
		QuantityOfPackages: req.QuantityOfPackages,
		PurchasePrice:      req.PurchasePrice,
		SellingPrice:       req.SellingPrice,
		SupplierID:         req.SupplierID,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	err = uc.txRunner.RunInventory(ctx, func(invRepo repository.InventoryItemRepository, _ repository.SaleRepository) error {
		exists, err := invRepo.ExistsBatch(req.ProductID, req.BatchNumber)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("lote %s del producto %s: %w", req.BatchNumber, req.ProductID, domain.ErrDuplicateBatch)
		}
		return invRepo.Create(item)
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx)
	uc.audit.Record(actor.UserID, actor.Username, "inventory_batch_created", map[string]any{
		"key":   "inventory_batch_created",
		"id":    item.ID,
		"batch": item.BatchNumber,
	})
	return item, nil
}

// UpdateBatch ajuste manual de un lote existente. Cambiar el número de lote
// revalida la unicidad contra los demás lotes del producto.
func (uc *UseCase) UpdateBatch(ctx context.Context, actor dto.Actor, id string, req dto.UpdateBatchRequest) (*entity.InventoryItem, error) {
	if req.QuantityOfPackages < 0 {
		return nil, fmt.Errorf("la cantidad no puede ser negativa: %w", domain.ErrInvalidInput)
	}
	if req.PurchasePrice.IsNegative() || req.SellingPrice.IsNegative() {
		return nil, fmt.Errorf("los precios no pueden ser negativos: %w", domain.ErrInvalidInput)
	}
	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	var updated *entity.InventoryItem
	err = uc.txRunner.RunInventory(ctx, func(invRepo repository.InventoryItemRepository, _ repository.SaleRepository) error {
		item, err := invRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
		}
		if req.BatchNumber != "" && req.BatchNumber != item.BatchNumber {
			exists, err := invRepo.ExistsBatch(item.ProductID, req.BatchNumber)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("lote %s del producto %s: %w", req.BatchNumber, item.ProductID, domain.ErrDuplicateBatch)
			}
			item.BatchNumber = req.BatchNumber
		}
		item.ExpiryDate = expiry
		item.QuantityOfPackages = req.QuantityOfPackages
		item.PurchasePrice = req.PurchasePrice
		item.SellingPrice = req.SellingPrice
		item.SupplierID = req.SupplierID
		item.UpdatedAt = time.Now()

		if err := invRepo.Update(item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.afterMutation(ctx)
	uc.audit.Record(actor.UserID, actor.Username, "inventory_batch_updated", map[string]any{
		"key":   "inventory_batch_updated",
		"id":    id,
		"batch": updated.BatchNumber,
	})
	return updated, nil
}

// DeleteBatch baja de un lote. Un lote referenciado por líneas de venta no se
// borra: el historial es inmutable.
func (uc *UseCase) DeleteBatch(ctx context.Context, actor dto.Actor, id string) error {
	var batchNumber string
	err := uc.txRunner.RunInventory(ctx, func(invRepo repository.InventoryItemRepository, saleRepo repository.SaleRepository) error {
		item, err := invRepo.GetForUpdate(id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
		}
		refs, err := saleRepo.CountByInventoryItem(id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("lote %s con %d líneas de venta: %w", item.BatchNumber, refs, domain.ErrReferencedByOtherRecords)
		}
		batchNumber = item.BatchNumber
		return invRepo.Delete(id)
	})
	if err != nil {
		return err
	}

	uc.audit.Record(actor.UserID, actor.Username, "inventory_batch_deleted", map[string]any{
		"key":   "inventory_batch_deleted",
		"id":    id,
		"batch": batchNumber,
	})
	return nil
}

// List devuelve el libro completo con datos de producto y proveedor.
func (uc *UseCase) List() ([]dto.InventoryItemResponse, error) {
	rows, err := uc.invRepo.List()
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

// ListByProduct lotes de un producto, opcionalmente filtrados por número de lote.
func (uc *UseCase) ListByProduct(productID, batchNumber string) ([]dto.InventoryItemResponse, error) {
	if productID == "" {
		return nil, fmt.Errorf("producto es obligatorio: %w", domain.ErrInvalidInput)
	}
	rows, err := uc.invRepo.ListByProduct(productID, batchNumber)
	if err != nil {
		return nil, err
	}
	return toResponses(rows), nil
}

// GetBatch un lote por ID.
func (uc *UseCase) GetBatch(id string) (*entity.InventoryItem, error) {
	item, err := uc.invRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("lote %s: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

// Availability stock físico total de un producto sobre todos sus lotes.
func (uc *UseCase) Availability(productID string) (int64, error) {
	if productID == "" {
		return 0, fmt.Errorf("producto es obligatorio: %w", domain.ErrInvalidInput)
	}
	return uc.invRepo.TotalByProduct(productID)
}

// afterMutation dispara un barrido de alertas para que el estado nuevo del
// libro se refleje sin esperar el timer. El fallo no afecta la mutación.
func (uc *UseCase) afterMutation(ctx context.Context) {
	if uc.scanner == nil {
		return
	}
	if err := uc.scanner.Scan(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("barrido de alertas post-mutación falló")
	}
}

func toResponses(rows []entity.InventoryItemDetail) []dto.InventoryItemResponse {
	out := make([]dto.InventoryItemResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.InventoryItemResponse{
			ID:                   r.ID,
			ProductID:            r.ProductID,
			ProductName:          r.ProductName,
			Brand:                r.Brand,
			RequiresPrescription: r.RequiresPrescription,
			BatchNumber:          r.BatchNumber,
			ExpiryDate:           r.ExpiryDate,
			QuantityOfPackages:   r.QuantityOfPackages,
			PurchasePrice:        r.PurchasePrice,
			SellingPrice:         r.SellingPrice,
			SupplierID:           r.SupplierID,
			SupplierName:         r.SupplierName,
		})
	}
	return out
}
