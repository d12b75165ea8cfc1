// Package purchasing implementa el ciclo de vida de órdenes de compra:
// Pending -> Received | Cancelled, con historial append-only y recepción que
// convierte ítems pedidos en lotes del libro de inventario.
package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/policy"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// UseCase casos de uso de órdenes de compra.
type UseCase struct {
	txRunner     TxRunner
	poRepo       repository.PurchaseOrderRepository
	supplierRepo repository.SupplierRepository
	pol          policy.Policy
	scanner      AlertScanner
	audit        AuditRecorder
	log          *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner TxRunner,
	poRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	pol policy.Policy,
	scanner AlertScanner,
	audit AuditRecorder,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		poRepo:       poRepo,
		supplierRepo: supplierRepo,
		pol:          pol,
		scanner:      scanner,
		audit:        audit,
		log:          log,
	}
}

func validateItems(items []dto.POItemRequest) (decimal.Decimal, error) {
	if len(items) == 0 {
		return decimal.Zero, fmt.Errorf("una orden necesita al menos una línea: %w", domain.ErrInvalidInput)
	}
	total := decimal.Zero
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return decimal.Zero, fmt.Errorf("línea de orden inválida: %w", domain.ErrInvalidInput)
		}
		if it.PricePerItem.IsNegative() {
			return decimal.Zero, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
		}
		total = total.Add(it.PricePerItem.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total, nil
}

// Create alta de una orden Pending. El valor total se evalúa contra la
// política de presupuesto del actor antes de tocar la base.
func (uc *UseCase) Create(ctx context.Context, actor dto.Actor, req dto.CreatePORequest) (string, error) {
	total, err := validateItems(req.Items)
	if err != nil {
		return "", err
	}
	if err := uc.pol.Authorize(actor.Roles, policy.ActionPOCreate, policy.Resource{TotalValue: total}); err != nil {
		return "", fmt.Errorf("orden por %s: %w", total.StringFixed(2), err)
	}

	supplier, err := uc.supplierRepo.GetByID(req.SupplierID)
	if err != nil {
		return "", err
	}
	if supplier == nil {
		return "", fmt.Errorf("proveedor %s: %w", req.SupplierID, domain.ErrNotFound)
	}

	poID := uuid.New().String()
	err = uc.txRunner.RunPurchasing(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		_ repository.InventoryItemRepository,
		_ repository.ProductRepository,
		_ repository.NotificationRepository,
	) error {
		if err := poRepo.Create(&entity.PurchaseOrder{
			ID:          poID,
			SupplierID:  req.SupplierID,
			Status:      entity.POStatusPending,
			CreatedBy:   actor.UserID,
			DateCreated: time.Now(),
		}); err != nil {
			return err
		}
		for _, it := range req.Items {
			if err := poRepo.CreateItem(&entity.PurchaseOrderItem{
				ID:           uuid.New().String(),
				POID:         poID,
				ProductID:    it.ProductID,
				Quantity:     it.Quantity,
				PricePerItem: it.PricePerItem,
			}); err != nil {
				return err
			}
		}
		return poRepo.AddHistory(poID, entity.POActionCreated, actor.UserID)
	})
	if err != nil {
		return "", err
	}

	uc.audit.Record(actor.UserID, actor.Username, "po_created", map[string]any{
		"key":   "po_created",
		"id":    poID,
		"total": total.StringFixed(2),
	})
	return poID, nil
}

// Edit reemplaza proveedor y líneas de una orden todavía Pending. Cada
// edición deja su propia entrada en el historial.
func (uc *UseCase) Edit(ctx context.Context, actor dto.Actor, poID string, req dto.EditPORequest) error {
	total, err := validateItems(req.Items)
	if err != nil {
		return err
	}
	// La edición re-evalúa el presupuesto: editar no es una vía de escape al tope.
	if err := uc.pol.Authorize(actor.Roles, policy.ActionPOCreate, policy.Resource{TotalValue: total}); err != nil {
		return fmt.Errorf("orden por %s: %w", total.StringFixed(2), err)
	}

	supplier, err := uc.supplierRepo.GetByID(req.SupplierID)
	if err != nil {
		return err
	}
	if supplier == nil {
		return fmt.Errorf("proveedor %s: %w", req.SupplierID, domain.ErrNotFound)
	}

	err = uc.txRunner.RunPurchasing(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		_ repository.InventoryItemRepository,
		_ repository.ProductRepository,
		_ repository.NotificationRepository,
	) error {
		po, err := poRepo.GetForUpdate(poID)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("orden %s: %w", poID, domain.ErrNotFound)
		}
		if po.Status != entity.POStatusPending {
			return fmt.Errorf("la orden está %s, solo Pending es editable: %w", po.Status, domain.ErrInvalidState)
		}
		if err := poRepo.UpdateSupplier(poID, req.SupplierID, actor.UserID); err != nil {
			return err
		}
		if err := poRepo.DeleteItems(poID); err != nil {
			return err
		}
		for _, it := range req.Items {
			if err := poRepo.CreateItem(&entity.PurchaseOrderItem{
				ID:           uuid.New().String(),
				POID:         poID,
				ProductID:    it.ProductID,
				Quantity:     it.Quantity,
				PricePerItem: it.PricePerItem,
			}); err != nil {
				return err
			}
		}
		return poRepo.AddHistory(poID, entity.POActionEdited, actor.UserID)
	})
	if err != nil {
		return err
	}

	uc.audit.Record(actor.UserID, actor.Username, "po_edited", map[string]any{
		"key": "po_edited", "id": poID,
	})
	return nil
}

// Cancel transición Pending -> Cancelled. Terminal: no hay vuelta atrás.
func (uc *UseCase) Cancel(ctx context.Context, actor dto.Actor, poID string) error {
	err := uc.txRunner.RunPurchasing(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		_ repository.InventoryItemRepository,
		_ repository.ProductRepository,
		_ repository.NotificationRepository,
	) error {
		po, err := poRepo.GetForUpdate(poID)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("orden %s: %w", poID, domain.ErrNotFound)
		}
		if po.Status != entity.POStatusPending {
			return fmt.Errorf("la orden está %s, solo Pending puede cancelarse: %w", po.Status, domain.ErrInvalidState)
		}
		if err := poRepo.SetCancelled(poID, actor.UserID); err != nil {
			return err
		}
		return poRepo.AddHistory(poID, entity.POActionCancelled, actor.UserID)
	})
	if err != nil {
		return err
	}

	uc.audit.Record(actor.UserID, actor.Username, "po_cancelled", map[string]any{
		"key": "po_cancelled", "id": poID,
	})
	return nil
}

// Receive transición Pending -> Received: valida cada ítem recibido y crea
// su lote en el libro. Todo o nada: un lote duplicado o vencido deja la
// orden Pending sin ningún lote insertado.
func (uc *UseCase) Receive(ctx context.Context, actor dto.Actor, poID string, req dto.ReceivePORequest) error {
	if len(req.ReceivedItems) == 0 {
		return fmt.Errorf("la recepción necesita al menos un ítem: %w", domain.ErrInvalidInput)
	}

	err := uc.txRunner.RunPurchasing(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		invRepo repository.InventoryItemRepository,
		productRepo repository.ProductRepository,
		notifRepo repository.NotificationRepository,
	) error {
		po, err := poRepo.GetForUpdate(poID)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("orden %s: %w", poID, domain.ErrNotFound)
		}
		if po.Status != entity.POStatusPending {
			return fmt.Errorf("la orden está %s, solo Pending puede recibirse: %w", po.Status, domain.ErrInvalidState)
		}

		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		for _, it := range req.ReceivedItems {
			if it.ProductID == "" || it.BatchNumber == "" || it.Quantity <= 0 {
				return fmt.Errorf("ítem recibido inválido: %w", domain.ErrInvalidInput)
			}
			if it.PricePerItem.IsNegative() || it.SellingPrice.IsNegative() {
				return fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
			}
			product, err := productRepo.GetByID(it.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("producto %s: %w", it.ProductID, domain.ErrNotFound)
			}
			expiry, err := time.Parse("2006-01-02", it.ExpiryDate)
			if err != nil {
				return fmt.Errorf("fecha de vencimiento %q de %s: %w", it.ExpiryDate, product.Name, domain.ErrInvalidInput)
			}
			// Stock que llega vencido no entra al libro.
			if expiry.Before(today) {
				return fmt.Errorf("%s lote %s vencido el %s: %w", product.Name, it.BatchNumber, it.ExpiryDate, domain.ErrExpiredStock)
			}
			exists, err := invRepo.ExistsBatch(it.ProductID, it.BatchNumber)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%s ya tiene el lote %s: %w", product.Name, it.BatchNumber, domain.ErrDuplicateBatch)
			}

			if err := invRepo.Create(&entity.InventoryItem{
				ID:                 uuid.New().String(),
				ProductID:          it.ProductID,
				BatchNumber:        it.BatchNumber,
				ExpiryDate:         expiry,
				QuantityOfPackages: it.Quantity,
				PurchasePrice:      it.PricePerItem,
				SellingPrice:       it.SellingPrice,
				SupplierID:         po.SupplierID,
				CreatedAt:          now,
				UpdatedAt:          now,
			}); err != nil {
				return err
			}

			// Con stock nuevo, las alertas de stock viejas del producto
			// quedan obsoletas. Best effort: no voltea la recepción.
			if err := notifRepo.MarkReadByProduct(it.ProductID); err != nil {
				uc.log.Warn().Err(err).Str("product_id", it.ProductID).Msg("no se pudieron limpiar alertas del producto")
			}
		}

		if err := poRepo.SetReceived(poID, actor.UserID); err != nil {
			return err
		}
		return poRepo.AddHistory(poID, entity.POActionReceived, actor.UserID)
	})
	if err != nil {
		return err
	}

	// El libro cambió: refrescar alertas sin esperar el timer.
	if uc.scanner != nil {
		if err := uc.scanner.Scan(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("barrido de alertas post-recepción falló")
		}
	}
	uc.audit.Record(actor.UserID, actor.Username, "po_received", map[string]any{
		"key": "po_received", "id": poID, "items": len(req.ReceivedItems),
	})
	return nil
}

// Delete borrado físico de una orden terminal (Received o Cancelled), solo
// admin. El historial y las líneas caen con la cabecera; los lotes creados
// por la recepción quedan: ya son parte del libro.
func (uc *UseCase) Delete(ctx context.Context, actor dto.Actor, poID string) error {
	if err := uc.pol.Authorize(actor.Roles, policy.ActionPODelete, policy.Resource{}); err != nil {
		return err
	}

	err := uc.txRunner.RunPurchasing(ctx, func(
		poRepo repository.PurchaseOrderRepository,
		_ repository.InventoryItemRepository,
		_ repository.ProductRepository,
		_ repository.NotificationRepository,
	) error {
		po, err := poRepo.GetForUpdate(poID)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("orden %s: %w", poID, domain.ErrNotFound)
		}
		if po.Status == entity.POStatusPending {
			return fmt.Errorf("una orden Pending no se borra, cancélela primero: %w", domain.ErrInvalidState)
		}
		if err := poRepo.DeleteHistory(poID); err != nil {
			return err
		}
		if err := poRepo.DeleteItems(poID); err != nil {
			return err
		}
		return poRepo.Delete(poID)
	})
	if err != nil {
		return err
	}

	uc.audit.Record(actor.UserID, actor.Username, "po_deleted", map[string]any{
		"key": "po_deleted", "id": poID,
	})
	return nil
}

// List listado con filtros de estado, creador y rango temporal.
func (uc *UseCase) List(q dto.POListQuery) ([]entity.PurchaseOrderSummary, error) {
	filter := repository.POFilter{Status: q.Status, CreatedBy: q.CreatedBy}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch q.TimeRange {
	case "", "all":
	case "today":
		filter.DateFrom = &startOfDay
	case "last_7_days":
		from := startOfDay.AddDate(0, 0, -7)
		filter.DateFrom = &from
	case "last_30_days":
		from := startOfDay.AddDate(0, 0, -30)
		filter.DateFrom = &from
	case "custom":
		if q.DateFrom != "" {
			from, err := time.Parse("2006-01-02", q.DateFrom)
			if err != nil {
				return nil, fmt.Errorf("date_from %q: %w", q.DateFrom, domain.ErrInvalidInput)
			}
			filter.DateFrom = &from
		}
		if q.DateTo != "" {
			to, err := time.Parse("2006-01-02", q.DateTo)
			if err != nil {
				return nil, fmt.Errorf("date_to %q: %w", q.DateTo, domain.ErrInvalidInput)
			}
			// inclusivo hasta el final del día
			toEnd := to.AddDate(0, 0, 1)
			filter.DateTo = &toEnd
		}
	default:
		return nil, fmt.Errorf("time_range %q: %w", q.TimeRange, domain.ErrInvalidInput)
	}

	return uc.poRepo.List(filter)
}

// GetDetail cabecera + líneas + historial de una orden.
func (uc *UseCase) GetDetail(poID string) (*entity.PurchaseOrderDetail, error) {
	detail, err := uc.poRepo.GetDetail(poID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("orden %s: %w", poID, domain.ErrNotFound)
	}
	return detail, nil
}
