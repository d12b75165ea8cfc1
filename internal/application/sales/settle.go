package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// SettleUseCase liquidación en caja: convierte un carrito (directo o
// reservado) en una venta permanente, decrementa el libro y cierra la
// reserva, todo en una sola transacción.
type SettleUseCase struct {
	txRunner TxRunner
	taxRate  decimal.Decimal
	audit    AuditRecorder
}

// NewSettleUseCase construye el caso de uso. taxRate es la tasa de impuesto
// configurada (0.15 = 15%); nunca viene del request.
func NewSettleUseCase(txRunner TxRunner, taxRate decimal.Decimal, audit AuditRecorder) *SettleUseCase {
	return &SettleUseCase{txRunner: txRunner, taxRate: taxRate, audit: audit}
}

// Settle procesa la venta. Dentro de una transacción: resuelve el carrito,
// relee el precio de cada lote del libro (el precio del cliente jamás se
// usa), bloquea y decrementa cada lote, inserta venta y líneas, y marca la
// reserva como completed si aplica. Cualquier fallo revierte todo: nunca
// queda un decremento parcial ni una venta huérfana.
func (uc *SettleUseCase) Settle(ctx context.Context, actor dto.Actor, in dto.SettleRequest) (*dto.SettleResponse, error) {
	if in.PendingSaleID == "" && len(in.Cart) == 0 {
		return nil, fmt.Errorf("carrito vacío: %w", domain.ErrInvalidInput)
	}

	saleID := uuid.New().String()
	now := time.Now()
	var totalOut, taxOut decimal.Decimal

	err := uc.txRunner.RunSales(ctx, func(
		invRepo repository.InventoryItemRepository,
		pendingRepo repository.PendingSaleRepository,
		saleRepo repository.SaleRepository,
	) error {
		// 1) Resolver el carrito: reserva (bajo lock, consumible una sola
		// vez gracias al chequeo de status) o carrito directo del caller.
		var cart []entity.CartItem
		if in.PendingSaleID != "" {
			ps, err := pendingRepo.GetForUpdate(in.PendingSaleID)
			if err != nil {
				return err
			}
			if ps == nil || ps.Status != entity.PendingSaleStatusPending {
				return fmt.Errorf("venta pendiente %s: %w", in.PendingSaleID, domain.ErrNotFound)
			}
			cart = ps.Cart
		} else {
			cart = make([]entity.CartItem, 0, len(in.Cart))
			for _, line := range in.Cart {
				cart = append(cart, entity.CartItem{
					InventoryItemID: line.InventoryItemID,
					Quantity:        line.Quantity,
					PrescriptionRef: line.PrescriptionRef,
				})
			}
		}
		if len(cart) == 0 {
			return fmt.Errorf("carrito vacío: %w", domain.ErrInvalidInput)
		}

		// 2) Verificación de precios y stock bajo lock de fila. El precio se
		// relee SIEMPRE del lote: defiende contra precios viejos y
		// manipulación del cliente.
		subtotal := decimal.Zero
		prices := make([]decimal.Decimal, len(cart))
		for i, item := range cart {
			if item.Quantity <= 0 {
				return fmt.Errorf("cantidad inválida para el lote %s: %w", item.InventoryItemID, domain.ErrInvalidInput)
			}
			batch, err := invRepo.GetForUpdate(item.InventoryItemID)
			if err != nil {
				return err
			}
			if batch == nil {
				return fmt.Errorf("lote %s: %w", item.InventoryItemID, domain.ErrNotFound)
			}
			if batch.QuantityOfPackages < item.Quantity {
				return fmt.Errorf("lote %s: %w", batch.BatchNumber, domain.ErrInsufficientStock)
			}
			prices[i] = batch.SellingPrice
			subtotal = subtotal.Add(batch.SellingPrice.Mul(decimal.NewFromInt(item.Quantity)))
		}

		tax := subtotal.Mul(uc.taxRate).Round(2)
		total := subtotal.Add(tax).Round(2)

		// 3) Venta + líneas + decrementos, misma transacción.
		if err := saleRepo.Create(&entity.Sale{
			ID:          saleID,
			UserID:      actor.UserID,
			TotalAmount: total,
			TaxAmount:   tax,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		for i, item := range cart {
			if err := invRepo.Decrement(item.InventoryItemID, item.Quantity); err != nil {
				return err
			}
			if err := saleRepo.CreateItem(&entity.SaleItem{
				ID:              uuid.New().String(),
				SaleID:          saleID,
				InventoryItemID: item.InventoryItemID,
				Quantity:        item.Quantity,
				PriceAtSale:     prices[i],
				PrescriptionRef: item.PrescriptionRef,
			}); err != nil {
				return err
			}
		}

		// 4) La reserva queda consumida (nunca se borra).
		if in.PendingSaleID != "" {
			if err := pendingRepo.MarkCompleted(in.PendingSaleID); err != nil {
				return err
			}
		}

		totalOut, taxOut = total, tax
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Record(actor.UserID, actor.Username, "sale_completed", map[string]any{
		"key":   "sale_completed",
		"id":    saleID,
		"total": totalOut.StringFixed(2),
	})
	return &dto.SettleResponse{SaleID: saleID, TotalAmount: totalOut, TaxAmount: taxOut}, nil
}
