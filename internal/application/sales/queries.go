package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
)

// QueryUseCase lecturas de ventas: historial, recibo y cola de caja.
// Corren fuera de transacción (solo lectura sobre el pool).
type QueryUseCase struct {
	saleRepo     repository.SaleRepository
	pendingRepo  repository.PendingSaleRepository
	pdfGenerator ReceiptPDFGenerator
	pharmacyName string
}

// NewQueryUseCase construye el caso de uso de lecturas.
func NewQueryUseCase(
	saleRepo repository.SaleRepository,
	pendingRepo repository.PendingSaleRepository,
	pdfGenerator ReceiptPDFGenerator,
	pharmacyName string,
) *QueryUseCase {
	return &QueryUseCase{
		saleRepo:     saleRepo,
		pendingRepo:  pendingRepo,
		pdfGenerator: pdfGenerator,
		pharmacyName: pharmacyName,
	}
}

// History historial de ventas completadas, más reciente primero.
func (uc *QueryUseCase) History(ctx context.Context) ([]entity.SaleSummary, error) {
	return uc.saleRepo.ListHistory()
}

// PendingQueue cola de ventas pendientes que consulta la caja, FIFO.
func (uc *QueryUseCase) PendingQueue(ctx context.Context) ([]dto.PendingSaleResponse, error) {
	rows, err := uc.pendingRepo.ListPending()
	if err != nil {
		return nil, err
	}
	out := make([]dto.PendingSaleResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PendingSaleResponse{
			ID:             r.ID,
			PharmacistName: r.PharmacistName,
			Cart:           r.Cart,
			CreatedAt:      r.CreatedAt,
		})
	}
	return out, nil
}

// Receipt detalle completo de una venta para el recibo.
func (uc *QueryUseCase) Receipt(ctx context.Context, saleID string) (*entity.Receipt, error) {
	receipt, err := uc.saleRepo.GetReceipt(saleID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, fmt.Errorf("venta %s: %w", saleID, domain.ErrNotFound)
	}
	return receipt, nil
}

// ReceiptPDF genera el recibo en PDF (ticket de venta).
func (uc *QueryUseCase) ReceiptPDF(ctx context.Context, saleID string) ([]byte, error) {
	receipt, err := uc.Receipt(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return uc.pdfGenerator.GenerateReceiptPDF(receipt, uc.pharmacyName)
}
