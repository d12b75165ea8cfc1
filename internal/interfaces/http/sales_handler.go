package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/sales"
)

// SalesHandler maneja el flujo de venta: entrega a caja, liquidación y
// lecturas (protegido).
type SalesHandler struct {
	reserveUC *sales.ReserveUseCase
	settleUC  *sales.SettleUseCase
	queryUC   *sales.QueryUseCase
}

// NewSalesHandler construye el handler.
func NewSalesHandler(reserveUC *sales.ReserveUseCase, settleUC *sales.SettleUseCase, queryUC *sales.QueryUseCase) *SalesHandler {
	return &SalesHandler{reserveUC: reserveUC, settleUC: settleUC, queryUC: queryUC}
}

// Handoff godoc
// @Summary      Entregar un carrito a la caja (reserva)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.HandoffRequest  true  "líneas del carrito"
// @Success      201   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/handoff [post]
func (h *SalesHandler) Handoff(c *fiber.Ctx) error {
	var in dto.HandoffRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id, err := h.reserveUC.Reserve(c.Context(), GetActor(c), in.Cart)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"pending_sale_id": id})
}

// Settle godoc
// @Summary      Liquidar una venta (reserva o carrito directo)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SettleRequest  true  "pending_sale_id o cart"
// @Success      201   {object}  dto.SettleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) Settle(c *fiber.Ctx) error {
	var in dto.SettleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.settleUC.Settle(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// PendingQueue godoc
// @Summary      Cola de ventas pendientes (caja)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PendingSaleResponse
// @Router       /api/sales/pending [get]
func (h *SalesHandler) PendingQueue(c *fiber.Ctx) error {
	queue, err := h.queryUC.PendingQueue(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(queue)
}

// History godoc
// @Summary      Historial de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  entity.SaleSummary
// @Router       /api/sales [get]
func (h *SalesHandler) History(c *fiber.Ctx) error {
	history, err := h.queryUC.History(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

// Receipt godoc
// @Summary      Recibo de una venta (JSON)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {object}  entity.Receipt
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *fiber.Ctx) error {
	receipt, err := h.queryUC.Receipt(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(receipt)
}

// ReceiptPDF godoc
// @Summary      Recibo de una venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt.pdf [get]
func (h *SalesHandler) ReceiptPDF(c *fiber.Ctx) error {
	raw, err := h.queryUC.ReceiptPDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="recibo-`+c.Params("id")+`.pdf"`)
	return c.Send(raw)
}
