package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/purchasing"
)

// PurchaseOrderHandler maneja el ciclo de vida de órdenes de compra (protegido).
type PurchaseOrderHandler struct {
	uc *purchasing.UseCase
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(uc *purchasing.UseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePORequest  true  "proveedor y líneas"
// @Success      201   {object}  map[string]string
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePORequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id, err := h.uc.Create(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "Pending | Received | Cancelled"
// @Param        created_by  query  string  false  "ID de usuario creador"
// @Param        time_range  query  string  false  "today | last_7_days | last_30_days | custom"
// @Success      200  {array}  entity.PurchaseOrderSummary
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	var q dto.POListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "filtros inválidos"})
	}
	orders, err := h.uc.List(q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GetDetail godoc
// @Summary      Detalle de una orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  entity.PurchaseOrderDetail
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetDetail(c *fiber.Ctx) error {
	detail, err := h.uc.GetDetail(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// Edit godoc
// @Summary      Editar una orden Pending
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Param        id    path  string             true  "ID de la orden"
// @Param        body  body  dto.EditPORequest  true  "proveedor y líneas nuevas"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [put]
func (h *PurchaseOrderHandler) Edit(c *fiber.Ctx) error {
	var in dto.EditPORequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Edit(c.Context(), GetActor(c), c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "orden actualizada"})
}

// Cancel godoc
// @Summary      Cancelar una orden Pending
// @Tags         purchase-orders
// @Security     Bearer
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *PurchaseOrderHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "orden cancelada"})
}

// Receive godoc
// @Summary      Recibir una orden Pending (crea lotes en el libro)
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                true  "ID de la orden"
// @Param        body  body  dto.ReceivePORequest  true  "ítems recibidos"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceivePORequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Receive(c.Context(), GetActor(c), c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "orden recibida"})
}

// Delete godoc
// @Summary      Borrar una orden terminal (solo admin)
// @Tags         purchase-orders
// @Security     Bearer
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "orden eliminada"})
}
