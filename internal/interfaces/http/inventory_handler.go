package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/inventory"
)

// InventoryHandler maneja las peticiones del libro de inventario (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// List godoc
// @Summary      Listar el libro de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        batch       query  string  false  "Filtrar por número de lote (requiere product_id)"
// @Success      200  {array}   dto.InventoryItemResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID != "" {
		items, err := h.uc.ListByProduct(productID, c.Query("batch"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(items)
	}
	items, err := h.uc.List()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// Availability godoc
// @Summary      Stock físico total de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de producto"
// @Success      200  {object}  map[string]int64
// @Router       /api/inventory/availability/{id} [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	total, err := h.uc.Availability(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": c.Params("id"), "total_stock": total})
}

// CreateBatch godoc
// @Summary      Alta manual de un lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "datos del lote"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.uc.CreateBatch(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": item.ID})
}

// UpdateBatch godoc
// @Summary      Ajuste manual de un lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                  true  "ID del lote"
// @Param        body  body  dto.UpdateBatchRequest  true  "campos a actualizar"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) UpdateBatch(c *fiber.Ctx) error {
	var in dto.UpdateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if _, err := h.uc.UpdateBatch(c.Context(), GetActor(c), c.Params("id"), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "lote actualizado"})
}

// DeleteBatch godoc
// @Summary      Baja de un lote
// @Tags         inventory
// @Security     Bearer
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) DeleteBatch(c *fiber.Ctx) error {
	if err := h.uc.DeleteBatch(c.Context(), GetActor(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "lote eliminado"})
}
