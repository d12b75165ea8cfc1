package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/notifications"
)

// NotificationHandler maneja las alertas de inventario (protegido).
type NotificationHandler struct {
	uc *notifications.UseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(uc *notifications.UseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// List godoc
// @Summary      Listar notificaciones
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "unread | read"
// @Param        limit   query  int     false  "máximo de filas (default 50)"
// @Success      200  {array}  entity.Notification
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.Query("status"), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// UnreadCount godoc
// @Summary      Total de notificaciones sin leer
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int64
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	n, err := h.uc.UnreadCount()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"count": n})
}

// MarkRead godoc
// @Summary      Marcar una notificación como leída
// @Tags         notifications
// @Security     Bearer
// @Param        id  path  string  true  "ID de la notificación"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.uc.MarkRead(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "notificación leída"})
}

// MarkAllRead godoc
// @Summary      Marcar todas las notificaciones como leídas
// @Tags         notifications
// @Security     Bearer
// @Success      200  {object}  map[string]string
// @Router       /api/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.uc.MarkAllRead(); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "todas leídas"})
}
