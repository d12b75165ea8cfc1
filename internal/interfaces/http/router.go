package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-pos/internal/application/auth"
	"github.com/jhoicas/farmacia-pos/internal/application/inventory"
	"github.com/jhoicas/farmacia-pos/internal/application/notifications"
	"github.com/jhoicas/farmacia-pos/internal/application/purchasing"
	"github.com/jhoicas/farmacia-pos/internal/application/sales"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.UseCase
	InventoryUC    *inventory.UseCase
	ReserveUC      *sales.ReserveUseCase
	SettleUC       *sales.SettleUseCase
	SalesQueryUC   *sales.QueryUseCase
	PurchasingUC   *purchasing.UseCase
	NotificationUC *notifications.UseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Inventario
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv.Get("/", inventoryHandler.List)
	inv.Get("/availability/:id", inventoryHandler.Availability)
	inv.Post("/", RequireRole(entity.RoleAdmin, entity.RolePharmacist), inventoryHandler.CreateBatch)
	inv.Put("/:id", RequireRole(entity.RoleAdmin, entity.RolePharmacist), inventoryHandler.UpdateBatch)
	inv.Delete("/:id", RequireRole(entity.RoleAdmin), inventoryHandler.DeleteBatch)

	// Ventas
	salesGroup := protected.Group("/sales")
	salesHandler := NewSalesHandler(deps.ReserveUC, deps.SettleUC, deps.SalesQueryUC)
	salesGroup.Post("/handoff", RequireRole(entity.RoleAdmin, entity.RolePharmacist), salesHandler.Handoff)
	salesGroup.Get("/pending", salesHandler.PendingQueue)
	salesGroup.Post("/", RequireRole(entity.RoleAdmin, entity.RoleCashier, entity.RolePharmacist), salesHandler.Settle)
	salesGroup.Get("/", salesHandler.History)
	salesGroup.Get("/:id/receipt", salesHandler.Receipt)
	salesGroup.Get("/:id/receipt.pdf", salesHandler.ReceiptPDF)

	// Órdenes de compra
	po := protected.Group("/purchase-orders", RequireRole(entity.RoleAdmin, entity.RolePharmacist))
	poHandler := NewPurchaseOrderHandler(deps.PurchasingUC)
	po.Post("/", poHandler.Create)
	po.Get("/", poHandler.List)
	po.Get("/:id", poHandler.GetDetail)
	po.Put("/:id", poHandler.Edit)
	po.Post("/:id/cancel", poHandler.Cancel)
	po.Post("/:id/receive", poHandler.Receive)
	po.Delete("/:id", poHandler.Delete)

	// Notificaciones
	notif := protected.Group("/notifications")
	notifHandler := NewNotificationHandler(deps.NotificationUC)
	notif.Get("/", notifHandler.List)
	notif.Get("/unread-count", notifHandler.UnreadCount)
	notif.Post("/read-all", notifHandler.MarkAllRead)
	notif.Post("/:id/read", notifHandler.MarkRead)
}
