package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/farmacia-pos/internal/application/alerts"
	"github.com/jhoicas/farmacia-pos/internal/application/audit"
	"github.com/jhoicas/farmacia-pos/internal/application/auth"
	"github.com/jhoicas/farmacia-pos/internal/application/inventory"
	"github.com/jhoicas/farmacia-pos/internal/application/notifications"
	"github.com/jhoicas/farmacia-pos/internal/application/purchasing"
	"github.com/jhoicas/farmacia-pos/internal/application/sales"
	"github.com/jhoicas/farmacia-pos/internal/domain/policy"
	infrapdf "github.com/jhoicas/farmacia-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/farmacia-pos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/farmacia-pos/internal/interfaces/http"
	"github.com/jhoicas/farmacia-pos/pkg/config"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repos sobre el pool (lecturas); las escrituras pasan por el TxRunner.
	invRepo := postgres.NewInventoryItemRepository(pool)
	pendingRepo := postgres.NewPendingSaleRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	poRepo := postgres.NewPurchaseOrderRepository(pool)
	notifRepo := postgres.NewNotificationRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	activityRepo := postgres.NewActivityLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	auditRecorder := audit.NewRecorder(activityRepo, log)

	scanner := alerts.NewScanner(txRunner, alerts.Thresholds{
		LowStock:         cfg.Policy.LowStockThreshold,
		ExpiryWindowDays: cfg.Policy.ExpiryWindowDays,
	}, log)

	pol := policy.Policy{POBudgetLimit: cfg.Policy.POBudgetLimit}

	inventoryUC := inventory.NewUseCase(txRunner, invRepo, scanner, auditRecorder, log)
	reserveUC := sales.NewReserveUseCase(txRunner, auditRecorder)
	settleUC := sales.NewSettleUseCase(txRunner, cfg.Policy.TaxRate, auditRecorder)
	salesQueryUC := sales.NewQueryUseCase(saleRepo, pendingRepo, infrapdf.NewReceiptGenerator(), cfg.App.Name)
	purchasingUC := purchasing.NewUseCase(txRunner, poRepo, supplierRepo, pol, scanner, auditRecorder, log)
	notificationUC := notifications.NewUseCase(notifRepo)
	authUC := auth.NewUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	// Barrido periódico de alertas, además del disparo post-mutación.
	scanCtx, stopScans := context.WithCancel(ctx)
	defer stopScans()
	go func() {
		ticker := time.NewTicker(cfg.Policy.AlertScanInterval)
		defer ticker.Stop()
		if err := scanner.Scan(scanCtx); err != nil {
			log.Warn().Err(err).Msg("barrido inicial de alertas falló")
		}
		for {
			select {
			case <-scanCtx.Done():
				return
			case <-ticker.C:
				if err := scanner.Scan(scanCtx); err != nil {
					log.Warn().Err(err).Msg("barrido de alertas falló")
				}
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Farmacia POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		InventoryUC:    inventoryUC,
		ReserveUC:      reserveUC,
		SettleUC:       settleUC,
		SalesQueryUC:   salesQueryUC,
		PurchasingUC:   purchasingUC,
		NotificationUC: notificationUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	stopScans()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
