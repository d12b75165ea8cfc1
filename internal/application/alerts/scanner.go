// Package alerts implementa el chequeo de salud del inventario: un barrido
// idempotente sobre el libro que genera notificaciones deduplicadas por
// lotes vencidos, por vencer, sin stock y con stock bajo.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// Thresholds constantes de política del barrido.
type Thresholds struct {
	LowStock         int64 // 0 < cantidad <= LowStock genera low_stock
	ExpiryWindowDays int   // ventana de expiring_soon
}

// Scanner barrido de alertas. Sin estado entre ejecuciones: puede invocarse
// desde un timer, tras una mutación del inventario o por un scheduler
// externo; no asume nada sobre la cadencia del caller.
type Scanner struct {
	txRunner   TxRunner
	thresholds Thresholds
	log        *logger.Logger
}

// NewScanner construye el escáner.
func NewScanner(txRunner TxRunner, thresholds Thresholds, log *logger.Logger) *Scanner {
	return &Scanner{txRunner: txRunner, thresholds: thresholds, log: log}
}

// alertMessage se persiste como JSON para que el front lo traduzca.
type alertMessage struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Batch string `json:"batch"`
	Date  string `json:"date,omitempty"`
	Count int64  `json:"count,omitempty"`
}

// Scan corre las cuatro reglas contra el libro actual en una sola
// transacción. Idempotente: el chequeo de no-leída por (producto, tipo) se
// reevalúa justo antes de cada insert, dentro de la misma transacción.
func (s *Scanner) Scan(ctx context.Context) error {
	var created, matched int

	err := s.txRunner.RunAlerts(ctx, func(
		invRepo repository.InventoryItemRepository,
		notifRepo repository.NotificationRepository,
	) error {
		// Truncado a medianoche: un lote que vence HOY todavía no está
		// vencido (vence al final del día), cuenta como por vencer.
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// 1) Lotes vencidos con stock
		expired, err := invRepo.ListExpired(today)
		if err != nil {
			return fmt.Errorf("listar lotes vencidos: %w", err)
		}
		for _, b := range expired {
			ok, err := createIfNoUnread(notifRepo, b.ProductID, entity.NotificationTypeExpired,
				alertMessage{Key: "notifications.expired", Name: b.ProductName, Batch: b.BatchNumber},
				batchLink(entity.NotificationTypeExpired, b.BatchNumber))
			if err != nil {
				return err
			}
			matched++
			if ok {
				created++
			}
		}

		// 2) Lotes por vencer dentro de la ventana
		soon, err := invRepo.ListExpiringSoon(today, s.thresholds.ExpiryWindowDays)
		if err != nil {
			return fmt.Errorf("listar lotes por vencer: %w", err)
		}
		for _, b := range soon {
			ok, err := createIfNoUnread(notifRepo, b.ProductID, entity.NotificationTypeExpiringSoon,
				alertMessage{
					Key:   "notifications.expiringSoon",
					Name:  b.ProductName,
					Batch: b.BatchNumber,
					Date:  b.ExpiryDate.Format("2006-01-02"),
				},
				batchLink(entity.NotificationTypeExpiringSoon, b.BatchNumber))
			if err != nil {
				return err
			}
			matched++
			if ok {
				created++
			}
		}

		// 3) Productos con stock agregado en cero
		outOfStock, err := invRepo.ListOutOfStockProducts()
		if err != nil {
			return fmt.Errorf("listar productos sin stock: %w", err)
		}
		for _, p := range outOfStock {
			ok, err := createIfNoUnread(notifRepo, p.ProductID, entity.NotificationTypeOutOfStock,
				alertMessage{Key: "notifications.outOfStock", Name: p.ProductName, Batch: "N/A"},
				productLink(entity.NotificationTypeOutOfStock, p.ProductName))
			if err != nil {
				return err
			}
			matched++
			if ok {
				created++
			}
		}

		// 4) Lotes con stock bajo
		low, err := invRepo.ListLowStock(s.thresholds.LowStock)
		if err != nil {
			return fmt.Errorf("listar lotes con stock bajo: %w", err)
		}
		for _, b := range low {
			ok, err := createIfNoUnread(notifRepo, b.ProductID, entity.NotificationTypeLowStock,
				alertMessage{
					Key:   "notifications.lowStock",
					Name:  b.ProductName,
					Batch: b.BatchNumber,
					Count: b.QuantityOfPackages,
				},
				batchLink(entity.NotificationTypeLowStock, b.BatchNumber))
			if err != nil {
				return err
			}
			matched++
			if ok {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Int("matched", matched).Int("created", created).Msg("chequeo de salud de inventario completado")
	return nil
}

// createIfNoUnread inserta la notificación solo si no existe una no leída
// para el mismo (producto, tipo). Devuelve true si insertó.
func createIfNoUnread(notifRepo repository.NotificationRepository, productID, notifType string, msg alertMessage, link string) (bool, error) {
	exists, err := notifRepo.ExistsUnread(productID, notifType)
	if err != nil {
		return false, fmt.Errorf("chequear alerta existente: %w", err)
	}
	if exists {
		return false, nil
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return false, fmt.Errorf("serializar mensaje de alerta: %w", err)
	}
	n := &entity.Notification{
		ID:        uuid.New().String(),
		ProductID: productID,
		Type:      notifType,
		Message:   string(raw),
		Link:      link,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	if err := notifRepo.Create(n); err != nil {
		return false, fmt.Errorf("insertar alerta: %w", err)
	}
	return true, nil
}

// batchLink enlace con filtro de estado y búsqueda por número de lote.
func batchLink(status, batchNumber string) string {
	return "/inventory?status=" + status + "&search=" + url.QueryEscape(batchNumber)
}

func productLink(status, productName string) string {
	return "/inventory?status=" + status + "&search=" + url.QueryEscape(productName)
}
