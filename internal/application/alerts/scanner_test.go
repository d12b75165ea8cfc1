package alerts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeBatch struct {
	id, productID, productName, batchNumber string
	expiry                                  time.Time
	qty                                     int64
}

type fakeProduct struct {
	id, name string
}

// fakeInvRepo implementa solo las consultas del escáner; el resto de la
// interfaz embebida entra en pánico si se usa. Las comparaciones de fecha
// replican las del repo real (crudas contra el parámetro recibido): el
// truncado a medianoche es responsabilidad del escáner.
type fakeInvRepo struct {
	repository.InventoryItemRepository
	batches []fakeBatch
	// productos sin ningún lote, como los ve el LEFT JOIN del repo real
	unstocked []fakeProduct
}

func (f *fakeInvRepo) ListExpired(today time.Time) ([]entity.BatchAlert, error) {
	var out []entity.BatchAlert
	for _, b := range f.batches {
		if b.qty > 0 && b.expiry.Before(today) {
			out = append(out, toAlert(b))
		}
	}
	return out, nil
}

func (f *fakeInvRepo) ListExpiringSoon(today time.Time, windowDays int) ([]entity.BatchAlert, error) {
	end := today.AddDate(0, 0, windowDays)
	var out []entity.BatchAlert
	for _, b := range f.batches {
		if b.qty > 0 && !b.expiry.Before(today) && b.expiry.Before(end) {
			out = append(out, toAlert(b))
		}
	}
	return out, nil
}

func (f *fakeInvRepo) ListLowStock(threshold int64) ([]entity.BatchAlert, error) {
	var out []entity.BatchAlert
	for _, b := range f.batches {
		if b.qty > 0 && b.qty <= threshold {
			out = append(out, toAlert(b))
		}
	}
	return out, nil
}

func (f *fakeInvRepo) ListOutOfStockProducts() ([]entity.ProductStockTotal, error) {
	totals := map[string]*entity.ProductStockTotal{}
	for _, p := range f.unstocked {
		totals[p.id] = &entity.ProductStockTotal{ProductID: p.id, ProductName: p.name}
	}
	for _, b := range f.batches {
		t, ok := totals[b.productID]
		if !ok {
			t = &entity.ProductStockTotal{ProductID: b.productID, ProductName: b.productName}
			totals[b.productID] = t
		}
		t.TotalStock += b.qty
	}
	var out []entity.ProductStockTotal
	for _, t := range totals {
		if t.TotalStock == 0 {
			out = append(out, *t)
		}
	}
	return out, nil
}

func toAlert(b fakeBatch) entity.BatchAlert {
	return entity.BatchAlert{
		InventoryItemID:    b.id,
		ProductID:          b.productID,
		ProductName:        b.productName,
		BatchNumber:        b.batchNumber,
		ExpiryDate:         b.expiry,
		QuantityOfPackages: b.qty,
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type fakeNotifRepo struct {
	repository.NotificationRepository
	created []entity.Notification
}

func (f *fakeNotifRepo) ExistsUnread(productID, notifType string) (bool, error) {
	for _, n := range f.created {
		if n.ProductID == productID && n.Type == notifType && !n.IsRead {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifRepo) Create(n *entity.Notification) error {
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotifRepo) markAllRead() {
	for i := range f.created {
		f.created[i].IsRead = true
	}
}

func (f *fakeNotifRepo) byType(notifType string) []entity.Notification {
	var out []entity.Notification
	for _, n := range f.created {
		if n.Type == notifType {
			out = append(out, n)
		}
	}
	return out
}

type fakeAlertsTx struct {
	inv   *fakeInvRepo
	notif *fakeNotifRepo
}

func (f *fakeAlertsTx) RunAlerts(ctx context.Context, fn func(
	invRepo repository.InventoryItemRepository,
	notifRepo repository.NotificationRepository,
) error) error {
	return fn(f.inv, f.notif)
}

func newScanner(inv *fakeInvRepo, notif *fakeNotifRepo) *Scanner {
	return NewScanner(
		&fakeAlertsTx{inv: inv, notif: notif},
		Thresholds{LowStock: 10, ExpiryWindowDays: 30},
		logger.New(logger.Config{Env: "test", Level: "error"}),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Un lote vencido con stock genera una alerta expired con el mensaje JSON.
func TestScan_LoteVencidoGeneraAlerta(t *testing.T) {
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Amoxicilina 500mg", batchNumber: "L-001",
			expiry: time.Now().AddDate(0, 0, -1), qty: 8},
	}}
	notif := &fakeNotifRepo{}

	require.NoError(t, newScanner(inv, notif).Scan(context.Background()))

	expired := notif.byType(entity.NotificationTypeExpired)
	require.Len(t, expired, 1)
	assert.Equal(t, "p1", expired[0].ProductID)
	assert.Contains(t, expired[0].Link, "status=expired")

	var msg map[string]any
	require.NoError(t, json.Unmarshal([]byte(expired[0].Message), &msg))
	assert.Equal(t, "notifications.expired", msg["key"])
	assert.Equal(t, "Amoxicilina 500mg", msg["name"])
	assert.Equal(t, "L-001", msg["batch"])
}

// Un lote que vence HOY todavía no está vencido: vence al final del día,
// igual que en el alta y la recepción. Debe salir como por vencer.
func TestScan_LoteQueVenceHoy_EsPorVencerNoVencido(t *testing.T) {
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Metformina 850mg", batchNumber: "L-HOY",
			expiry: truncateDay(time.Now()), qty: 20},
	}}
	notif := &fakeNotifRepo{}

	require.NoError(t, newScanner(inv, notif).Scan(context.Background()))

	assert.Empty(t, notif.byType(entity.NotificationTypeExpired),
		"un lote que vence hoy no debe marcarse vencido")
	assert.Len(t, notif.byType(entity.NotificationTypeExpiringSoon), 1)
}

// Un lote que venció ayer sí está vencido, aunque el barrido corra con hora
// del día avanzada.
func TestScan_LoteVencidoAyer_EsVencido(t *testing.T) {
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Metformina 850mg", batchNumber: "L-AYER",
			expiry: truncateDay(time.Now()).AddDate(0, 0, -1), qty: 20},
	}}
	notif := &fakeNotifRepo{}

	require.NoError(t, newScanner(inv, notif).Scan(context.Background()))
	assert.Len(t, notif.byType(entity.NotificationTypeExpired), 1)
	assert.Empty(t, notif.byType(entity.NotificationTypeExpiringSoon))
}

// Un lote que vence dentro de la ventana de 30 días genera expiring_soon.
func TestScan_LotePorVencerGeneraAlerta(t *testing.T) {
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Ibuprofeno", batchNumber: "L-002",
			expiry: time.Now().AddDate(0, 0, 15), qty: 50},
	}}
	notif := &fakeNotifRepo{}

	require.NoError(t, newScanner(inv, notif).Scan(context.Background()))
	assert.Len(t, notif.byType(entity.NotificationTypeExpiringSoon), 1)
	assert.Empty(t, notif.byType(entity.NotificationTypeExpired))
}

// El borde de la ventana es exclusivo: un lote que vence justo a los 30 días
// queda fuera; a los 29 entra.
func TestScan_BordeDeVentanaExclusivo(t *testing.T) {
	today := truncateDay(time.Now())
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Atorvastatina", batchNumber: "L-30",
			expiry: today.AddDate(0, 0, 30), qty: 5},
		{id: "i2", productID: "p2", productName: "Losartán", batchNumber: "L-29",
			expiry: today.AddDate(0, 0, 29), qty: 5},
	}}
	notif := &fakeNotifRepo{}

	require.NoError(t, newScanner(inv, notif).Scan(context.Background()))

	soon := notif.byType(entity.NotificationTypeExpiringSoon)
	require.Len(t, soon, 1)
	assert.Equal(t, "p2", soon[0].ProductID)
}

// Producto cuyo stock agregado es cero genera out_of_stock (una sola vez por
// producto aunque tenga varios lotes vacíos).
func TestScan_ProductoSinStockGeneraAlerta(t *testing.T) {
	future := time.Now().AddDate(1, 0, 0)
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Paracetamol", batchNumber: "L-01", expiry: future, qty: 0},
		{id: "i2", productID: "p1", productName: "Paracetamol", batchNumber: "L-02", expiry: future, qty: 0},
	}}
	notif := &fakeNotifRepo{}

	require.NoError(t, newScanner(inv, notif).Scan(context.Background()))
	assert.Len(t, notif.byType(entity.NotificationTypeOutOfStock), 1)
}

// Un producto sin ningún lote (nunca ingresado, o con sus lotes borrados)
// también genera out_of_stock.
func TestScan_ProductoSinLotesGeneraAlertaSinStock(t *testing.T) {
	inv := &fakeInvRepo{
		unstocked: []fakeProduct{{id: "p9", name: "Insulina NPH"}},
	}
	notif := &fakeNotifRepo{}

	require.NoError(t, newScanner(inv, notif).Scan(context.Background()))

	out := notif.byType(entity.NotificationTypeOutOfStock)
	require.Len(t, out, 1)
	assert.Equal(t, "p9", out[0].ProductID)
}

// Lote con 0 < cantidad <= 10 genera low_stock con el conteo en el mensaje.
func TestScan_StockBajoGeneraAlerta(t *testing.T) {
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Loratadina", batchNumber: "L-9",
			expiry: time.Now().AddDate(1, 0, 0), qty: 3},
	}}
	notif := &fakeNotifRepo{}

	require.NoError(t, newScanner(inv, notif).Scan(context.Background()))

	low := notif.byType(entity.NotificationTypeLowStock)
	require.Len(t, low, 1)

	var msg map[string]any
	require.NoError(t, json.Unmarshal([]byte(low[0].Message), &msg))
	assert.EqualValues(t, 3, msg["count"])
}

// La compuerta de deduplicación: un segundo barrido no inserta nada mientras
// exista la alerta no leída; tras marcarla leída puede volver a alertar.
func TestScan_BarridoRepetidoNoDuplicaAlertas(t *testing.T) {
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Omeprazol", batchNumber: "L-7",
			expiry: time.Now().AddDate(0, 0, -2), qty: 5},
	}}
	notif := &fakeNotifRepo{}
	sc := newScanner(inv, notif)

	require.NoError(t, sc.Scan(context.Background()))
	require.NoError(t, sc.Scan(context.Background()))
	// expired + low_stock, cada una exactamente una vez
	assert.Len(t, notif.byType(entity.NotificationTypeExpired), 1)
	assert.Len(t, notif.byType(entity.NotificationTypeLowStock), 1)

	notif.markAllRead()
	require.NoError(t, sc.Scan(context.Background()))
	assert.Len(t, notif.byType(entity.NotificationTypeExpired), 2,
		"leída la alerta anterior, la condición vigente debe volver a alertar")
}

// Venta que deja el lote en cero: el siguiente barrido crea out_of_stock.
func TestScan_VentaAgotaLote_ProximoBarridoAlertaSinStock(t *testing.T) {
	inv := &fakeInvRepo{batches: []fakeBatch{
		{id: "i1", productID: "p1", productName: "Salbutamol", batchNumber: "L-3",
			expiry: time.Now().AddDate(1, 0, 0), qty: 10},
	}}
	notif := &fakeNotifRepo{}
	sc := newScanner(inv, notif)

	require.NoError(t, sc.Scan(context.Background()))
	assert.Empty(t, notif.byType(entity.NotificationTypeOutOfStock))

	// se venden las 10 unidades
	inv.batches[0].qty = 0

	require.NoError(t, sc.Scan(context.Background()))
	assert.Len(t, notif.byType(entity.NotificationTypeOutOfStock), 1)
}
