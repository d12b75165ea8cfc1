package purchasing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/jhoicas/farmacia-pos/internal/application/purchasing"
	"github.com/jhoicas/farmacia-pos/internal/domain"
	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/policy"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakePORepo struct {
	repository.PurchaseOrderRepository
	orders  map[string]*entity.PurchaseOrder
	items   map[string][]entity.PurchaseOrderItem
	history []entity.POHistoryEntry
}

func (f *fakePORepo) Create(po *entity.PurchaseOrder) error {
	cp := *po
	f.orders[po.ID] = &cp
	return nil
}

func (f *fakePORepo) CreateItem(item *entity.PurchaseOrderItem) error {
	f.items[item.POID] = append(f.items[item.POID], *item)
	return nil
}

func (f *fakePORepo) GetForUpdate(id string) (*entity.PurchaseOrder, error) {
	po, ok := f.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *po
	return &cp, nil
}

func (f *fakePORepo) UpdateSupplier(id, supplierID, updatedBy string) error {
	f.orders[id].SupplierID = supplierID
	f.orders[id].UpdatedBy = updatedBy
	return nil
}

func (f *fakePORepo) DeleteItems(poID string) error {
	delete(f.items, poID)
	return nil
}

func (f *fakePORepo) SetCancelled(id, canceledBy string) error {
	now := time.Now()
	f.orders[id].Status = entity.POStatusCancelled
	f.orders[id].CanceledBy = canceledBy
	f.orders[id].CanceledAt = &now
	return nil
}

func (f *fakePORepo) SetReceived(id, receivedBy string) error {
	now := time.Now()
	f.orders[id].Status = entity.POStatusReceived
	f.orders[id].ReceivedBy = receivedBy
	f.orders[id].ReceivedAt = &now
	return nil
}

func (f *fakePORepo) AddHistory(poID, action, changedBy string) error {
	f.history = append(f.history, entity.POHistoryEntry{
		POID: poID, Action: action, ChangedBy: changedBy, ChangedAt: time.Now(),
	})
	return nil
}

func (f *fakePORepo) DeleteHistory(poID string) error {
	kept := f.history[:0]
	for _, h := range f.history {
		if h.POID != poID {
			kept = append(kept, h)
		}
	}
	f.history = kept
	return nil
}

func (f *fakePORepo) Delete(id string) error {
	delete(f.orders, id)
	return nil
}

func (f *fakePORepo) actionsFor(poID string) []string {
	var out []string
	for _, h := range f.history {
		if h.POID == poID {
			out = append(out, h.Action)
		}
	}
	return out
}

type fakeInvRepo struct {
	repository.InventoryItemRepository
	items map[string]*entity.InventoryItem
}

func (f *fakeInvRepo) ExistsBatch(productID, batchNumber string) (bool, error) {
	for _, it := range f.items {
		if it.ProductID == productID && it.BatchNumber == batchNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvRepo) Create(item *entity.InventoryItem) error {
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

type fakeProductRepo struct {
	repository.ProductRepository
	products map[string]*entity.Product
}

func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return f.products[id], nil
}

type fakeNotifRepo struct {
	repository.NotificationRepository
	cleared []string
}

func (f *fakeNotifRepo) MarkReadByProduct(productID string) error {
	f.cleared = append(f.cleared, productID)
	return nil
}

type fakeSupplierRepo struct {
	repository.SupplierRepository
	suppliers map[string]*entity.Supplier
}

func (f *fakeSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	return f.suppliers[id], nil
}

type fakePurchasingTx struct {
	po      *fakePORepo
	inv     *fakeInvRepo
	product *fakeProductRepo
	notif   *fakeNotifRepo
}

func (f *fakePurchasingTx) RunPurchasing(ctx context.Context, fn func(
	poRepo repository.PurchaseOrderRepository,
	invRepo repository.InventoryItemRepository,
	productRepo repository.ProductRepository,
	notifRepo repository.NotificationRepository,
) error) error {
	ordersSnap := make(map[string]*entity.PurchaseOrder, len(f.po.orders))
	for k, v := range f.po.orders {
		cp := *v
		ordersSnap[k] = &cp
	}
	itemsSnap := make(map[string][]entity.PurchaseOrderItem, len(f.po.items))
	for k, v := range f.po.items {
		itemsSnap[k] = append([]entity.PurchaseOrderItem(nil), v...)
	}
	historySnap := append([]entity.POHistoryEntry(nil), f.po.history...)
	invSnap := make(map[string]*entity.InventoryItem, len(f.inv.items))
	for k, v := range f.inv.items {
		cp := *v
		invSnap[k] = &cp
	}

	if err := fn(f.po, f.inv, f.product, f.notif); err != nil {
		f.po.orders = ordersSnap
		f.po.items = itemsSnap
		f.po.history = historySnap
		f.inv.items = invSnap
		return err
	}
	return nil
}

type fakeScanner struct{ scans int }

func (f *fakeScanner) Scan(ctx context.Context) error { f.scans++; return nil }

type fakeAudit struct{ actions []string }

func (f *fakeAudit) Record(userID, username, action string, details map[string]any) {
	f.actions = append(f.actions, action)
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

var (
	admin      = dto.Actor{UserID: "u-admin", Username: "admin", Roles: []string{entity.RoleAdmin}}
	pharmacist = dto.Actor{UserID: "u-farma", Username: "farma1", Roles: []string{entity.RolePharmacist}}
)

type world struct {
	uc      *purchasing.UseCase
	tx      *fakePurchasingTx
	scanner *fakeScanner
	audit   *fakeAudit
}

func newWorld() *world {
	tx := &fakePurchasingTx{
		po: &fakePORepo{
			orders: map[string]*entity.PurchaseOrder{},
			items:  map[string][]entity.PurchaseOrderItem{},
		},
		inv: &fakeInvRepo{items: map[string]*entity.InventoryItem{}},
		product: &fakeProductRepo{products: map[string]*entity.Product{
			"p1": {ID: "p1", Name: "Paracetamol 500mg"},
			"p2": {ID: "p2", Name: "Ibuprofeno 400mg"},
		}},
		notif: &fakeNotifRepo{},
	}
	suppliers := &fakeSupplierRepo{suppliers: map[string]*entity.Supplier{
		"s1": {ID: "s1", Name: "Droguería Central"},
	}}
	pol := policy.Policy{POBudgetLimit: decimal.RequireFromString("5000")}
	scanner := &fakeScanner{}
	audit := &fakeAudit{}
	log := logger.New(logger.Config{Env: "production", Level: "error"})

	return &world{
		uc:      purchasing.NewUseCase(tx, tx.po, suppliers, pol, scanner, audit, log),
		tx:      tx,
		scanner: scanner,
		audit:   audit,
	}
}

func lines(qty int64, price string) []dto.POItemRequest {
	return []dto.POItemRequest{{ProductID: "p1", Quantity: qty, PricePerItem: decimal.RequireFromString(price)}}
}

func futureDate(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_OrdenPendingConHistorial(t *testing.T) {
	w := newWorld()

	poID, err := w.uc.Create(context.Background(), pharmacist, dto.CreatePORequest{
		SupplierID: "s1",
		Items:      lines(10, "25.00"),
	})
	require.NoError(t, err)

	po := w.tx.po.orders[poID]
	require.NotNil(t, po)
	assert.Equal(t, entity.POStatusPending, po.Status)
	assert.Equal(t, pharmacist.UserID, po.CreatedBy)
	assert.Len(t, w.tx.po.items[poID], 1)
	assert.Equal(t, []string{entity.POActionCreated}, w.tx.po.actionsFor(poID))
	assert.Equal(t, []string{"po_created"}, w.audit.actions)
}

func TestCreate_PresupuestoExcedidoParaFarmaceutico(t *testing.T) {
	w := newWorld()

	// 101 * 50 = 5050 > 5000
	_, err := w.uc.Create(context.Background(), pharmacist, dto.CreatePORequest{
		SupplierID: "s1",
		Items:      lines(101, "50.00"),
	})
	require.ErrorIs(t, err, domain.ErrBudgetExceeded)
	assert.Empty(t, w.tx.po.orders, "nada se persiste si la política deniega")

	// el mismo pedido pasa para un admin
	_, err = w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "s1",
		Items:      lines(101, "50.00"),
	})
	assert.NoError(t, err)
}

func TestCreate_ProveedorInexistente(t *testing.T) {
	w := newWorld()

	_, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "nope",
		Items:      lines(1, "10.00"),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_SinLineas(t *testing.T) {
	w := newWorld()

	_, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{SupplierID: "s1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEdit_DobleEdicionAcumulaHistorial(t *testing.T) {
	w := newWorld()
	poID, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "s1", Items: lines(10, "25.00"),
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err = w.uc.Edit(context.Background(), admin, poID, dto.EditPORequest{
			SupplierID: "s1",
			Items: []dto.POItemRequest{
				{ProductID: "p1", Quantity: 5, PricePerItem: decimal.RequireFromString("20.00")},
				{ProductID: "p2", Quantity: 3, PricePerItem: decimal.RequireFromString("12.00")},
			},
		})
		require.NoError(t, err)
	}

	assert.Equal(t,
		[]string{entity.POActionCreated, entity.POActionEdited, entity.POActionEdited},
		w.tx.po.actionsFor(poID))
	assert.Len(t, w.tx.po.items[poID], 2, "las líneas se reemplazan, no se acumulan")
}

func TestEdit_SoloPending(t *testing.T) {
	w := newWorld()
	poID, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "s1", Items: lines(1, "10.00"),
	})
	require.NoError(t, err)
	require.NoError(t, w.uc.Cancel(context.Background(), admin, poID))

	err = w.uc.Edit(context.Background(), admin, poID, dto.EditPORequest{
		SupplierID: "s1", Items: lines(2, "10.00"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancel_TransicionTerminal(t *testing.T) {
	w := newWorld()
	poID, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "s1", Items: lines(1, "10.00"),
	})
	require.NoError(t, err)

	require.NoError(t, w.uc.Cancel(context.Background(), admin, poID))
	po := w.tx.po.orders[poID]
	assert.Equal(t, entity.POStatusCancelled, po.Status)
	assert.Equal(t, admin.UserID, po.CanceledBy)
	require.NotNil(t, po.CanceledAt)

	// cancelar dos veces no es válido
	err = w.uc.Cancel(context.Background(), admin, poID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// y una orden cancelada tampoco se recibe
	err = w.uc.Receive(context.Background(), admin, poID, dto.ReceivePORequest{
		ReceivedItems: []dto.ReceivedItemRequest{{
			ProductID: "p1", BatchNumber: "L-1", ExpiryDate: futureDate(30), Quantity: 1,
		}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestReceive_CreaLotesYCierraLaOrden(t *testing.T) {
	w := newWorld()
	poID, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "s1", Items: lines(10, "3.00"),
	})
	require.NoError(t, err)

	err = w.uc.Receive(context.Background(), admin, poID, dto.ReceivePORequest{
		ReceivedItems: []dto.ReceivedItemRequest{
			{
				ProductID: "p1", BatchNumber: "L-100", ExpiryDate: futureDate(180),
				Quantity: 10, PricePerItem: decimal.RequireFromString("3.00"),
				SellingPrice: decimal.RequireFromString("5.50"),
			},
			{
				ProductID: "p2", BatchNumber: "L-200", ExpiryDate: futureDate(90),
				Quantity: 4, PricePerItem: decimal.RequireFromString("8.00"),
				SellingPrice: decimal.RequireFromString("12.00"),
			},
		},
	})
	require.NoError(t, err)

	po := w.tx.po.orders[poID]
	assert.Equal(t, entity.POStatusReceived, po.Status)
	require.NotNil(t, po.ReceivedAt)
	assert.Equal(t,
		[]string{entity.POActionCreated, entity.POActionReceived},
		w.tx.po.actionsFor(poID))

	require.Len(t, w.tx.inv.items, 2)
	for _, batch := range w.tx.inv.items {
		assert.Equal(t, "s1", batch.SupplierID, "el lote hereda el proveedor de la orden")
	}
	assert.ElementsMatch(t, []string{"p1", "p2"}, w.tx.notif.cleared,
		"el stock nuevo limpia las alertas del producto")
	assert.Equal(t, 1, w.scanner.scans)
}

// Un lote duplicado en la lista recibida revierte TODO: la orden sigue
// Pending y ningún lote de la misma recepción queda insertado.
func TestReceive_LoteDuplicadoRevierteTodo(t *testing.T) {
	w := newWorld()
	w.tx.inv.items["existing"] = &entity.InventoryItem{
		ID: "existing", ProductID: "p2", BatchNumber: "L-200",
	}
	poID, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "s1", Items: lines(10, "3.00"),
	})
	require.NoError(t, err)

	err = w.uc.Receive(context.Background(), admin, poID, dto.ReceivePORequest{
		ReceivedItems: []dto.ReceivedItemRequest{
			{ProductID: "p1", BatchNumber: "L-100", ExpiryDate: futureDate(180), Quantity: 10},
			{ProductID: "p2", BatchNumber: "L-200", ExpiryDate: futureDate(90), Quantity: 4},
		},
	})
	require.ErrorIs(t, err, domain.ErrDuplicateBatch)
	assert.Contains(t, err.Error(), "Ibuprofeno", "el error nombra al producto en conflicto")

	assert.Equal(t, entity.POStatusPending, w.tx.po.orders[poID].Status)
	assert.Len(t, w.tx.inv.items, 1, "el lote de p1 también se revierte")
	assert.Equal(t, 0, w.scanner.scans)
}

func TestReceive_StockVencidoRechazado(t *testing.T) {
	w := newWorld()
	poID, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "s1", Items: lines(10, "3.00"),
	})
	require.NoError(t, err)

	err = w.uc.Receive(context.Background(), admin, poID, dto.ReceivePORequest{
		ReceivedItems: []dto.ReceivedItemRequest{{
			ProductID: "p1", BatchNumber: "L-100",
			ExpiryDate: time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
			Quantity:   10,
		}},
	})
	require.ErrorIs(t, err, domain.ErrExpiredStock)
	assert.Equal(t, entity.POStatusPending, w.tx.po.orders[poID].Status)
	assert.Empty(t, w.tx.inv.items)
}

func TestDelete_SoloAdminYSoloTerminales(t *testing.T) {
	w := newWorld()
	poID, err := w.uc.Create(context.Background(), admin, dto.CreatePORequest{
		SupplierID: "s1", Items: lines(1, "10.00"),
	})
	require.NoError(t, err)

	// no-admin denegado sin tocar la orden
	err = w.uc.Delete(context.Background(), pharmacist, poID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// Pending no se borra ni siendo admin
	err = w.uc.Delete(context.Background(), admin, poID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	require.NoError(t, w.uc.Cancel(context.Background(), admin, poID))
	require.NoError(t, w.uc.Delete(context.Background(), admin, poID))
	assert.NotContains(t, w.tx.po.orders, poID)
	assert.Empty(t, w.tx.po.actionsFor(poID), "el historial cae con la cabecera")
}

func TestList_RangoTemporalInvalido(t *testing.T) {
	w := newWorld()

	_, err := w.uc.List(dto.POListQuery{TimeRange: "yesterday"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
