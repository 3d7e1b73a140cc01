package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/infrastructure/memory"
)

// fixture casos de uso cableados sobre el almacén en memoria.
type fixture struct {
	store      *memory.Store
	orders     *ledger.OrderUseCase
	deliveries *ledger.DeliveryUseCase
	stock      *ledger.StockUseCase
	movements  *ledger.MovementUseCase
	production *ledger.ProductionUseCase
	repair     *ledger.RepairUseCase
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, zerolog.Nop(), ledger.DeliveryConfig{}, nil)
}

func newFixtureWith(t *testing.T, log zerolog.Logger, cfg ledger.DeliveryConfig, locker ledger.RunLocker) *fixture {
	t.Helper()
	s := memory.NewStore()
	return &fixture{
		store:      s,
		orders:     ledger.NewOrderUseCase(s.Orders(), s.Deliveries(), s.Materials(), s.Suppliers()),
		deliveries: ledger.NewDeliveryUseCase(s, s.Orders(), s.Deliveries(), log, cfg),
		stock:      ledger.NewStockUseCase(s.Materials(), s.StockAccounts(), s.Movements(), log),
		movements:  ledger.NewMovementUseCase(s, s.Movements()),
		production: ledger.NewProductionUseCase(s),
		repair:     ledger.NewRepairUseCase(s, s.Materials(), s.ProductionRecords(), s.Deliveries(), locker, log, ledger.RepairConfig{Locale: "es"}),
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func (f *fixture) material(t *testing.T, name string) string {
	t.Helper()
	now := time.Now()
	m := &entity.Material{ID: uuid.New().String(), Name: name, Unit: "kg", CurrentStock: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.store.Materials().Create(context.Background(), m))
	return m.ID
}

func (f *fixture) supplier(t *testing.T, name string) string {
	t.Helper()
	s := &entity.Supplier{ID: uuid.New().String(), Name: name, CreatedAt: time.Now()}
	require.NoError(t, f.store.Suppliers().Create(context.Background(), s))
	return s.ID
}

func (f *fixture) order(t *testing.T, supplierID, materialID, qty string) string {
	t.Helper()
	out, err := f.orders.Create(context.Background(), dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		MaterialID: materialID,
		Quantity:   dec(qty),
	})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) deliver(t *testing.T, orderID, measured string) *dto.DeliveryResponse {
	t.Helper()
	out, err := f.deliveries.Create(context.Background(), dto.CreateDeliveryRequest{
		OrderID:        orderID,
		Plate:          "abc1d23",
		WeightMeasured: dec(measured),
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) balance(t *testing.T, materialID string) decimal.Decimal {
	t.Helper()
	b, err := f.store.StockAccounts().GetBalance(context.Background(), materialID)
	require.NoError(t, err)
	return b
}

// requireConsistent current_stock == suma de movimientos.
func (f *fixture) requireConsistent(t *testing.T, materialID string) {
	t.Helper()
	res, err := f.stock.Verify(context.Background(), materialID)
	require.NoError(t, err)
	require.True(t, res.Consistent)
}

func (f *fixture) openView(t *testing.T, orderID string) *dto.OrderView {
	t.Helper()
	views, err := f.orders.ListOpen(context.Background())
	require.NoError(t, err)
	for i := range views {
		if views[i].OrderID == orderID {
			return &views[i]
		}
	}
	return nil
}

func (f *fixture) storedStatus(t *testing.T, orderID string) string {
	t.Helper()
	o, err := f.store.Orders().GetByID(context.Background(), orderID)
	require.NoError(t, err)
	require.NotNil(t, o)
	return o.Status
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "esperado %s, obtenido %s %v", want, got.String(), msgAndArgs)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}
