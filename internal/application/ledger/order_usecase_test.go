package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

func TestOrder_CreateValidaProveedorYMaterial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mat := f.material(t, "Caña")
	sup := f.supplier(t, "Ingenio Norte")

	_, err := f.orders.Create(ctx, dto.CreatePurchaseOrderRequest{SupplierID: "x", MaterialID: mat, Quantity: dec("10")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.orders.Create(ctx, dto.CreatePurchaseOrderRequest{SupplierID: sup, MaterialID: "x", Quantity: dec("10")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.orders.Create(ctx, dto.CreatePurchaseOrderRequest{SupplierID: sup, MaterialID: mat, Quantity: dec("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.orders.Create(ctx, dto.CreatePurchaseOrderRequest{SupplierID: sup, MaterialID: mat, Quantity: dec("10"), Notes: "contrato 12"})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusOpen, out.Status)
	assert.Equal(t, "contrato 12", out.Notes)
}

func TestOrder_ListOpenCompletaNombresYOrdenaPorFecha(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mat := f.material(t, "Caña")
	sup := f.supplier(t, "Ingenio Norte")

	d2 := mustTime(t, "2024-05-02T00:00:00Z")
	d1 := mustTime(t, "2024-05-01T00:00:00Z")
	second, err := f.orders.Create(ctx, dto.CreatePurchaseOrderRequest{SupplierID: sup, MaterialID: mat, Quantity: dec("10"), Date: &d2})
	require.NoError(t, err)
	first, err := f.orders.Create(ctx, dto.CreatePurchaseOrderRequest{SupplierID: sup, MaterialID: mat, Quantity: dec("20"), Date: &d1})
	require.NoError(t, err)

	views, err := f.orders.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, first.ID, views[0].OrderID)
	assert.Equal(t, second.ID, views[1].OrderID)
	assert.Equal(t, "Caña", views[0].MaterialName)
	assert.Equal(t, "kg", views[0].Unit)
	assert.Equal(t, "Ingenio Norte", views[0].SupplierName)
}

func TestOrder_ListOpenVacio(t *testing.T) {
	f := newFixture(t)
	views, err := f.orders.ListOpen(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestOrder_CancelarSacaDelListadoYConservaEntregas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mat := f.material(t, "Caña")
	order := f.order(t, f.supplier(t, "Ingenio Norte"), mat, "1000")
	f.deliver(t, order, "100")

	require.NoError(t, f.orders.Cancel(ctx, order))
	require.NoError(t, f.orders.Cancel(ctx, order), "cancelar dos veces no falla")
	assert.Nil(t, f.openView(t, order))
	assert.Equal(t, entity.OrderStatusCancelled, f.storedStatus(t, order))

	list, err := f.deliveries.ListByOrder(ctx, order)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assertDec(t, "100", f.balance(t, mat))

	assert.ErrorIs(t, f.orders.Cancel(ctx, "no-existe"), domain.ErrNotFound)
}

func TestOrder_SupplierBalancesAgrupaPedidosAbiertos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cana := f.material(t, "Caña")
	melaza := f.material(t, "Melaza")
	norte := f.supplier(t, "Ingenio Norte")
	sur := f.supplier(t, "Ingenio Sur")

	o1 := f.order(t, norte, cana, "1000")
	o2 := f.order(t, norte, melaza, "500")
	o3 := f.order(t, sur, cana, "2000")
	done := f.order(t, sur, melaza, "100")
	f.deliver(t, o1, "400")
	f.deliver(t, o2, "100")
	f.deliver(t, o3, "500")
	f.deliver(t, done, "100")

	balances, err := f.orders.SupplierBalances(ctx)
	require.NoError(t, err)
	require.Len(t, balances, 2)

	assert.Equal(t, "Ingenio Sur", balances[0].SupplierName)
	assertDec(t, "1500", balances[0].Remaining)
	assert.Equal(t, 1, balances[0].OpenOrderCount, "el pedido completado no cuenta")
	assert.Equal(t, []string{"Caña"}, balances[0].Materials)

	assert.Equal(t, "Ingenio Norte", balances[1].SupplierName)
	assertDec(t, "1500", balances[1].Quantity)
	assertDec(t, "500", balances[1].Delivered)
	assertDec(t, "1000", balances[1].Remaining)
	assert.Equal(t, 2, balances[1].OpenOrderCount)
	assert.Equal(t, []string{"Caña", "Melaza"}, balances[1].Materials)
}
