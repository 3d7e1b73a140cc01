package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abastecimiento-api/internal/domain/ledger"
)

func TestAggregateSupplierBalances_AgrupaYOrdenaPorPendiente(t *testing.T) {
	orders := []ledger.OpenOrder{
		{OrderID: "o1", SupplierID: "s1", SupplierName: "Areial Sul", MaterialID: "m1", MaterialName: "Areia", Quantity: dec("1000"), Delivered: dec("400"), Remaining: dec("600")},
		{OrderID: "o2", SupplierID: "s2", SupplierName: "Pedreira Norte", MaterialID: "m2", MaterialName: "Brita", Quantity: dec("5000"), Delivered: dec("1000"), Remaining: dec("4000")},
		{OrderID: "o3", SupplierID: "s1", SupplierName: "Areial Sul", MaterialID: "m3", MaterialName: "Argila", Quantity: dec("300"), Delivered: dec("0"), Remaining: dec("300")},
		{OrderID: "o4", SupplierID: "s1", SupplierName: "Areial Sul", MaterialID: "m1", MaterialName: "Areia", Quantity: dec("200"), Delivered: dec("50"), Remaining: dec("150")},
	}

	got := ledger.AggregateSupplierBalances(orders)

	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].SupplierID, "el mayor pendiente va primero")
	assert.Equal(t, "s1", got[1].SupplierID)

	s1 := got[1]
	assert.True(t, s1.Quantity.Equal(dec("1500")))
	assert.True(t, s1.Delivered.Equal(dec("450")))
	assert.True(t, s1.Remaining.Equal(dec("1050")))
	assert.Equal(t, 3, s1.OpenOrderCount)
	assert.Equal(t, []string{"Areia", "Argila"}, s1.Materials)
}

func TestAggregateSupplierBalances_EmpateDeterministico(t *testing.T) {
	orders := []ledger.OpenOrder{
		{OrderID: "o1", SupplierID: "s2", SupplierName: "Beta", Remaining: dec("10"), Quantity: dec("10"), Delivered: dec("0")},
		{OrderID: "o2", SupplierID: "s1", SupplierName: "Alfa", Remaining: dec("10"), Quantity: dec("10"), Delivered: dec("0")},
	}

	for i := 0; i < 5; i++ {
		got := ledger.AggregateSupplierBalances(orders)
		require.Len(t, got, 2)
		assert.Equal(t, "Alfa", got[0].SupplierName)
		assert.Equal(t, "Beta", got[1].SupplierName)
	}
}

func TestAggregateSupplierBalances_SinPedidos(t *testing.T) {
	got := ledger.AggregateSupplierBalances(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
