package ledger_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/shopspring/decimal"
)

func TestStock_VerifyDetectaSaldoDesviado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mat := f.material(t, "Caña")
	order := f.order(t, f.supplier(t, "Ingenio Norte"), mat, "1000")
	f.deliver(t, order, "400")
	f.requireConsistent(t, mat)

	// Escritura directa del saldo, sin movimiento.
	_, err := f.store.StockAccounts().ApplyDelta(ctx, mat, dec("7.5"))
	require.NoError(t, err)

	res, err := f.stock.Verify(ctx, mat)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInconsistentStock)
	require.NotNil(t, res)
	assert.False(t, res.Consistent)
	assertDec(t, "407.5", res.CurrentStock)
	assertDec(t, "400", res.MovementSum)
	assertDec(t, "7.5", res.Difference)

	_, err = f.stock.Verify(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStock_VerifyAllIncluyeTodosLosMateriales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.material(t, "A")
	f.material(t, "B")
	_, err := f.store.StockAccounts().ApplyDelta(ctx, a, dec("1"))
	require.NoError(t, err)

	all, err := f.stock.VerifyAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "A", all[0].MaterialName)
	assert.False(t, all[0].Consistent)
	assert.True(t, all[1].Consistent)
}

func TestStock_MovementsPaginaDelMasReciente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mat := f.material(t, "Caña")
	order := f.order(t, f.supplier(t, "Ingenio Norte"), mat, "1000")
	for i, day := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		ts := mustTime(t, day+"T08:00:00Z")
		_, err := f.deliveries.Create(ctx, dto.CreateDeliveryRequest{
			OrderID: order, Plate: "A", WeightMeasured: decimal.NewFromInt(int64(i + 1)), Date: &ts,
		})
		require.NoError(t, err)
	}

	page, err := f.stock.Movements(ctx, mat, nil, nil, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assertDec(t, "3", page.Items[0].Quantity)
	assertDec(t, "2", page.Items[1].Quantity)

	from := mustTime(t, "2024-01-02T00:00:00Z")
	to := mustTime(t, "2024-01-02T23:59:59Z")
	page, err = f.stock.Movements(ctx, mat, &from, &to, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 50, page.Page.Limit)

	_, err = f.stock.Movements(ctx, "no-existe", nil, nil, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Secuencias aleatorias de altas, correcciones y bajas mantienen stock == suma de movimientos,
// y el stock coincide con la suma de pesos medidos vigentes.
func TestStock_InvarianteTrasSecuenciaAleatoria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mat := f.material(t, "Caña")
	order := f.order(t, f.supplier(t, "Ingenio Norte"), mat, "100000")
	rng := rand.New(rand.NewSource(42))

	live := map[string]decimal.Decimal{}
	ids := []string{}
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(ids) == 0:
			w := decimal.New(int64(rng.Intn(50000)+1), -2)
			d := f.deliver(t, order, w.String())
			live[d.ID] = w
			ids = append(ids, d.ID)
		case op == 1:
			id := ids[rng.Intn(len(ids))]
			w := decimal.New(int64(rng.Intn(50000)+1), -2)
			_, err := f.deliveries.Update(ctx, id, dto.UpdateDeliveryRequest{WeightMeasured: &w, WeightFiscal: decPtr("1")})
			require.NoError(t, err)
			live[id] = w
		default:
			k := rng.Intn(len(ids))
			require.NoError(t, f.deliveries.Delete(ctx, ids[k]))
			delete(live, ids[k])
			ids = append(ids[:k], ids[k+1:]...)
		}
	}

	total := decimal.Zero
	for _, w := range live {
		total = total.Add(w)
	}
	assertDec(t, total.String(), f.balance(t, mat))
	f.requireConsistent(t, mat)
}
