package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

func TestProduction_RegistraEntradaYConsumo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")
	cana := f.material(t, "Caña")

	out, err := f.production.Register(ctx, dto.RegisterProductionRequest{
		ProductMaterialID: azucar, QuantityProduced: dec("120"),
		RawMaterialID: cana, QuantityConsumed: dec("1000"),
	})
	require.NoError(t, err)
	require.Len(t, out.Movements, 2)
	assert.Equal(t, string(entity.MovementProductionInbound), out.Movements[0].Type)
	assert.Equal(t, string(entity.MovementProductionConsumption), out.Movements[1].Type)
	assert.Equal(t, out.ID, out.Movements[1].ReferenceID)

	assertDec(t, "120", f.balance(t, azucar))
	assertDec(t, "-1000", f.balance(t, cana))
	f.requireConsistent(t, azucar)
	f.requireConsistent(t, cana)

	rec, err := f.store.ProductionRecords().GetByID(ctx, out.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
}

func TestProduction_SinConsumoSoloEntrada(t *testing.T) {
	f := newFixture(t)
	azucar := f.material(t, "Azúcar")
	out, err := f.production.Register(context.Background(), dto.RegisterProductionRequest{ProductMaterialID: azucar, QuantityProduced: dec("5")})
	require.NoError(t, err)
	assert.Len(t, out.Movements, 1)
}

func TestProduction_FalloRevierteRegistroYMovimientos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")
	cana := f.material(t, "Caña")

	// El primer ApplyDelta falla: registro y movimientos se descartan juntos.
	f.store.InjectFailure("stock.apply_delta", errors.New("timeout"))
	_, err := f.production.Register(ctx, dto.RegisterProductionRequest{
		ProductMaterialID: azucar, QuantityProduced: dec("120"),
		RawMaterialID: cana, QuantityConsumed: dec("1000"),
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Empty(t, f.store.MovementsOf(azucar))
	assert.Empty(t, f.store.MovementsOf(cana))
	recs, err := f.store.ProductionRecords().ListByProductMaterial(ctx, azucar)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestProduction_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")

	invalid := []dto.RegisterProductionRequest{
		{ProductMaterialID: "", QuantityProduced: dec("1")},
		{ProductMaterialID: azucar, QuantityProduced: dec("0")},
		{ProductMaterialID: azucar, QuantityProduced: dec("1"), QuantityConsumed: dec("-1")},
		{ProductMaterialID: azucar, QuantityProduced: dec("1"), QuantityConsumed: dec("3")},
		{ProductMaterialID: azucar, QuantityProduced: dec("1"), RawMaterialID: azucar, QuantityConsumed: dec("3")},
	}
	for _, in := range invalid {
		_, err := f.production.Register(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", in)
	}

	_, err := f.production.Register(ctx, dto.RegisterProductionRequest{ProductMaterialID: "no-existe", QuantityProduced: dec("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
