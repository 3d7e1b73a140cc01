package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
	keys []string
}

func (l *fakeLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, domain.ErrRepairRunning
	}
	l.held[key] = true
	l.keys = append(l.keys, key)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

// seedProduction registro de producción sin sus movimientos (datos anteriores a la integración).
func (f *fixture) seedProduction(t *testing.T, product, raw, produced, consumed string) string {
	t.Helper()
	rec := &entity.ProductionRecord{
		ID:                uuid.New().String(),
		Date:              time.Now(),
		ProductMaterialID: product,
		QuantityProduced:  dec(produced),
		RawMaterialID:     raw,
		QuantityConsumed:  dec(consumed),
		CreatedAt:         time.Now(),
	}
	require.NoError(t, f.store.ProductionRecords().Create(context.Background(), rec))
	return rec.ID
}

// Registro de producción sin movimiento: la reparación registra uno y una segunda ejecución no hace nada.
func TestRepair_ProduccionSinMovimientoEsIdempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")
	ref := f.seedProduction(t, azucar, "", "120", "0")
	f.seedProduction(t, azucar, "", "30.5", "0")

	report, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.FixedCount)
	assertDec(t, "150.5", report.TotalAdjusted)
	require.Len(t, report.Log, 2)
	assertDec(t, "150.5", f.balance(t, azucar))
	f.requireConsistent(t, azucar)

	var found bool
	for _, m := range f.store.MovementsOf(azucar) {
		if m.ReferenceID == ref {
			found = true
			assert.Equal(t, entity.MovementProductionInbound, m.Type)
			assertDec(t, "120", m.Quantity)
		}
	}
	assert.True(t, found)

	again, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar})
	require.NoError(t, err)
	assert.Equal(t, 0, again.FixedCount)
	assertDec(t, "0", again.TotalAdjusted)
	assert.Empty(t, again.Log)
	assert.Len(t, f.store.MovementsOf(azucar), 2)
}

func TestRepair_ConsumoRegistraSalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")
	cana := f.material(t, "Caña")
	f.seedProduction(t, azucar, cana, "120", "1000")

	report, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_consumo", MaterialID: cana})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FixedCount)
	assertDec(t, "-1000", report.TotalAdjusted)
	assertDec(t, "-1000", f.balance(t, cana))
	assertDec(t, "0", f.balance(t, azucar), "solo se repara el material indicado")
}

func TestRepair_ProduccionRegistradaPorElLibroNoSeDuplica(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")
	_, err := f.production.Register(ctx, dto.RegisterProductionRequest{ProductMaterialID: azucar, QuantityProduced: dec("10")})
	require.NoError(t, err)

	report, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 0, report.FixedCount)
	assertDec(t, "10", f.balance(t, azucar))
}

// Entrega sin compra_entrada pero con una corrección ya registrada: se completa solo el residuo.
func TestRepair_EntregaSinMovimientoRegistraResiduo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cana := f.material(t, "Caña")
	order := f.order(t, f.supplier(t, "Ingenio Norte"), cana, "1000")

	d := &entity.Delivery{ID: uuid.New().String(), OrderID: order, Plate: "ABC1D23", WeightMeasured: dec("300"), Date: time.Now()}
	require.NoError(t, f.store.Deliveries().Create(ctx, d))
	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, r ledger.TxRepos) error {
		if err := r.Movements.Append(ctx, &entity.Movement{
			ID: uuid.New().String(), MaterialID: cana, Quantity: dec("20"),
			Type: entity.MovementPurchaseCorrection, ReferenceID: d.ID, Date: time.Now(),
		}); err != nil {
			return err
		}
		_, err := r.Stock.ApplyDelta(ctx, cana, dec("20"))
		return err
	}))

	report, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "compra_entrada", MaterialID: cana})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FixedCount)
	assertDec(t, "280", report.TotalAdjusted)
	assertDec(t, "300", f.balance(t, cana), "stock igual al peso medido vigente")
	f.requireConsistent(t, cana)

	// Entregas registradas por el libro ya tienen su movimiento.
	f.deliver(t, order, "100")
	again, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "compra_entrada", MaterialID: cana})
	require.NoError(t, err)
	assert.Equal(t, 2, again.Scanned)
	assert.Equal(t, 0, again.FixedCount)
}

func TestRepair_DryRunNoEscribe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")
	ref := f.seedProduction(t, azucar, "", "120", "0")

	report, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar, DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.FixedCount)
	require.Len(t, report.Log, 1)
	assert.Contains(t, report.Log[0], "[dry-run]")
	assert.Contains(t, report.Log[0], ref)
	assert.Contains(t, report.Log[0], "Azúcar")
	assertDec(t, "0", f.balance(t, azucar))
	assert.Empty(t, f.store.MovementsOf(azucar))

	report, err = f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FixedCount)
	assert.NotContains(t, report.Log[0], "[dry-run]")
}

func TestRepair_CandadoExcluyeEjecucionesSimultaneas(t *testing.T) {
	locker := &fakeLocker{}
	f := newFixtureWith(t, zerolog.Nop(), ledger.DeliveryConfig{}, locker)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")
	f.seedProduction(t, azucar, "", "5", "0")

	key := "ledger:repair:producao_entrada:" + azucar
	release, err := locker.Acquire(ctx, key)
	require.NoError(t, err)

	_, err = f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar})
	assert.ErrorIs(t, err, domain.ErrRepairRunning)
	assertDec(t, "0", f.balance(t, azucar))

	release()
	report, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar})
	require.NoError(t, err)
	assert.Equal(t, 1, report.FixedCount)
	assert.False(t, locker.held[key], "el candado se libera al terminar")
}

func TestRepair_ValidaEntrada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")

	_, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "venda_saida", MaterialID: azucar})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type failingLocker struct{ err error }

func (l failingLocker) Acquire(context.Context, string) (func(), error) { return nil, l.err }

func TestRepair_FalloDelCandadoEsErrorDePersistencia(t *testing.T) {
	f := newFixtureWith(t, zerolog.Nop(), ledger.DeliveryConfig{}, failingLocker{err: errors.New("dial tcp 127.0.0.1:6379: connection refused")})
	ctx := context.Background()
	azucar := f.material(t, "Azúcar")
	f.seedProduction(t, azucar, "", "5", "0")

	report, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrPersistence)
	le, ok := domain.AsLedgerError(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindPersistence, le.Kind)
	assertDec(t, "0", f.balance(t, azucar))

	// Candado tomado por otra ejecución: conflicto, no persistencia.
	f = newFixtureWith(t, zerolog.Nop(), ledger.DeliveryConfig{}, failingLocker{err: domain.ErrRepairRunning})
	azucar = f.material(t, "Azúcar")
	_, err = f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "producao_entrada", MaterialID: azucar})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrPersistence)
}

func TestRepair_ResiduoCeroNoRegistraNada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cana := f.material(t, "Caña")
	order := f.order(t, f.supplier(t, "Ingenio Norte"), cana, "1000")

	d := &entity.Delivery{ID: uuid.New().String(), OrderID: order, Plate: "ABC1D23", WeightMeasured: dec("300"), Date: time.Now()}
	require.NoError(t, f.store.Deliveries().Create(ctx, d))
	require.NoError(t, f.store.Run(ctx, func(ctx context.Context, r ledger.TxRepos) error {
		if err := r.Movements.Append(ctx, &entity.Movement{
			ID: uuid.New().String(), MaterialID: cana, Quantity: dec("300"),
			Type: entity.MovementPurchaseCorrection, ReferenceID: d.ID, Date: time.Now(),
		}); err != nil {
			return err
		}
		_, err := r.Stock.ApplyDelta(ctx, cana, dec("300"))
		return err
	}))

	for i := 0; i < 2; i++ {
		report, err := f.repair.Run(ctx, dto.StockRepairRequest{SourceType: "compra_entrada", MaterialID: cana})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Scanned)
		assert.Equal(t, 0, report.FixedCount)
		assert.Empty(t, report.Log)
	}
	assert.Len(t, f.store.MovementsOf(cana), 1)
	assertDec(t, "300", f.balance(t, cana))
	f.requireConsistent(t, cana)
}
