// Package bootstrap arma el almacenamiento y los casos de uso del libro a partir de la configuración.
// Lo comparten el servidor HTTP y las herramientas de línea de comandos.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
	"github.com/jhoicas/abastecimiento-api/internal/infrastructure/memory"
	"github.com/jhoicas/abastecimiento-api/internal/infrastructure/postgres"
	"github.com/jhoicas/abastecimiento-api/internal/infrastructure/redis"
	"github.com/jhoicas/abastecimiento-api/pkg/config"
	"github.com/jhoicas/abastecimiento-api/pkg/logger"
)

// Backend repositorios fuera de transacción, el TxRunner y el candado de reparación (nil sin Redis).
type Backend struct {
	TxRunner   ledger.TxRunner
	Materials  repository.MaterialRepository
	Suppliers  repository.SupplierRepository
	Orders     repository.PurchaseOrderRepository
	Deliveries repository.DeliveryRepository
	Movements  repository.MovementRepository
	Stock      repository.StockAccountRepository
	Production repository.ProductionRepository
	Locker     ledger.RunLocker

	closers []func()
}

// Open abre el almacenamiento indicado por APP_STORAGE y, si hay REDIS_ADDR, el candado distribuido.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Backend, error) {
	b := &Backend{}
	switch cfg.App.Storage {
	case config.StorageMemory:
		store := memory.NewStore()
		b.TxRunner = store
		b.Materials = store.Materials()
		b.Suppliers = store.Suppliers()
		b.Orders = store.Orders()
		b.Deliveries = store.Deliveries()
		b.Movements = store.Movements()
		b.Stock = store.StockAccounts()
		b.Production = store.ProductionRecords()
		if err := seedDemo(ctx, store, log); err != nil {
			return nil, err
		}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			b.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		b.TxRunner = postgres.NewTxRunner(pool)
		b.Materials = postgres.NewMaterialRepository(pool)
		b.Suppliers = postgres.NewSupplierRepository(pool)
		b.Orders = postgres.NewPurchaseOrderRepository(pool)
		b.Deliveries = postgres.NewDeliveryRepository(pool)
		b.Movements = postgres.NewMovementRepository(pool)
		b.Stock = postgres.NewStockAccountRepository(pool)
		b.Production = postgres.NewProductionRepository(pool)
	}

	if cfg.Redis.Enabled() {
		rdb, err := redis.New(ctx, cfg.Redis.Addr)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.Locker = redis.NewLocker(rdb, cfg.Redis.RepairLockTTL, log.Component("lock"))
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: la reparación corre sin candado entre procesos")
	}
	return b, nil
}

// Close libera conexiones en orden inverso de apertura.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Services casos de uso del libro.
type Services struct {
	Orders     *ledger.OrderUseCase
	Deliveries *ledger.DeliveryUseCase
	Stock      *ledger.StockUseCase
	Movements  *ledger.MovementUseCase
	Production *ledger.ProductionUseCase
	Repair     *ledger.RepairUseCase
}

// NewServices construye los casos de uso sobre el backend.
func NewServices(b *Backend, cfg *config.Config, log *logger.Logger) *Services {
	return &Services{
		Orders: ledger.NewOrderUseCase(b.Orders, b.Deliveries, b.Materials, b.Suppliers),
		Deliveries: ledger.NewDeliveryUseCase(b.TxRunner, b.Orders, b.Deliveries, log.Component("delivery"), ledger.DeliveryConfig{
			DivergenceAlertPct: cfg.Ledger.DivergenceAlertPct,
		}),
		Stock:      ledger.NewStockUseCase(b.Materials, b.Stock, b.Movements, log.Component("stock")),
		Movements:  ledger.NewMovementUseCase(b.TxRunner, b.Movements),
		Production: ledger.NewProductionUseCase(b.TxRunner),
		Repair: ledger.NewRepairUseCase(b.TxRunner, b.Materials, b.Production, b.Deliveries, b.Locker, log.Component("repair"), ledger.RepairConfig{
			Locale: cfg.Ledger.Locale,
		}),
	}
}

// seedDemo carga materiales y un proveedor de ejemplo: el almacén en memoria arranca vacío
// y la API no da de alta materiales ni proveedores.
func seedDemo(ctx context.Context, store *memory.Store, log *logger.Logger) error {
	now := time.Now()
	minSugar := decimal.NewFromInt(500)
	materials := []*entity.Material{
		{ID: uuid.New().String(), Name: "Caña de azúcar", Unit: "kg", CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New().String(), Name: "Azúcar", Unit: "kg", MinStockAlert: &minSugar, CreatedAt: now, UpdatedAt: now},
	}
	for _, m := range materials {
		if err := store.Materials().Create(ctx, m); err != nil {
			return fmt.Errorf("seed material %s: %w", m.Name, err)
		}
		log.Info().Str("material_id", m.ID).Str("name", m.Name).Msg("material de ejemplo")
	}
	sup := &entity.Supplier{ID: uuid.New().String(), Name: "Ingenio Demo", CreatedAt: now}
	if err := store.Suppliers().Create(ctx, sup); err != nil {
		return fmt.Errorf("seed proveedor: %w", err)
	}
	log.Info().Str("supplier_id", sup.ID).Str("name", sup.Name).Msg("proveedor de ejemplo")
	return nil
}
