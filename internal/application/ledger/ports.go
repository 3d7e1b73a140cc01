package ledger

import (
	"context"

	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Movements  repository.MovementRepository
	Stock      repository.StockAccountRepository
	Deliveries repository.DeliveryRepository
	Orders     repository.PurchaseOrderRepository
	Production repository.ProductionRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Movimiento, cuenta de stock y entrega se confirman o se descartan juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// RunLocker exclusión mutua entre ejecuciones del procedimiento de reparación.
// Acquire devuelve domain.ErrRepairRunning si otra ejecución tiene el candado.
type RunLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
