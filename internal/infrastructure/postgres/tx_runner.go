package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los saldos se actualizan con incrementos atómicos y las entregas se bloquean con FOR UPDATE,
// así que no hace falta un nivel de aislamiento mayor.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos ledger.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classify("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ledger.TxRepos{
		Movements:  NewMovementRepository(tx),
		Stock:      NewStockAccountRepository(tx),
		Deliveries: NewDeliveryRepository(tx),
		Orders:     NewPurchaseOrderRepository(tx),
		Production: NewProductionRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}
