package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

var _ repository.StockAccountRepository = (*StockAccountRepo)(nil)

// StockAccountRepo cuenta de stock sobre materials.current_stock (usable con pool o tx).
type StockAccountRepo struct {
	q Querier
}

// NewStockAccountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAccountRepository(q Querier) *StockAccountRepo {
	return &StockAccountRepo{q: q}
}

// ApplyDelta suma delta al saldo con un único UPDATE; dos transacciones concurrentes
// se serializan en el bloqueo de fila y ninguna pierde su incremento.
func (r *StockAccountRepo) ApplyDelta(ctx context.Context, materialID string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE materials SET current_stock = current_stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING current_stock`
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, query, materialID, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return decimal.Zero, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
		}
		return decimal.Zero, classify("apply stock delta", err)
	}
	return balance, nil
}

// GetBalance saldo cacheado del material.
func (r *StockAccountRepo) GetBalance(ctx context.Context, materialID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT current_stock FROM materials WHERE id = $1`, materialID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return decimal.Zero, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// Snapshot lee saldo y suma de movimientos en una sola sentencia (misma instantánea).
func (r *StockAccountRepo) Snapshot(ctx context.Context, materialID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT m.current_stock,
		       COALESCE((SELECT SUM(s.quantity) FROM stock_movements s WHERE s.material_id = m.id), 0)
		FROM materials m WHERE m.id = $1`
	var balance, sum decimal.Decimal
	err := r.q.QueryRow(ctx, query, materialID).Scan(&balance, &sum)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return decimal.Zero, decimal.Zero, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
		}
		return decimal.Zero, decimal.Zero, fmt.Errorf("stock snapshot: %w", err)
	}
	return balance, sum, nil
}
