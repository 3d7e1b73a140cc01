package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockAccountRepository define el puerto de la cuenta de stock por material.
// ApplyDelta debe ser un incremento atómico en el almacén (nunca leer-calcular-escribir).
type StockAccountRepository interface {
	ApplyDelta(ctx context.Context, materialID string, delta decimal.Decimal) (decimal.Decimal, error)
	GetBalance(ctx context.Context, materialID string) (decimal.Decimal, error)
	// Snapshot devuelve el saldo cacheado y la suma de movimientos leídos en una misma instantánea.
	Snapshot(ctx context.Context, materialID string) (balance, movementSum decimal.Decimal, err error)
}
