package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

const retryAttempts = 3

// quantityScale decimales que admite el almacén (NUMERIC(14,3)).
const quantityScale = 3

// checkScale rechaza cantidades con más decimales de los que se pueden guardar sin redondeo.
func checkScale(op, field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(quantityScale)) {
		return domain.NewValidationError(op, fmt.Sprintf("%s admite como máximo %d decimales", field, quantityScale))
	}
	return nil
}

// checkScales aplica checkScale a pares campo/valor; los nil se omiten.
func checkScales(op string, fields map[string]*decimal.Decimal) error {
	for field, d := range fields {
		if d == nil {
			continue
		}
		if err := checkScale(op, field, *d); err != nil {
			return err
		}
	}
	return nil
}

// post inserta el movimiento en el libro y aplica su cantidad a la cuenta de stock del material,
// dentro de la transacción del llamador. Devuelve el nuevo saldo.
func post(ctx context.Context, repos TxRepos, m *entity.Movement) (decimal.Decimal, error) {
	if m.Quantity.IsZero() {
		return decimal.Zero, domain.NewValidationError("movement.post", "la cantidad no puede ser cero")
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.Date.IsZero() {
		m.Date = m.CreatedAt
	}
	if err := repos.Movements.Append(ctx, m); err != nil {
		return decimal.Zero, err
	}
	balance, err := repos.Stock.ApplyDelta(ctx, m.MaterialID, m.Quantity)
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// wrapTx convierte el error de una transacción en un error tipado del libro.
// Los LedgerError pasan intactos; un material inexistente es NotFound; el resto es Persistence.
func wrapTx(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsLedgerError(err); ok {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFoundError(op, err.Error())
	}
	return domain.NewPersistenceError(op, err)
}

// withRetry reintenta fn solo ante domain.ErrTransient. Usar únicamente en operaciones idempotentes.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrTransient) {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (cancelado: %v)", err, ctx.Err())
		case <-time.After(time.Duration(i+1) * 25 * time.Millisecond):
		}
	}
	return err
}
