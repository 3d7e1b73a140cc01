package repository

import (
	"context"
	"time"

	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementRepository define el puerto del libro de movimientos (solo inserción).
type MovementRepository interface {
	// Append inserta un movimiento; devuelve domain.ErrDuplicate si choca con la clave de idempotencia.
	Append(ctx context.Context, movement *entity.Movement) error
	// ExistsFor indica si ya existe un movimiento para (referenceID, materialID), opcionalmente filtrado por tipos.
	ExistsFor(ctx context.Context, referenceID, materialID string, types ...entity.MovementType) (bool, error)
	FindByKey(ctx context.Context, referenceID, materialID string, movementType entity.MovementType) (*entity.Movement, error)
	ListByMaterial(ctx context.Context, materialID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	SumByMaterial(ctx context.Context, materialID string) (decimal.Decimal, error)
	SumByReference(ctx context.Context, referenceID, materialID string) (decimal.Decimal, error)
}
