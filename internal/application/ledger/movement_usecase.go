package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

// MovementUseCase publicación de movimientos por módulos externos (producción, ventas, ajustes).
// El libro acepta movimientos de cualquier origen; los de compra los genera solo el registro de entregas.
type MovementUseCase struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	now       func() time.Time
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(txRunner TxRunner, movements repository.MovementRepository) *MovementUseCase {
	return &MovementUseCase{txRunner: txRunner, movements: movements, now: time.Now}
}

// Post registra un movimiento y su efecto en la cuenta de stock.
// Para tipos con clave (producao_*, venda_saida) es idempotente sobre (reference_id, material_id, type):
// repetir la llamada devuelve el movimiento ya registrado con Replayed=true y no cambia el saldo.
func (uc *MovementUseCase) Post(ctx context.Context, in dto.PostMovementRequest) (*dto.MovementResponse, error) {
	const op = "movement.post"
	mt := entity.MovementType(strings.TrimSpace(in.Type))
	if strings.TrimSpace(in.MaterialID) == "" {
		return nil, domain.NewValidationError(op, "material_id es requerido")
	}
	if !mt.Valid() {
		return nil, domain.NewValidationError(op, "tipo de movimiento desconocido: "+in.Type)
	}
	switch mt {
	case entity.MovementPurchaseInbound, entity.MovementPurchaseCorrection, entity.MovementPurchaseReversal:
		return nil, domain.NewValidationError(op, "los movimientos de compra se registran vía entregas")
	}
	if mt.Keyed() && strings.TrimSpace(in.ReferenceID) == "" {
		return nil, domain.NewValidationError(op, "reference_id es requerido para "+string(mt))
	}

	var qty decimal.Decimal
	switch mt.Direction() {
	case 0:
		if in.Quantity.IsZero() {
			return nil, domain.NewValidationError(op, "la cantidad del ajuste no puede ser cero")
		}
		qty = in.Quantity
	default:
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.NewValidationError(op, "quantity debe ser mayor que cero")
		}
		qty = in.Quantity.Mul(decimal.NewFromInt(int64(mt.Direction())))
	}
	if err := checkScale(op, "quantity", qty); err != nil {
		return nil, err
	}

	now := uc.now()
	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}

	var result *entity.Movement
	replayed := false
	err := withRetry(ctx, retryAttempts, func() error {
		return uc.txRunner.Run(ctx, func(ctx context.Context, r TxRepos) error {
			if mt.Keyed() {
				existing, err := r.Movements.FindByKey(ctx, in.ReferenceID, in.MaterialID, mt)
				if err != nil {
					return err
				}
				if existing != nil {
					result, replayed = existing, true
					return nil
				}
			}
			mov := &entity.Movement{
				MaterialID:  in.MaterialID,
				Quantity:    qty,
				Type:        mt,
				ReferenceID: in.ReferenceID,
				Date:        date,
				Notes:       in.Notes,
				CreatedAt:   now,
			}
			if _, err := post(ctx, r, mov); err != nil {
				return err
			}
			result, replayed = mov, false
			return nil
		})
	})
	if errors.Is(err, domain.ErrDuplicate) && mt.Keyed() {
		// Otra llamada concurrente registró la misma clave entre la consulta y la inserción.
		existing, ferr := uc.movements.FindByKey(ctx, in.ReferenceID, in.MaterialID, mt)
		if ferr == nil && existing != nil {
			result, replayed, err = existing, true, nil
		}
	}
	if err != nil {
		return nil, wrapTx(op, err)
	}
	resp := toMovementResponse(result)
	resp.Replayed = replayed
	return &resp, nil
}
