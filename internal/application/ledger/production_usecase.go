package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

// ProductionUseCase registra producción junto con sus movimientos en una sola transacción,
// de modo que un registro nunca quede sin su producao_entrada / producao_consumo.
type ProductionUseCase struct {
	txRunner TxRunner
	now      func() time.Time
}

// NewProductionUseCase construye el caso de uso.
func NewProductionUseCase(txRunner TxRunner) *ProductionUseCase {
	return &ProductionUseCase{txRunner: txRunner, now: time.Now}
}

// Register persiste el registro de producción, la entrada del producto y, si aplica, el consumo de materia prima.
func (uc *ProductionUseCase) Register(ctx context.Context, in dto.RegisterProductionRequest) (*dto.ProductionResponse, error) {
	const op = "production.register"
	if strings.TrimSpace(in.ProductMaterialID) == "" {
		return nil, domain.NewValidationError(op, "product_material_id es requerido")
	}
	if !in.QuantityProduced.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError(op, "quantity_produced debe ser mayor que cero")
	}
	if in.QuantityConsumed.IsNegative() {
		return nil, domain.NewValidationError(op, "quantity_consumed no puede ser negativo")
	}
	if in.QuantityConsumed.GreaterThan(decimal.Zero) && strings.TrimSpace(in.RawMaterialID) == "" {
		return nil, domain.NewValidationError(op, "raw_material_id es requerido cuando hay consumo")
	}
	if in.RawMaterialID != "" && in.RawMaterialID == in.ProductMaterialID {
		return nil, domain.NewValidationError(op, "producto y materia prima deben ser distintos")
	}
	if err := checkScales(op, map[string]*decimal.Decimal{
		"quantity_produced": &in.QuantityProduced,
		"quantity_consumed": &in.QuantityConsumed,
	}); err != nil {
		return nil, err
	}

	now := uc.now()
	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	rec := &entity.ProductionRecord{
		ID:                uuid.New().String(),
		Date:              date,
		ProductMaterialID: in.ProductMaterialID,
		QuantityProduced:  in.QuantityProduced,
		RawMaterialID:     strings.TrimSpace(in.RawMaterialID),
		QuantityConsumed:  in.QuantityConsumed,
		Notes:             in.Notes,
		CreatedAt:         now,
	}

	var movements []*entity.Movement
	err := withRetry(ctx, retryAttempts, func() error {
		movements = movements[:0]
		return uc.txRunner.Run(ctx, func(ctx context.Context, r TxRepos) error {
			if err := r.Production.Create(ctx, rec); err != nil {
				return err
			}
			out := &entity.Movement{
				MaterialID:  rec.ProductMaterialID,
				Quantity:    rec.QuantityProduced,
				Type:        entity.MovementProductionInbound,
				ReferenceID: rec.ID,
				Date:        rec.Date,
				Notes:       fmt.Sprintf("producción %s", rec.ID),
				CreatedAt:   now,
			}
			if _, err := post(ctx, r, out); err != nil {
				return err
			}
			movements = append(movements, out)
			if rec.HasConsumption() {
				consumption := &entity.Movement{
					MaterialID:  rec.RawMaterialID,
					Quantity:    rec.QuantityConsumed.Neg(),
					Type:        entity.MovementProductionConsumption,
					ReferenceID: rec.ID,
					Date:        rec.Date,
					Notes:       fmt.Sprintf("consumo de producción %s", rec.ID),
					CreatedAt:   now,
				}
				if _, err := post(ctx, r, consumption); err != nil {
					return err
				}
				movements = append(movements, consumption)
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapTx(op, err)
	}

	resp := &dto.ProductionResponse{
		ID:                rec.ID,
		Date:              rec.Date,
		ProductMaterialID: rec.ProductMaterialID,
		QuantityProduced:  rec.QuantityProduced,
		RawMaterialID:     rec.RawMaterialID,
		QuantityConsumed:  rec.QuantityConsumed,
		Movements:         make([]dto.MovementResponse, 0, len(movements)),
	}
	for _, m := range movements {
		resp.Movements = append(resp.Movements, toMovementResponse(m))
	}
	return resp, nil
}
