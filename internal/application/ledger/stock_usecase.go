package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

// StockUseCase consultas sobre la cuenta de stock y el libro de movimientos.
// Una diferencia entre saldo y suma de movimientos se informa como ConsistencyError;
// nunca se corrige aquí (para eso está la reparación).
type StockUseCase struct {
	materials repository.MaterialRepository
	stock     repository.StockAccountRepository
	movements repository.MovementRepository
	log       zerolog.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	materials repository.MaterialRepository,
	stock repository.StockAccountRepository,
	movements repository.MovementRepository,
	log zerolog.Logger,
) *StockUseCase {
	return &StockUseCase{materials: materials, stock: stock, movements: movements, log: log}
}

// Verify compara current_stock con la suma de movimientos del material.
// Devuelve siempre el resultado de la comparación; si difieren, además un ConsistencyError.
func (uc *StockUseCase) Verify(ctx context.Context, materialID string) (*dto.StockCheckResponse, error) {
	const op = "stock.verify"
	material, err := uc.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	if material == nil {
		return nil, domain.NewNotFoundError(op, "material no encontrado")
	}
	return uc.check(ctx, op, material)
}

// VerifyAll verifica todos los materiales. Las diferencias se registran en el log y en el resultado.
func (uc *StockUseCase) VerifyAll(ctx context.Context) ([]dto.StockCheckResponse, error) {
	const op = "stock.verify_all"
	materials, err := uc.materials.List(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	out := make([]dto.StockCheckResponse, 0, len(materials))
	for _, m := range materials {
		res, err := uc.check(ctx, op, m)
		if err != nil && res == nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

func (uc *StockUseCase) check(ctx context.Context, op string, material *entity.Material) (*dto.StockCheckResponse, error) {
	balance, sum, err := uc.stock.Snapshot(ctx, material.ID)
	if err != nil {
		return nil, wrapTx(op, err)
	}
	diff := balance.Sub(sum)
	res := &dto.StockCheckResponse{
		MaterialID:   material.ID,
		MaterialName: material.Name,
		Unit:         material.Unit,
		CurrentStock: balance,
		MovementSum:  sum,
		Difference:   diff,
		Consistent:   diff.IsZero(),
		BelowMinimum: (&entity.Material{CurrentStock: balance, MinStockAlert: material.MinStockAlert}).BelowMinimum(),
	}
	if !res.Consistent {
		uc.log.Warn().
			Str("material_id", material.ID).
			Str("current_stock", balance.String()).
			Str("movement_sum", sum.String()).
			Str("difference", diff.String()).
			Msg("saldo de stock difiere del libro de movimientos; requiere reparación")
		return res, domain.NewConsistencyError(op, "current_stock "+balance.String()+" difiere de la suma de movimientos "+sum.String())
	}
	return res, nil
}

// Movements historial de movimientos de un material, más reciente primero.
func (uc *StockUseCase) Movements(ctx context.Context, materialID string, from, to *time.Time, page dto.PageRequest) (*dto.MovementListResponse, error) {
	const op = "stock.movements"
	page.DefaultPage()
	material, err := uc.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	if material == nil {
		return nil, domain.NewNotFoundError(op, "material no encontrado")
	}
	list, err := uc.movements.ListByMaterial(ctx, materialID, from, to, page.Limit, page.Offset)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
