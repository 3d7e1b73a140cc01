package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

var _ repository.ProductionRepository = (*ProductionRepo)(nil)

const productionColumns = `id, date, product_material_id, quantity_produced, raw_material_id, quantity_consumed, notes, created_at`

// ProductionRepo registros de producción sobre PostgreSQL.
type ProductionRepo struct {
	q Querier
}

// NewProductionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionRepository(q Querier) *ProductionRepo {
	return &ProductionRepo{q: q}
}

func scanProduction(row pgx.Row) (*entity.ProductionRecord, error) {
	var p entity.ProductionRecord
	var raw, notes *string
	var consumed *decimal.Decimal
	if err := row.Scan(&p.ID, &p.Date, &p.ProductMaterialID, &p.QuantityProduced, &raw, &consumed, &notes, &p.CreatedAt); err != nil {
		return nil, err
	}
	if raw != nil {
		p.RawMaterialID = *raw
	}
	if consumed != nil {
		p.QuantityConsumed = *consumed
	}
	if notes != nil {
		p.Notes = *notes
	}
	return &p, nil
}

func (r *ProductionRepo) Create(ctx context.Context, p *entity.ProductionRecord) error {
	query := `
		INSERT INTO production_records (` + productionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	var consumed *decimal.Decimal
	if p.HasConsumption() {
		consumed = &p.QuantityConsumed
	}
	_, err := r.q.Exec(ctx, query, p.ID, p.Date, p.ProductMaterialID, p.QuantityProduced,
		nullable(p.RawMaterialID), consumed, nullable(p.Notes), p.CreatedAt)
	return classify("create production record", err)
}

func (r *ProductionRepo) GetByID(ctx context.Context, id string) (*entity.ProductionRecord, error) {
	p, err := scanProduction(r.q.QueryRow(ctx, `SELECT `+productionColumns+` FROM production_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production record: %w", err)
	}
	return p, nil
}

func (r *ProductionRepo) ListByProductMaterial(ctx context.Context, materialID string) ([]*entity.ProductionRecord, error) {
	return r.list(ctx, `SELECT `+productionColumns+` FROM production_records WHERE product_material_id = $1 ORDER BY date, id`, materialID)
}

func (r *ProductionRepo) ListByRawMaterial(ctx context.Context, materialID string) ([]*entity.ProductionRecord, error) {
	return r.list(ctx, `SELECT `+productionColumns+` FROM production_records WHERE raw_material_id = $1 ORDER BY date, id`, materialID)
}

func (r *ProductionRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ProductionRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list production records: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionRecord
	for rows.Next() {
		p, err := scanProduction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production record: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
