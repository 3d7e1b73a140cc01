package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

const materialColumns = `id, name, unit, current_stock, min_stock_alert, created_at, updated_at`

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

func scanMaterial(row pgx.Row) (*entity.Material, error) {
	var m entity.Material
	if err := row.Scan(&m.ID, &m.Name, &m.Unit, &m.CurrentStock, &m.MinStockAlert, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste un material. El saldo inicial debería ser cero: el stock solo nace de movimientos.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materials (` + materialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.Name, m.Unit, m.CurrentStock, m.MinStockAlert, m.CreatedAt, m.UpdatedAt)
	return classify("create material", err)
}

// GetByID obtiene un material por ID; nil si no existe.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	m, err := scanMaterial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// ListByIDs obtiene los materiales indicados (los inexistentes se omiten).
func (r *MaterialRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = ANY($1)`
	return r.list(ctx, query, ids)
}

// List todos los materiales por nombre.
func (r *MaterialRepo) List(ctx context.Context) ([]*entity.Material, error) {
	return r.list(ctx, `SELECT `+materialColumns+` FROM materials ORDER BY name`)
}

func (r *MaterialRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Material, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
