package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, material_id, quantity, type, reference_id, date, notes, created_at`

// MovementRepo libro de movimientos sobre stock_movements (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var notes *string
	if err := row.Scan(&m.ID, &m.MaterialID, &m.Quantity, &m.Type, &m.ReferenceID, &m.Date, &notes, &m.CreatedAt); err != nil {
		return nil, err
	}
	if notes != nil {
		m.Notes = *notes
	}
	return &m, nil
}

// Append inserta el movimiento. El índice único parcial ux_stock_movements_key cubre los tipos con clave;
// ON CONFLICT DO NOTHING evita abortar la transacción y el choque se informa como domain.ErrDuplicate.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (reference_id, material_id, type)
			WHERE type IN ('compra_entrada', 'compra_estorno', 'producao_entrada', 'producao_consumo', 'venda_saida')
		DO NOTHING`
	var notes *string
	if m.Notes != "" {
		notes = &m.Notes
	}
	tag, err := r.q.Exec(ctx, query, m.ID, m.MaterialID, m.Quantity, string(m.Type), m.ReferenceID, m.Date, notes, m.CreatedAt)
	if err != nil {
		return classify("append movement", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movimiento %s/%s/%s: %w", m.ReferenceID, m.MaterialID, m.Type, domain.ErrDuplicate)
	}
	return nil
}

// ExistsFor indica si hay algún movimiento para la referencia y el material, opcionalmente de los tipos dados.
func (r *MovementRepo) ExistsFor(ctx context.Context, referenceID, materialID string, types ...entity.MovementType) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE reference_id = $1 AND material_id = $2`
	args := []any{referenceID, materialID}
	if len(types) > 0 {
		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, string(t))
		}
		query += ` AND type = ANY($3)`
		args = append(args, names)
	}
	query += `)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, classify("movement exists", err)
	}
	return exists, nil
}

// FindByKey movimiento con la clave (referencia, material, tipo); nil si no existe.
func (r *MovementRepo) FindByKey(ctx context.Context, referenceID, materialID string, movementType entity.MovementType) (*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE reference_id = $1 AND material_id = $2 AND type = $3
		ORDER BY created_at LIMIT 1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, referenceID, materialID, string(movementType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, classify("find movement", err)
	}
	return m, nil
}

// ListByMaterial lista movimientos de un material en un rango de fechas, más recientes primero.
func (r *MovementRepo) ListByMaterial(ctx context.Context, materialID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE material_id = $1`
	args := []any{materialID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by material: %w", err)
	}
	defer rows.Close()
	list := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *MovementRepo) SumByMaterial(ctx context.Context, materialID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE material_id = $1`, materialID).Scan(&sum)
	if err != nil {
		return decimal.Zero, classify("sum movements", err)
	}
	return sum, nil
}

func (r *MovementRepo) SumByReference(ctx context.Context, referenceID, materialID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_movements WHERE reference_id = $1 AND material_id = $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, referenceID, materialID).Scan(&sum); err != nil {
		return decimal.Zero, classify("sum movements by reference", err)
	}
	return sum, nil
}
