package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const orderColumns = `id, date, supplier_id, material_id, quantity, status, notes, created_at`

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func scanOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var o entity.PurchaseOrder
	var notes *string
	if err := row.Scan(&o.ID, &o.Date, &o.SupplierID, &o.MaterialID, &o.Quantity, &o.Status, &notes, &o.CreatedAt); err != nil {
		return nil, err
	}
	if notes != nil {
		o.Notes = *notes
	}
	return &o, nil
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	var notes *string
	if o.Notes != "" {
		notes = &o.Notes
	}
	_, err := r.q.Exec(ctx, query, o.ID, o.Date, o.SupplierID, o.MaterialID, o.Quantity, o.Status, notes, o.CreatedAt)
	return classify("create purchase order", err)
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetForUpdate usar dentro de una transacción: serializa el recálculo de estado de un mismo pedido.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+orderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, classify("get purchase order", err)
	}
	return o, nil
}

// ListActive pedidos no cancelados.
func (r *PurchaseOrderRepo) ListActive(ctx context.Context) ([]*entity.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE status <> $1 ORDER BY date, id`
	rows, err := r.q.Query(ctx, query, entity.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return classify("update purchase order status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pedido %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
