package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

const deliveryColumns = `d.id, d.order_id, d.plate, d.weight_measured, d.weight_fiscal, d.driver_name, d.date, d.created_at, d.updated_at`

// DeliveryRepo implementación de DeliveryRepository sobre PostgreSQL (usable con pool o tx).
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

func scanDelivery(row pgx.Row) (*entity.Delivery, error) {
	var d entity.Delivery
	var driver *string
	if err := row.Scan(&d.ID, &d.OrderID, &d.Plate, &d.WeightMeasured, &d.WeightFiscal, &driver, &d.Date, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if driver != nil {
		d.DriverName = *driver
	}
	return &d, nil
}

func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	query := `
		INSERT INTO deliveries (id, order_id, plate, weight_measured, weight_fiscal, driver_name, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, d.ID, d.OrderID, d.Plate, d.WeightMeasured, d.WeightFiscal, nullable(d.DriverName), d.Date, d.CreatedAt, d.UpdatedAt)
	return classify("create delivery", err)
}

func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.get(ctx, `SELECT `+deliveryColumns+` FROM deliveries d WHERE d.id = $1`, id)
}

// GetForUpdate obtiene la entrega y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *DeliveryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.get(ctx, `SELECT `+deliveryColumns+` FROM deliveries d WHERE d.id = $1 FOR UPDATE`, id)
}

func (r *DeliveryRepo) get(ctx context.Context, query, id string) (*entity.Delivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, classify("get delivery", err)
	}
	return d, nil
}

func (r *DeliveryRepo) Update(ctx context.Context, d *entity.Delivery) error {
	query := `
		UPDATE deliveries
		SET plate = $2, weight_measured = $3, weight_fiscal = $4, driver_name = $5, date = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, d.ID, d.Plate, d.WeightMeasured, d.WeightFiscal, nullable(d.DriverName), d.Date, d.UpdatedAt)
	if err != nil {
		return classify("update delivery", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("entrega %s: %w", d.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *DeliveryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	return classify("delete delivery", err)
}

func (r *DeliveryRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.Delivery, error) {
	return r.list(ctx, `SELECT `+deliveryColumns+` FROM deliveries d WHERE d.order_id = $1 ORDER BY d.date, d.id`, orderID)
}

func (r *DeliveryRepo) ListByOrders(ctx context.Context, orderIDs []string) ([]*entity.Delivery, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+deliveryColumns+` FROM deliveries d WHERE d.order_id = ANY($1) ORDER BY d.date, d.id`, orderIDs)
}

// ListByMaterial entregas de todos los pedidos (incluidos cancelados) del material.
func (r *DeliveryRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.Delivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM deliveries d JOIN purchase_orders o ON o.id = d.order_id
		WHERE o.material_id = $1
		ORDER BY d.date, d.id`
	return r.list(ctx, query, materialID)
}

func (r *DeliveryRepo) SumMeasuredByOrder(ctx context.Context, orderID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(weight_measured), 0) FROM deliveries WHERE order_id = $1`, orderID).Scan(&sum)
	if err != nil {
		return decimal.Zero, classify("sum delivered", err)
	}
	return sum, nil
}

func (r *DeliveryRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Delivery, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()
	var list []*entity.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
