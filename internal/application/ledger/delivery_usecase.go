package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/ledger"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// DeliveryConfig opciones del registro de entregas.
type DeliveryConfig struct {
	// DivergenceAlertPct umbral (%) de |medido - fiscal| / medido que genera un aviso en el log. 0 = deshabilitado.
	DivergenceAlertPct decimal.Decimal
}

// DeliveryUseCase registro de entregas: cada escritura va en la misma transacción que su
// movimiento y el incremento atómico de la cuenta de stock.
type DeliveryUseCase struct {
	txRunner   TxRunner
	orders     repository.PurchaseOrderRepository
	deliveries repository.DeliveryRepository
	log        zerolog.Logger
	cfg        DeliveryConfig
	now        func() time.Time
}

// NewDeliveryUseCase construye el caso de uso.
func NewDeliveryUseCase(
	txRunner TxRunner,
	orders repository.PurchaseOrderRepository,
	deliveries repository.DeliveryRepository,
	log zerolog.Logger,
	cfg DeliveryConfig,
) *DeliveryUseCase {
	return &DeliveryUseCase{
		txRunner:   txRunner,
		orders:     orders,
		deliveries: deliveries,
		log:        log,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Create registra un pesaje: movimiento compra_entrada por WeightMeasured, incremento de stock
// y la fila de la entrega, todo en una transacción.
func (uc *DeliveryUseCase) Create(ctx context.Context, in dto.CreateDeliveryRequest) (*dto.DeliveryResponse, error) {
	const op = "delivery.create"
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, domain.NewValidationError(op, "order_id es requerido")
	}
	if strings.TrimSpace(in.Plate) == "" {
		return nil, domain.NewValidationError(op, "plate es requerido")
	}
	if !in.WeightMeasured.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError(op, "weight_measured debe ser mayor que cero")
	}
	if in.WeightFiscal != nil && in.WeightFiscal.IsNegative() {
		return nil, domain.NewValidationError(op, "weight_fiscal no puede ser negativo")
	}
	if err := checkScales(op, map[string]*decimal.Decimal{
		"weight_measured": &in.WeightMeasured,
		"weight_fiscal":   in.WeightFiscal,
	}); err != nil {
		return nil, err
	}

	order, err := uc.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	if order == nil {
		return nil, domain.NewNotFoundError(op, "pedido de compra no encontrado")
	}
	if order.IsCancelled() {
		return nil, domain.NewValidationError(op, "el pedido de compra está cancelado")
	}

	now := uc.now()
	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	d := &entity.Delivery{
		ID:             uuid.New().String(),
		OrderID:        order.ID,
		Plate:          strings.ToUpper(strings.TrimSpace(in.Plate)),
		WeightMeasured: in.WeightMeasured,
		WeightFiscal:   in.WeightFiscal,
		DriverName:     strings.TrimSpace(in.DriverName),
		Date:           date,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = uc.txRunner.Run(ctx, func(ctx context.Context, r TxRepos) error {
		mov := &entity.Movement{
			MaterialID:  order.MaterialID,
			Quantity:    d.WeightMeasured,
			Type:        entity.MovementPurchaseInbound,
			ReferenceID: d.ID,
			Date:        d.Date,
			Notes:       fmt.Sprintf("entrega placa %s pedido %s", d.Plate, order.ID),
			CreatedAt:   now,
		}
		if _, err := post(ctx, r, mov); err != nil {
			return err
		}
		if err := r.Deliveries.Create(ctx, d); err != nil {
			return err
		}
		return syncOrderStatus(ctx, r, order.ID)
	})
	if err != nil {
		return nil, wrapTx(op, err)
	}

	uc.checkDivergence(d)
	return toDeliveryResponse(d), nil
}

// Update corrige una entrega. Un cambio de WeightMeasured se registra como movimiento compra_ajuste
// por el delta (nuevo - anterior); cambios de peso fiscal, placa, conductor o fecha no tocan el stock.
func (uc *DeliveryUseCase) Update(ctx context.Context, id string, in dto.UpdateDeliveryRequest) (*dto.DeliveryResponse, error) {
	const op = "delivery.update"
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError(op, "id es requerido")
	}
	if in.Plate != nil && strings.TrimSpace(*in.Plate) == "" {
		return nil, domain.NewValidationError(op, "plate no puede quedar vacío")
	}
	if in.WeightMeasured != nil && !in.WeightMeasured.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError(op, "weight_measured debe ser mayor que cero")
	}
	if in.WeightFiscal != nil && in.WeightFiscal.IsNegative() {
		return nil, domain.NewValidationError(op, "weight_fiscal no puede ser negativo")
	}
	if in.WeightFiscal != nil && in.ClearWeightFiscal {
		return nil, domain.NewValidationError(op, "weight_fiscal y clear_weight_fiscal son excluyentes")
	}
	if err := checkScales(op, map[string]*decimal.Decimal{
		"weight_measured": in.WeightMeasured,
		"weight_fiscal":   in.WeightFiscal,
	}); err != nil {
		return nil, err
	}

	now := uc.now()
	var updated *entity.Delivery
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r TxRepos) error {
		d, err := r.Deliveries.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NewNotFoundError(op, "entrega no encontrada")
		}
		order, err := r.Orders.GetByID(ctx, d.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NewNotFoundError(op, "pedido de compra no encontrado")
		}

		previous := d.WeightMeasured
		if in.Plate != nil {
			d.Plate = strings.ToUpper(strings.TrimSpace(*in.Plate))
		}
		if in.DriverName != nil {
			d.DriverName = strings.TrimSpace(*in.DriverName)
		}
		if in.Date != nil && !in.Date.IsZero() {
			d.Date = *in.Date
		}
		if in.WeightFiscal != nil {
			fiscal := *in.WeightFiscal
			d.WeightFiscal = &fiscal
		}
		if in.ClearWeightFiscal {
			d.WeightFiscal = nil
		}

		measuredChanged := in.WeightMeasured != nil && !in.WeightMeasured.Equal(previous)
		if measuredChanged {
			d.WeightMeasured = *in.WeightMeasured
			mov := &entity.Movement{
				MaterialID:  order.MaterialID,
				Quantity:    d.WeightMeasured.Sub(previous),
				Type:        entity.MovementPurchaseCorrection,
				ReferenceID: d.ID,
				Date:        now,
				Notes:       fmt.Sprintf("corrección de peso medido %s -> %s", previous, d.WeightMeasured),
				CreatedAt:   now,
			}
			if _, err := post(ctx, r, mov); err != nil {
				return err
			}
		}

		d.UpdatedAt = now
		if err := r.Deliveries.Update(ctx, d); err != nil {
			return err
		}
		if measuredChanged {
			if err := syncOrderStatus(ctx, r, order.ID); err != nil {
				return err
			}
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, wrapTx(op, err)
	}

	uc.checkDivergence(updated)
	return toDeliveryResponse(updated), nil
}

// Delete elimina una entrega registrando antes el movimiento compensatorio compra_estorno
// por -WeightMeasured. Si algún paso falla no se elimina nada.
func (uc *DeliveryUseCase) Delete(ctx context.Context, id string) error {
	const op = "delivery.delete"
	if strings.TrimSpace(id) == "" {
		return domain.NewValidationError(op, "id es requerido")
	}
	now := uc.now()
	err := uc.txRunner.Run(ctx, func(ctx context.Context, r TxRepos) error {
		d, err := r.Deliveries.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NewNotFoundError(op, "entrega no encontrada")
		}
		order, err := r.Orders.GetByID(ctx, d.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NewNotFoundError(op, "pedido de compra no encontrado")
		}
		mov := &entity.Movement{
			MaterialID:  order.MaterialID,
			Quantity:    d.WeightMeasured.Neg(),
			Type:        entity.MovementPurchaseReversal,
			ReferenceID: d.ID,
			Date:        now,
			Notes:       fmt.Sprintf("baja de entrega placa %s", d.Plate),
			CreatedAt:   now,
		}
		if _, err := post(ctx, r, mov); err != nil {
			return err
		}
		if err := r.Deliveries.Delete(ctx, d.ID); err != nil {
			return err
		}
		return syncOrderStatus(ctx, r, order.ID)
	})
	return wrapTx(op, err)
}

// ListByOrder lista las entregas de un pedido ordenadas por fecha.
func (uc *DeliveryUseCase) ListByOrder(ctx context.Context, orderID string) ([]dto.DeliveryResponse, error) {
	const op = "delivery.list"
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	if order == nil {
		return nil, domain.NewNotFoundError(op, "pedido de compra no encontrado")
	}
	list, err := uc.deliveries.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.Before(list[j].Date) })
	out := make([]dto.DeliveryResponse, 0, len(list))
	for _, d := range list {
		out = append(out, *toDeliveryResponse(d))
	}
	return out, nil
}

// checkDivergence avisa en el log cuando medido y fiscal difieren más que el umbral.
// Es solo informativo: nunca corrige stock ni pendiente.
func (uc *DeliveryUseCase) checkDivergence(d *entity.Delivery) {
	if d == nil || !uc.cfg.DivergenceAlertPct.GreaterThan(decimal.Zero) {
		return
	}
	div := d.Divergence()
	if div == nil || d.WeightMeasured.IsZero() {
		return
	}
	pct := div.Abs().Div(d.WeightMeasured).Mul(hundred)
	if pct.GreaterThan(uc.cfg.DivergenceAlertPct) {
		uc.log.Warn().
			Str("delivery_id", d.ID).
			Str("order_id", d.OrderID).
			Str("weight_measured", d.WeightMeasured.String()).
			Str("weight_fiscal", d.WeightFiscal.String()).
			Str("divergence_pct", pct.StringFixed(2)).
			Msg("divergencia entre peso medido y fiscal sobre el umbral")
	}
}

// syncOrderStatus recalcula el estado almacenado del pedido con las entregas de la transacción.
// Bloquea la fila del pedido antes de sumar para que dos entregas concurrentes no dejen un estado viejo.
// Un pedido cancelado no se toca.
func syncOrderStatus(ctx context.Context, r TxRepos, orderID string) error {
	order, err := r.Orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil || order.IsCancelled() {
		return nil
	}
	delivered, err := r.Deliveries.SumMeasuredByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	status := ledger.StatusFor(ledger.Remaining(order.Quantity, delivered))
	if status == order.Status {
		return nil
	}
	return r.Orders.UpdateStatus(ctx, orderID, status)
}
