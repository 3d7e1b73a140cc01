package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

var (
	_ repository.MaterialRepository      = (*MaterialRepo)(nil)
	_ repository.SupplierRepository      = (*SupplierRepo)(nil)
	_ repository.StockAccountRepository  = (*StockAccountRepo)(nil)
	_ repository.MovementRepository      = (*MovementRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.DeliveryRepository      = (*DeliveryRepo)(nil)
	_ repository.ProductionRepository    = (*ProductionRepo)(nil)
)

// MaterialRepo directorio de materiales.
type MaterialRepo struct{ base }

func (r *MaterialRepo) Create(_ context.Context, m *entity.Material) error {
	defer r.lock()()
	if _, ok := r.s.st.materials[m.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.st.materials[m.ID] = *m
	return nil
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	defer r.lock()()
	m, ok := r.s.st.materials[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MaterialRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Material, error) {
	defer r.lock()()
	var out []*entity.Material
	for _, id := range ids {
		if m, ok := r.s.st.materials[id]; ok {
			out = append(out, &m)
		}
	}
	return out, nil
}

func (r *MaterialRepo) List(_ context.Context) ([]*entity.Material, error) {
	defer r.lock()()
	out := make([]*entity.Material, 0, len(r.s.st.materials))
	for _, m := range r.s.st.materials {
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SupplierRepo directorio de proveedores.
type SupplierRepo struct{ base }

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	defer r.lock()()
	if _, ok := r.s.st.suppliers[s.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.st.suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	defer r.lock()()
	s, ok := r.s.st.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SupplierRepo) ListByIDs(_ context.Context, ids []string) ([]*entity.Supplier, error) {
	defer r.lock()()
	var out []*entity.Supplier
	for _, id := range ids {
		if s, ok := r.s.st.suppliers[id]; ok {
			out = append(out, &s)
		}
	}
	return out, nil
}

// StockAccountRepo cuenta de stock sobre el mapa de materiales.
type StockAccountRepo struct{ base }

func (r *StockAccountRepo) ApplyDelta(_ context.Context, materialID string, delta decimal.Decimal) (decimal.Decimal, error) {
	defer r.lock()()
	if err := r.fail("stock.apply_delta"); err != nil {
		return decimal.Zero, err
	}
	m, ok := r.s.st.materials[materialID]
	if !ok {
		return decimal.Zero, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}
	m.CurrentStock = m.CurrentStock.Add(delta)
	m.UpdatedAt = time.Now()
	r.s.st.materials[m.ID] = m
	return m.CurrentStock, nil
}

func (r *StockAccountRepo) GetBalance(_ context.Context, materialID string) (decimal.Decimal, error) {
	defer r.lock()()
	m, ok := r.s.st.materials[materialID]
	if !ok {
		return decimal.Zero, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}
	return m.CurrentStock, nil
}

func (r *StockAccountRepo) Snapshot(_ context.Context, materialID string) (decimal.Decimal, decimal.Decimal, error) {
	defer r.lock()()
	m, ok := r.s.st.materials[materialID]
	if !ok {
		return decimal.Zero, decimal.Zero, fmt.Errorf("material %s: %w", materialID, domain.ErrNotFound)
	}
	sum := decimal.Zero
	for _, mv := range r.s.st.movements {
		if mv.MaterialID == materialID {
			sum = sum.Add(mv.Quantity)
		}
	}
	return m.CurrentStock, sum, nil
}

// MovementRepo libro de movimientos (solo inserción).
type MovementRepo struct{ base }

func (r *MovementRepo) Append(_ context.Context, m *entity.Movement) error {
	defer r.lock()()
	if err := r.fail("movements.append"); err != nil {
		return err
	}
	if _, ok := r.s.st.materials[m.MaterialID]; !ok {
		return fmt.Errorf("material %s: %w", m.MaterialID, domain.ErrNotFound)
	}
	if m.Type.Keyed() {
		for _, existing := range r.s.st.movements {
			if existing.Type == m.Type && existing.ReferenceID == m.ReferenceID && existing.MaterialID == m.MaterialID {
				return fmt.Errorf("movimiento %s/%s/%s: %w", m.ReferenceID, m.MaterialID, m.Type, domain.ErrDuplicate)
			}
		}
	}
	r.s.st.movements = append(r.s.st.movements, *m)
	return nil
}

func (r *MovementRepo) ExistsFor(_ context.Context, referenceID, materialID string, types ...entity.MovementType) (bool, error) {
	defer r.lock()()
	for _, m := range r.s.st.movements {
		if m.ReferenceID != referenceID || m.MaterialID != materialID {
			continue
		}
		if len(types) == 0 {
			return true, nil
		}
		for _, t := range types {
			if m.Type == t {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *MovementRepo) FindByKey(_ context.Context, referenceID, materialID string, movementType entity.MovementType) (*entity.Movement, error) {
	defer r.lock()()
	for _, m := range r.s.st.movements {
		if m.ReferenceID == referenceID && m.MaterialID == materialID && m.Type == movementType {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) ListByMaterial(_ context.Context, materialID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	defer r.lock()()
	var list []*entity.Movement
	for _, m := range r.s.st.movements {
		if m.MaterialID != materialID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		m := m
		list = append(list, &m)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	if offset >= len(list) {
		return []*entity.Movement{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}

func (r *MovementRepo) SumByMaterial(_ context.Context, materialID string) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, m := range r.s.st.movements {
		if m.MaterialID == materialID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

func (r *MovementRepo) SumByReference(_ context.Context, referenceID, materialID string) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, m := range r.s.st.movements {
		if m.ReferenceID == referenceID && m.MaterialID == materialID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

// PurchaseOrderRepo pedidos de compra.
type PurchaseOrderRepo struct{ base }

func (r *PurchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.lock()()
	if _, ok := r.s.st.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.st.orders[o.ID] = *o
	return nil
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	defer r.lock()()
	o, ok := r.s.st.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// GetForUpdate las transacciones en memoria ya son serializables.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseOrderRepo) ListActive(_ context.Context) ([]*entity.PurchaseOrder, error) {
	defer r.lock()()
	var out []*entity.PurchaseOrder
	for _, o := range r.s.st.orders {
		if o.IsCancelled() {
			continue
		}
		o := o
		out = append(out, &o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PurchaseOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	defer r.lock()()
	if err := r.fail("orders.update_status"); err != nil {
		return err
	}
	o, ok := r.s.st.orders[id]
	if !ok {
		return fmt.Errorf("pedido %s: %w", id, domain.ErrNotFound)
	}
	o.Status = status
	// La clave sale del valor almacenado: id puede apuntar a un búfer que el llamador reutiliza.
	r.s.st.orders[o.ID] = o
	return nil
}

// DeliveryRepo entregas.
type DeliveryRepo struct{ base }

func copyDelivery(d entity.Delivery) entity.Delivery {
	if d.WeightFiscal != nil {
		f := *d.WeightFiscal
		d.WeightFiscal = &f
	}
	return d
}

func (r *DeliveryRepo) Create(_ context.Context, d *entity.Delivery) error {
	defer r.lock()()
	if err := r.fail("deliveries.create"); err != nil {
		return err
	}
	if _, ok := r.s.st.orders[d.OrderID]; !ok {
		return fmt.Errorf("pedido %s: %w", d.OrderID, domain.ErrNotFound)
	}
	r.s.st.deliveries[d.ID] = copyDelivery(*d)
	return nil
}

func (r *DeliveryRepo) GetByID(_ context.Context, id string) (*entity.Delivery, error) {
	defer r.lock()()
	d, ok := r.s.st.deliveries[id]
	if !ok {
		return nil, nil
	}
	c := copyDelivery(d)
	return &c, nil
}

// GetForUpdate equivale a GetByID: dentro de Run el mutex ya serializa.
func (r *DeliveryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	return r.GetByID(ctx, id)
}

func (r *DeliveryRepo) Update(_ context.Context, d *entity.Delivery) error {
	defer r.lock()()
	if err := r.fail("deliveries.update"); err != nil {
		return err
	}
	if _, ok := r.s.st.deliveries[d.ID]; !ok {
		return fmt.Errorf("entrega %s: %w", d.ID, domain.ErrNotFound)
	}
	r.s.st.deliveries[d.ID] = copyDelivery(*d)
	return nil
}

func (r *DeliveryRepo) Delete(_ context.Context, id string) error {
	defer r.lock()()
	if err := r.fail("deliveries.delete"); err != nil {
		return err
	}
	delete(r.s.st.deliveries, id)
	return nil
}

func (r *DeliveryRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.Delivery, error) {
	defer r.lock()()
	return r.filter(func(d entity.Delivery) bool { return d.OrderID == orderID }), nil
}

func (r *DeliveryRepo) ListByOrders(_ context.Context, orderIDs []string) ([]*entity.Delivery, error) {
	defer r.lock()()
	set := make(map[string]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		set[id] = struct{}{}
	}
	return r.filter(func(d entity.Delivery) bool { _, ok := set[d.OrderID]; return ok }), nil
}

func (r *DeliveryRepo) ListByMaterial(_ context.Context, materialID string) ([]*entity.Delivery, error) {
	defer r.lock()()
	return r.filter(func(d entity.Delivery) bool {
		o, ok := r.s.st.orders[d.OrderID]
		return ok && o.MaterialID == materialID
	}), nil
}

func (r *DeliveryRepo) SumMeasuredByOrder(_ context.Context, orderID string) (decimal.Decimal, error) {
	defer r.lock()()
	sum := decimal.Zero
	for _, d := range r.s.st.deliveries {
		if d.OrderID == orderID {
			sum = sum.Add(d.WeightMeasured)
		}
	}
	return sum, nil
}

// filter llamar con el mutex tomado. Resultado ordenado por fecha e ID.
func (r *DeliveryRepo) filter(keep func(entity.Delivery) bool) []*entity.Delivery {
	var out []*entity.Delivery
	for _, d := range r.s.st.deliveries {
		if keep(d) {
			c := copyDelivery(d)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ProductionRepo registros de producción.
type ProductionRepo struct{ base }

func (r *ProductionRepo) Create(_ context.Context, p *entity.ProductionRecord) error {
	defer r.lock()()
	if err := r.fail("production.create"); err != nil {
		return err
	}
	if _, ok := r.s.st.production[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.st.production[p.ID] = *p
	return nil
}

func (r *ProductionRepo) GetByID(_ context.Context, id string) (*entity.ProductionRecord, error) {
	defer r.lock()()
	p, ok := r.s.st.production[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductionRepo) ListByProductMaterial(_ context.Context, materialID string) ([]*entity.ProductionRecord, error) {
	defer r.lock()()
	return r.filter(func(p entity.ProductionRecord) bool { return p.ProductMaterialID == materialID }), nil
}

func (r *ProductionRepo) ListByRawMaterial(_ context.Context, materialID string) ([]*entity.ProductionRecord, error) {
	defer r.lock()()
	return r.filter(func(p entity.ProductionRecord) bool { return p.RawMaterialID == materialID }), nil
}

func (r *ProductionRepo) filter(keep func(entity.ProductionRecord) bool) []*entity.ProductionRecord {
	var out []*entity.ProductionRecord
	for _, p := range r.s.st.production {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
