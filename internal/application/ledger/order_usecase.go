package ledger

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/ledger"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

// OrderUseCase pedidos de compra y sus proyecciones de lectura (cumplimiento y saldo por proveedor).
// Las proyecciones se calculan desde entregas + pedidos, nunca desde el libro de movimientos.
type OrderUseCase struct {
	orders     repository.PurchaseOrderRepository
	deliveries repository.DeliveryRepository
	materials  repository.MaterialRepository
	suppliers  repository.SupplierRepository
	now        func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	orders repository.PurchaseOrderRepository,
	deliveries repository.DeliveryRepository,
	materials repository.MaterialRepository,
	suppliers repository.SupplierRepository,
) *OrderUseCase {
	return &OrderUseCase{
		orders:     orders,
		deliveries: deliveries,
		materials:  materials,
		suppliers:  suppliers,
		now:        time.Now,
	}
}

// Create registra un compromiso de compra.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	const op = "order.create"
	if strings.TrimSpace(in.SupplierID) == "" || strings.TrimSpace(in.MaterialID) == "" {
		return nil, domain.NewValidationError(op, "supplier_id y material_id son requeridos")
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.NewValidationError(op, "quantity debe ser mayor que cero")
	}
	if err := checkScale(op, "quantity", in.Quantity); err != nil {
		return nil, err
	}
	supplier, err := uc.suppliers.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	if supplier == nil {
		return nil, domain.NewNotFoundError(op, "proveedor no encontrado")
	}
	material, err := uc.materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	if material == nil {
		return nil, domain.NewNotFoundError(op, "material no encontrado")
	}

	now := uc.now()
	date := now
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	order := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		Date:       date,
		SupplierID: supplier.ID,
		MaterialID: material.ID,
		Quantity:   in.Quantity,
		Status:     entity.OrderStatusOpen,
		Notes:      in.Notes,
		CreatedAt:  now,
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	return toPurchaseOrderResponse(order), nil
}

// Cancel marca el pedido como cancelado; deja de aparecer en listados abiertos y rechaza entregas nuevas.
func (uc *OrderUseCase) Cancel(ctx context.Context, id string) error {
	const op = "order.cancel"
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return domain.NewPersistenceError(op, err)
	}
	if order == nil {
		return domain.NewNotFoundError(op, "pedido de compra no encontrado")
	}
	if order.IsCancelled() {
		return nil
	}
	if err := uc.orders.UpdateStatus(ctx, order.ID, entity.OrderStatusCancelled); err != nil {
		return domain.NewPersistenceError(op, err)
	}
	return nil
}

// ListOpen devuelve los pedidos con pendiente por entregar, ordenados por fecha.
func (uc *OrderUseCase) ListOpen(ctx context.Context) ([]dto.OrderView, error) {
	const op = "order.list_open"
	orders, err := uc.orders.ListActive(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	if len(orders) == 0 {
		return []dto.OrderView{}, nil
	}

	orderIDs := make([]string, 0, len(orders))
	materialIDs := make([]string, 0, len(orders))
	supplierIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
		materialIDs = append(materialIDs, o.MaterialID)
		supplierIDs = append(supplierIDs, o.SupplierID)
	}

	// Entregas y directorios en paralelo: son lecturas independientes.
	var (
		deliveries []*entity.Delivery
		materials  []*entity.Material
		suppliers  []*entity.Supplier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		deliveries, err = uc.deliveries.ListByOrders(gctx, orderIDs)
		return err
	})
	g.Go(func() error {
		var err error
		materials, err = uc.materials.ListByIDs(gctx, unique(materialIDs))
		return err
	})
	g.Go(func() error {
		var err error
		suppliers, err = uc.suppliers.ListByIDs(gctx, unique(supplierIDs))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}

	byOrder := make(map[string][]*entity.Delivery, len(orders))
	for _, d := range deliveries {
		byOrder[d.OrderID] = append(byOrder[d.OrderID], d)
	}
	materialByID := make(map[string]*entity.Material, len(materials))
	for _, m := range materials {
		materialByID[m.ID] = m
	}
	supplierByID := make(map[string]*entity.Supplier, len(suppliers))
	for _, s := range suppliers {
		supplierByID[s.ID] = s
	}

	views := make([]dto.OrderView, 0, len(orders))
	for _, o := range orders {
		f := ledger.Fulfill(o, byOrder[o.ID])
		if f.Status != entity.OrderStatusOpen {
			continue
		}
		v := dto.OrderView{
			OrderID:       o.ID,
			Date:          o.Date,
			SupplierID:    o.SupplierID,
			MaterialID:    o.MaterialID,
			Quantity:      o.Quantity,
			Delivered:     f.Delivered,
			Remaining:     f.Remaining,
			Status:        f.Status,
			DeliveryCount: f.DeliveryCount,
		}
		if m, ok := materialByID[o.MaterialID]; ok {
			v.MaterialName = m.Name
			v.Unit = m.Unit
		}
		if s, ok := supplierByID[o.SupplierID]; ok {
			v.SupplierName = s.Name
		}
		views = append(views, v)
	}
	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].Date.Equal(views[j].Date) {
			return views[i].Date.Before(views[j].Date)
		}
		return views[i].OrderID < views[j].OrderID
	})
	return views, nil
}

// SupplierBalances agrupa los pedidos abiertos por proveedor, mayor pendiente primero.
func (uc *OrderUseCase) SupplierBalances(ctx context.Context) ([]dto.SupplierBalanceResponse, error) {
	views, err := uc.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	open := make([]ledger.OpenOrder, 0, len(views))
	for _, v := range views {
		open = append(open, ledger.OpenOrder{
			OrderID:      v.OrderID,
			SupplierID:   v.SupplierID,
			SupplierName: v.SupplierName,
			MaterialID:   v.MaterialID,
			MaterialName: v.MaterialName,
			Quantity:     v.Quantity,
			Delivered:    v.Delivered,
			Remaining:    v.Remaining,
		})
	}
	balances := ledger.AggregateSupplierBalances(open)
	out := make([]dto.SupplierBalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.SupplierBalanceResponse{
			SupplierID:     b.SupplierID,
			SupplierName:   b.SupplierName,
			Quantity:       b.Quantity,
			Delivered:      b.Delivered,
			Remaining:      b.Remaining,
			OpenOrderCount: b.OpenOrderCount,
			Materials:      b.Materials,
		})
	}
	return out, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
