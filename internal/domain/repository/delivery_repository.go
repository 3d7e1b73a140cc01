package repository

import (
	"context"

	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DeliveryRepository define el puerto de persistencia para entregas (pesajes).
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.Delivery) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	// GetForUpdate obtiene la entrega y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error)
	Update(ctx context.Context, delivery *entity.Delivery) error
	Delete(ctx context.Context, id string) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.Delivery, error)
	ListByOrders(ctx context.Context, orderIDs []string) ([]*entity.Delivery, error)
	// ListByMaterial entregas de todos los pedidos del material.
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.Delivery, error)
	SumMeasuredByOrder(ctx context.Context, orderID string) (decimal.Decimal, error)
}
