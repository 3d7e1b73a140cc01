package repository

import (
	"context"

	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para pedidos de compra (DIP).
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate bloquea la fila del pedido hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// ListActive devuelve los pedidos no cancelados.
	ListActive(ctx context.Context) ([]*entity.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
