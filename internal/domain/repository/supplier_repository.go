package repository

import (
	"context"

	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

// SupplierRepository define el puerto de lectura del directorio de proveedores (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Supplier, error)
}
