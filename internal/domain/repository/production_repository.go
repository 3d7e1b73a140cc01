package repository

import (
	"context"

	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

// ProductionRepository define el puerto de persistencia para registros de producción.
type ProductionRepository interface {
	Create(ctx context.Context, record *entity.ProductionRecord) error
	GetByID(ctx context.Context, id string) (*entity.ProductionRecord, error)
	ListByProductMaterial(ctx context.Context, materialID string) ([]*entity.ProductionRecord, error)
	ListByRawMaterial(ctx context.Context, materialID string) ([]*entity.ProductionRecord, error)
}
