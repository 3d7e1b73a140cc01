package repository

import (
	"context"

	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
)

// MaterialRepository define el puerto de lectura del directorio de materiales (DIP).
// El saldo se modifica solo vía StockAccountRepository.
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Material, error)
	List(ctx context.Context) ([]*entity.Material, error)
}
