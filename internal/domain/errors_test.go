package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/abastecimiento-api/internal/domain"
)

func TestLedgerError_IsPorTipo(t *testing.T) {
	cause := errors.New("conexión cerrada")
	cases := []struct {
		err    error
		target error
	}{
		{domain.NewValidationError("delivery.create", "plate es requerido"), domain.ErrInvalidInput},
		{domain.NewNotFoundError("delivery.create", "pedido no encontrado"), domain.ErrNotFound},
		{domain.NewPersistenceError("delivery.create", cause), domain.ErrPersistence},
		{domain.NewConsistencyError("stock.verify", "difiere"), domain.ErrInconsistentStock},
	}
	for _, tc := range cases {
		wrapped := fmt.Errorf("handler: %w", tc.err)
		assert.ErrorIs(t, wrapped, tc.target)
		assert.NotErrorIs(t, wrapped, domain.ErrConflict)
	}
}

func TestLedgerError_UnwrapCausa(t *testing.T) {
	cause := fmt.Errorf("%w: serialization failure", domain.ErrTransient)
	err := domain.NewPersistenceError("movement.post", cause)

	assert.ErrorIs(t, err, domain.ErrTransient)
	le, ok := domain.AsLedgerError(err)
	assert.True(t, ok)
	assert.Equal(t, domain.KindPersistence, le.Kind)
	assert.Contains(t, err.Error(), "movement.post")
}

func TestErrRepairRunning_EsConflicto(t *testing.T) {
	assert.ErrorIs(t, domain.ErrRepairRunning, domain.ErrConflict)
}
