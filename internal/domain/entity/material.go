package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa una materia prima o producto con saldo de stock (tabla materials).
// CurrentStock solo cambia vía la cuenta de stock (movimientos), nunca por edición directa.
type Material struct {
	ID            string
	Name          string
	Unit          string // unidad de medida (kg, t, m3...)
	CurrentStock  decimal.Decimal
	MinStockAlert *decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BelowMinimum indica si el saldo está por debajo de la alerta configurada.
func (m *Material) BelowMinimum() bool {
	if m.MinStockAlert == nil {
		return false
	}
	return m.CurrentStock.LessThan(*m.MinStockAlert)
}
