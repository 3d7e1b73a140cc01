package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionRecord registro de producción: salida de producto terminado y, opcionalmente,
// consumo de materia prima. Cada registro debe tener un movimiento por material afectado.
type ProductionRecord struct {
	ID                string
	Date              time.Time
	ProductMaterialID string
	QuantityProduced  decimal.Decimal
	RawMaterialID     string // vacío si no hubo consumo registrado
	QuantityConsumed  decimal.Decimal
	Notes             string
	CreatedAt         time.Time
}

// HasConsumption indica si el registro consume materia prima.
func (p *ProductionRecord) HasConsumption() bool {
	return p.RawMaterialID != "" && p.QuantityConsumed.GreaterThan(decimal.Zero)
}
