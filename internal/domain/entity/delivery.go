package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery representa un pesaje físico contra un pedido de compra.
// WeightMeasured es el peso real (el que mueve stock); WeightFiscal es el peso de la nota fiscal,
// puede llegar después y nunca participa en el saldo ni en el pendiente del pedido.
type Delivery struct {
	ID             string
	OrderID        string
	Plate          string
	WeightMeasured decimal.Decimal
	WeightFiscal   *decimal.Decimal
	DriverName     string
	Date           time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Divergence devuelve WeightMeasured - WeightFiscal; nil mientras no hay peso fiscal.
func (d *Delivery) Divergence() *decimal.Decimal {
	if d.WeightFiscal == nil {
		return nil
	}
	div := d.WeightMeasured.Sub(*d.WeightFiscal)
	return &div
}
