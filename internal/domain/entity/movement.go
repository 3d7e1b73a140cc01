package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de stock.
type MovementType string

// Tipos de movimiento. Los códigos de producción y venta los publican módulos externos.
const (
	MovementPurchaseInbound       MovementType = "compra_entrada" // alta de entrega
	MovementPurchaseCorrection    MovementType = "compra_ajuste"  // corrección de peso medido (delta)
	MovementPurchaseReversal      MovementType = "compra_estorno" // baja de entrega
	MovementProductionInbound     MovementType = "producao_entrada"
	MovementProductionConsumption MovementType = "producao_consumo"
	MovementSaleOutbound          MovementType = "venda_saida"
	MovementAdjustment            MovementType = "ajuste"
)

// Valid indica si el tipo es conocido.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchaseInbound, MovementPurchaseCorrection, MovementPurchaseReversal,
		MovementProductionInbound, MovementProductionConsumption, MovementSaleOutbound,
		MovementAdjustment:
		return true
	}
	return false
}

// Direction devuelve +1 para entradas, -1 para salidas y 0 para tipos con signo libre (ajustes).
func (t MovementType) Direction() int {
	switch t {
	case MovementPurchaseInbound, MovementProductionInbound:
		return 1
	case MovementPurchaseReversal, MovementProductionConsumption, MovementSaleOutbound:
		return -1
	}
	return 0
}

// Keyed indica si (ReferenceID, MaterialID, Type) es único para este tipo:
// como máximo un movimiento por evento de origen y material.
func (t MovementType) Keyed() bool {
	return t.Direction() != 0
}

// Movement registro inmutable de un cambio de stock. Quantity con signo: positivo entrada, negativo salida.
type Movement struct {
	ID          string
	MaterialID  string
	Quantity    decimal.Decimal
	Type        MovementType
	ReferenceID string // entrega, registro de producción, venta...
	Date        time.Time
	Notes       string
	CreatedAt   time.Time
}
