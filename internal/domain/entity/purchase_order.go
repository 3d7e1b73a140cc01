package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido de compra.
const (
	OrderStatusOpen      = "open"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// PurchaseOrder compromiso de un proveedor de entregar Quantity unidades de MaterialID.
// Inmutable tras la creación salvo Status.
type PurchaseOrder struct {
	ID         string
	Date       time.Time
	SupplierID string
	MaterialID string
	Quantity   decimal.Decimal // cantidad contratada
	Status     string
	Notes      string
	CreatedAt  time.Time
}

// IsCancelled indica si el pedido fue cancelado por un operador.
func (o *PurchaseOrder) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}
