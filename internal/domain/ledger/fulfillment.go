// Package ledger contiene los servicios de dominio puros del libro de abastecimiento:
// cálculo de cumplimiento de pedidos y agregación de saldos por proveedor.
package ledger

import (
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Epsilon tolerancia (en la unidad de medida) que absorbe el ruido de pesajes repetidos.
var Epsilon = decimal.RequireFromString("0.1")

// OrderFulfillment proyección de lectura del cumplimiento de un pedido.
type OrderFulfillment struct {
	Delivered     decimal.Decimal
	Remaining     decimal.Decimal
	Status        string
	DeliveryCount int
}

// Fulfill calcula entregado, pendiente y estado de un pedido a partir de sus entregas.
// Solo cuenta WeightMeasured; WeightFiscal no participa.
// Un pedido cancelado conserva su estado aunque tenga pendiente.
func Fulfill(order *entity.PurchaseOrder, deliveries []*entity.Delivery) OrderFulfillment {
	delivered := decimal.Zero
	count := 0
	for _, d := range deliveries {
		if d == nil || d.OrderID != order.ID {
			continue
		}
		delivered = delivered.Add(d.WeightMeasured)
		count++
	}
	remaining := Remaining(order.Quantity, delivered)
	status := StatusFor(remaining)
	if order.IsCancelled() {
		status = entity.OrderStatusCancelled
	}
	return OrderFulfillment{
		Delivered:     delivered,
		Remaining:     remaining,
		Status:        status,
		DeliveryCount: count,
	}
}

// Remaining = max(0, quantity - delivered).
func Remaining(quantity, delivered decimal.Decimal) decimal.Decimal {
	r := quantity.Sub(delivered)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// StatusFor devuelve open mientras el pendiente alcance el epsilon; por debajo el pedido se da por cumplido.
// Con remaining == 0.1 exacto el pedido sigue abierto.
func StatusFor(remaining decimal.Decimal) string {
	if remaining.GreaterThanOrEqual(Epsilon) {
		return entity.OrderStatusOpen
	}
	return entity.OrderStatusCompleted
}
