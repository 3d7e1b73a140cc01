package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDeliveryRequest body para POST /api/deliveries.
type CreateDeliveryRequest struct {
	OrderID        string           `json:"order_id" validate:"required"`
	Plate          string           `json:"plate" validate:"required"`
	WeightMeasured decimal.Decimal  `json:"weight_measured" validate:"gt=0"`
	WeightFiscal   *decimal.Decimal `json:"weight_fiscal,omitempty" validate:"omitempty,gte=0"`
	DriverName     string           `json:"driver_name"`
	Date           *time.Time       `json:"date,omitempty"`
}

// UpdateDeliveryRequest body para PATCH /api/deliveries/:id. Campos nil = sin cambio.
// ClearWeightFiscal vuelve el peso fiscal a null.
type UpdateDeliveryRequest struct {
	Plate             *string          `json:"plate,omitempty" validate:"omitempty,min=1"`
	WeightMeasured    *decimal.Decimal `json:"weight_measured,omitempty" validate:"omitempty,gt=0"`
	WeightFiscal      *decimal.Decimal `json:"weight_fiscal,omitempty" validate:"omitempty,gte=0"`
	ClearWeightFiscal bool             `json:"clear_weight_fiscal,omitempty"`
	DriverName        *string          `json:"driver_name,omitempty"`
	Date              *time.Time       `json:"date,omitempty"`
}

// DeliveryResponse entrega con la divergencia medida-fiscal (solo informativa).
type DeliveryResponse struct {
	ID             string           `json:"id"`
	OrderID        string           `json:"order_id"`
	Plate          string           `json:"plate"`
	WeightMeasured decimal.Decimal  `json:"weight_measured"`
	WeightFiscal   *decimal.Decimal `json:"weight_fiscal"`
	Divergence     *decimal.Decimal `json:"divergence"`
	DriverName     string           `json:"driver_name"`
	Date           time.Time        `json:"date"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
