package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID string          `json:"supplier_id" validate:"required"`
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity" validate:"gt=0"`
	Date       *time.Time      `json:"date,omitempty"`
	Notes      string          `json:"notes"`
}

// PurchaseOrderResponse pedido tal como fue registrado.
type PurchaseOrderResponse struct {
	ID         string          `json:"id"`
	Date       time.Time       `json:"date"`
	SupplierID string          `json:"supplier_id"`
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes"`
}

// OrderView pedido con su cumplimiento calculado (consumido por la balanza y el agregador).
type OrderView struct {
	OrderID       string          `json:"order_id"`
	Date          time.Time       `json:"date"`
	SupplierID    string          `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	MaterialID    string          `json:"material_id"`
	MaterialName  string          `json:"material_name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	Delivered     decimal.Decimal `json:"delivered_quantity"`
	Remaining     decimal.Decimal `json:"remaining_quantity"`
	Status        string          `json:"status"`
	DeliveryCount int             `json:"delivery_count"`
}

// SupplierBalanceResponse saldo pendiente por proveedor.
type SupplierBalanceResponse struct {
	SupplierID     string          `json:"supplier_id"`
	SupplierName   string          `json:"supplier_name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Delivered      decimal.Decimal `json:"delivered_quantity"`
	Remaining      decimal.Decimal `json:"remaining_quantity"`
	OpenOrderCount int             `json:"open_order_count"`
	Materials      []string        `json:"materials"`
}
