package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PostMovementRequest body para POST /api/movements (producción, ventas, ajustes).
// Para tipos con dirección (producao_entrada, producao_consumo, venda_saida) Quantity es la magnitud (> 0);
// para ajuste Quantity lleva signo.
type PostMovementRequest struct {
	MaterialID  string          `json:"material_id" validate:"required"`
	Type        string          `json:"type" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReferenceID string          `json:"reference_id"`
	Date        *time.Time      `json:"date,omitempty"`
	Notes       string          `json:"notes"`
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID          string          `json:"id"`
	MaterialID  string          `json:"material_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Type        string          `json:"type"`
	ReferenceID string          `json:"reference_id"`
	Date        time.Time       `json:"date"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	Replayed    bool            `json:"replayed,omitempty"` // el movimiento ya existía para la misma clave
}

// MovementListResponse historial paginado de un material.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RegisterProductionRequest body para POST /api/production.
type RegisterProductionRequest struct {
	ProductMaterialID string          `json:"product_material_id" validate:"required"`
	QuantityProduced  decimal.Decimal `json:"quantity_produced" validate:"gt=0"`
	RawMaterialID     string          `json:"raw_material_id,omitempty"`
	QuantityConsumed  decimal.Decimal `json:"quantity_consumed" validate:"gte=0"`
	Date              *time.Time      `json:"date,omitempty"`
	Notes             string          `json:"notes"`
}

// ProductionResponse registro de producción y sus movimientos.
type ProductionResponse struct {
	ID                string             `json:"id"`
	Date              time.Time          `json:"date"`
	ProductMaterialID string             `json:"product_material_id"`
	QuantityProduced  decimal.Decimal    `json:"quantity_produced"`
	RawMaterialID     string             `json:"raw_material_id,omitempty"`
	QuantityConsumed  decimal.Decimal    `json:"quantity_consumed"`
	Movements         []MovementResponse `json:"movements"`
}

// StockCheckResponse comparación entre el saldo cacheado y la suma de movimientos.
type StockCheckResponse struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MovementSum  decimal.Decimal `json:"movement_sum"`
	Difference   decimal.Decimal `json:"difference"`
	Consistent   bool            `json:"consistent"`
	BelowMinimum bool            `json:"below_minimum"`
}

// StockRepairRequest body para POST /api/stock/repair.
type StockRepairRequest struct {
	SourceType string `json:"source_type" validate:"required,oneof=producao_entrada producao_consumo compra_entrada"`
	MaterialID string `json:"material_id" validate:"required"`
	DryRun     bool   `json:"dry_run"`
}

// StockRepairReport resultado de una ejecución del procedimiento de reparación.
type StockRepairReport struct {
	SourceType    string          `json:"source_type"`
	MaterialID    string          `json:"material_id"`
	DryRun        bool            `json:"dry_run"`
	Scanned       int             `json:"scanned"`
	FixedCount    int             `json:"fixed_count"`
	TotalAdjusted decimal.Decimal `json:"total_adjusted"`
	Log           []string        `json:"log"`
}
