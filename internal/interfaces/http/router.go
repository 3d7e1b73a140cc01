package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orders     *ledger.OrderUseCase
	Deliveries *ledger.DeliveryUseCase
	Stock      *ledger.StockUseCase
	Movements  *ledger.MovementUseCase
	Production *ledger.ProductionUseCase
	Repair     *ledger.RepairUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	validate := newValidator()
	api := app.Group("/api")

	orderHandler := NewOrderHandler(deps.Orders, deps.Deliveries, validate)
	orders := api.Group("/purchase-orders")
	orders.Get("/open", orderHandler.ListOpen)
	orders.Post("/", orderHandler.Create)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Get("/:id/deliveries", orderHandler.ListDeliveries)
	api.Get("/suppliers/balances", orderHandler.SupplierBalances)

	deliveryHandler := NewDeliveryHandler(deps.Deliveries, validate)
	deliveries := api.Group("/deliveries")
	deliveries.Post("/", deliveryHandler.Create)
	deliveries.Patch("/:id", deliveryHandler.Update)
	deliveries.Delete("/:id", deliveryHandler.Delete)

	stockHandler := NewStockHandler(deps.Stock, deps.Repair, validate)
	api.Get("/materials/:id/stock/verify", stockHandler.Verify)
	api.Get("/materials/:id/movements", stockHandler.Movements)
	api.Post("/stock/repair", stockHandler.Repair)

	movementHandler := NewMovementHandler(deps.Movements, deps.Production, validate)
	api.Post("/movements", movementHandler.Post)
	api.Post("/production", movementHandler.RegisterProduction)
}
