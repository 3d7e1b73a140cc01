package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
)

// OrderHandler pedidos de compra, su cumplimiento y saldos por proveedor.
type OrderHandler struct {
	uc         *ledger.OrderUseCase
	deliveries *ledger.DeliveryUseCase
	validate   *validator.Validate
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *ledger.OrderUseCase, deliveries *ledger.DeliveryUseCase, validate *validator.Validate) *OrderHandler {
	return &OrderHandler{uc: uc, deliveries: deliveries, validate: validate}
}

// ListOpen godoc
// @Summary      Pedidos de compra abiertos
// @Description  Pedidos con pendiente >= 0.1, con cantidad entregada (suma de pesos medidos) y pendiente.
// @Tags         purchase-orders
// @Produce      json
// @Success      200  {array}   dto.OrderView
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/open [get]
func (h *OrderHandler) ListOpen(c *fiber.Ctx) error {
	out, err := h.uc.ListOpen(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear pedido de compra
// @Tags         purchase-orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "supplier_id, material_id, quantity"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Cancelar pedido de compra
// @Description  El pedido deja de listarse como abierto y no admite nuevas entregas. Las existentes se conservan.
// @Tags         purchase-orders
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Cancel(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListDeliveries godoc
// @Summary      Entregas de un pedido
// @Tags         purchase-orders
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {array}   dto.DeliveryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id}/deliveries [get]
func (h *OrderHandler) ListDeliveries(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	out, err := h.deliveries.ListByOrder(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SupplierBalances godoc
// @Summary      Saldo pendiente por proveedor
// @Description  Una fila por proveedor con pedidos abiertos, ordenadas por pendiente descendente.
// @Tags         suppliers
// @Produce      json
// @Success      200  {array}   dto.SupplierBalanceResponse
// @Router       /api/suppliers/balances [get]
func (h *OrderHandler) SupplierBalances(c *fiber.Ctx) error {
	out, err := h.uc.SupplierBalances(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
