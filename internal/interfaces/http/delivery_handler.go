package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
)

// DeliveryHandler registro de pesajes contra pedidos de compra.
type DeliveryHandler struct {
	uc       *ledger.DeliveryUseCase
	validate *validator.Validate
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(uc *ledger.DeliveryUseCase, validate *validator.Validate) *DeliveryHandler {
	return &DeliveryHandler{uc: uc, validate: validate}
}

// Create godoc
// @Summary      Registrar entrega (pesaje)
// @Description  Suma weight_measured al stock del material del pedido. weight_fiscal es informativo.
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryRequest  true  "order_id, plate, weight_measured, weight_fiscal opcional"
// @Success      201   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDeliveryRequest
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

// Update godoc
// @Summary      Corregir entrega
// @Description  Un cambio de weight_measured registra un ajuste por la diferencia; el resto de campos no mueve stock.
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la entrega"
// @Param        body  body  dto.UpdateDeliveryRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [patch]
func (h *DeliveryHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	var in dto.UpdateDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar entrega
// @Description  Registra el estorno por -weight_measured y elimina la fila en la misma transacción.
// @Tags         deliveries
// @Param        id   path  string  true  "ID de la entrega"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id} [delete]
func (h *DeliveryHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
