package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
)

// MovementHandler publicación de movimientos por producción, ventas y ajustes.
type MovementHandler struct {
	movements  *ledger.MovementUseCase
	production *ledger.ProductionUseCase
	validate   *validator.Validate
}

// NewMovementHandler construye el handler.
func NewMovementHandler(movements *ledger.MovementUseCase, production *ledger.ProductionUseCase, validate *validator.Validate) *MovementHandler {
	return &MovementHandler{movements: movements, production: production, validate: validate}
}

// Post godoc
// @Summary      Registrar movimiento externo
// @Description  producao_entrada, producao_consumo, venda_saida (idempotentes por reference_id) o ajuste.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostMovementRequest  true  "material_id, type, quantity, reference_id"
// @Success      201   {object}  dto.MovementResponse
// @Success      200   {object}  dto.MovementResponse  "ya registrado (replayed)"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Post(c *fiber.Ctx) error {
	var in dto.PostMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.movements.Post(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	if out.Replayed {
		return c.JSON(out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegisterProduction godoc
// @Summary      Registrar producción
// @Description  Persiste el registro con su entrada de producto y consumo de materia prima en una transacción.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterProductionRequest  true  "Registro de producción"
// @Success      201   {object}  dto.ProductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/production [post]
func (h *MovementHandler) RegisterProduction(c *fiber.Ctx) error {
	var in dto.RegisterProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	out, err := h.production.Register(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
