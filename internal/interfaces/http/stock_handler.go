package http

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/application/ledger"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
)

// StockHandler consultas de la cuenta de stock y procedimiento de reparación.
type StockHandler struct {
	stock    *ledger.StockUseCase
	repair   *ledger.RepairUseCase
	validate *validator.Validate
}

// NewStockHandler construye el handler.
func NewStockHandler(stock *ledger.StockUseCase, repair *ledger.RepairUseCase, validate *validator.Validate) *StockHandler {
	return &StockHandler{stock: stock, repair: repair, validate: validate}
}

// Verify godoc
// @Summary      Verificar saldo contra el libro
// @Description  Compara current_stock con la suma de movimientos. Responde 409 con el detalle si difieren.
// @Tags         stock
// @Produce      json
// @Param        id   path  string  true  "ID del material"
// @Success      200  {object}  dto.StockCheckResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.StockCheckResponse
// @Router       /api/materials/{id}/stock/verify [get]
func (h *StockHandler) Verify(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	res, err := h.stock.Verify(c.UserContext(), id)
	if res != nil && errors.Is(err, domain.ErrInconsistentStock) {
		return c.Status(fiber.StatusConflict).JSON(res)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// Movements godoc
// @Summary      Historial de movimientos de un material
// @Tags         stock
// @Produce      json
// @Param        id      path   string  true   "ID del material"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/materials/{id}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return missingID(c)
	}
	from, err := queryTime(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 50), Offset: c.QueryInt("offset", 0)}
	out, err := h.stock.Movements(c.UserContext(), id, from, to, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Repair godoc
// @Summary      Reparar movimientos faltantes
// @Description  Registra el movimiento de cada evento de origen (producción o entrega) que no lo tenga.
// @Description  Idempotente; con dry_run solo informa.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockRepairRequest  true  "source_type, material_id, dry_run"
// @Success      200   {object}  dto.StockRepairReport
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.StockRepairReport
// @Router       /api/stock/repair [post]
func (h *StockHandler) Repair(c *fiber.Ctx) error {
	var in dto.StockRepairRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, err)
	}
	report, err := h.repair.Run(c.UserContext(), in)
	if err != nil && report != nil {
		// Fallo a mitad: lo ya corregido quedó confirmado.
		return c.Status(fiber.StatusServiceUnavailable).JSON(report)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
