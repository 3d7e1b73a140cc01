package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
)

// writeError traduce un error del libro a status HTTP y dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(verrs)})
	}
	// El conflicto va primero: ErrRepairRunning no es un LedgerError.
	if errors.Is(err, domain.ErrConflict) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	}
	if le, ok := domain.AsLedgerError(err); ok {
		switch le.Kind {
		case domain.KindValidation:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: le.Message})
		case domain.KindNotFound:
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: le.Message})
		case domain.KindConsistency:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INCONSISTENT_STOCK", Message: le.Message})
		case domain.KindPersistence:
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "PERSISTENCE", Message: "no se pudo completar la operación, intente de nuevo"})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func missingID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
}
