package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/internal/domain/entity"
	"github.com/jhoicas/abastecimiento-api/internal/domain/repository"
)

// RepairConfig opciones del procedimiento de reparación.
type RepairConfig struct {
	Locale string // idioma de las líneas de auditoría (ej. "es", "pt-BR")
}

// RepairUseCase detecta eventos de origen sin su movimiento y los completa.
// Es idempotente: cada evento se comprueba con ExistsFor antes de registrar nada,
// así que una segunda ejecución sobre los mismos datos no cambia nada.
type RepairUseCase struct {
	txRunner   TxRunner
	materials  repository.MaterialRepository
	production repository.ProductionRepository
	deliveries repository.DeliveryRepository
	locker     RunLocker
	log        zerolog.Logger
	printer    *message.Printer
	now        func() time.Time
}

// NewRepairUseCase construye el caso de uso. locker puede ser nil (sin exclusión entre ejecuciones).
func NewRepairUseCase(
	txRunner TxRunner,
	materials repository.MaterialRepository,
	production repository.ProductionRepository,
	deliveries repository.DeliveryRepository,
	locker RunLocker,
	log zerolog.Logger,
	cfg RepairConfig,
) *RepairUseCase {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.Spanish
	}
	return &RepairUseCase{
		txRunner:   txRunner,
		materials:  materials,
		production: production,
		deliveries: deliveries,
		locker:     locker,
		log:        log,
		printer:    message.NewPrinter(tag),
		now:        time.Now,
	}
}

// sourceEvent evento de origen que debería tener exactamente un movimiento para el material.
type sourceEvent struct {
	referenceID string
	quantity    decimal.Decimal // con signo
	date        time.Time
	// residual: la cantidad a registrar es quantity menos lo ya movido para la referencia
	// (entregas con correcciones compra_ajuste ya registradas).
	residual bool
}

// Run ejecuta la reparación para un tipo de origen y un material.
// Si falla a mitad, los eventos ya corregidos quedan confirmados y se devuelven en el informe junto al error.
func (uc *RepairUseCase) Run(ctx context.Context, in dto.StockRepairRequest) (*dto.StockRepairReport, error) {
	const op = "stock.repair"
	sourceType := entity.MovementType(strings.TrimSpace(in.SourceType))
	switch sourceType {
	case entity.MovementProductionInbound, entity.MovementProductionConsumption, entity.MovementPurchaseInbound:
	default:
		return nil, domain.NewValidationError(op, "source_type no soportado: "+in.SourceType)
	}
	if strings.TrimSpace(in.MaterialID) == "" {
		return nil, domain.NewValidationError(op, "material_id es requerido")
	}
	material, err := uc.materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}
	if material == nil {
		return nil, domain.NewNotFoundError(op, "material no encontrado")
	}

	if uc.locker != nil {
		release, err := uc.locker.Acquire(ctx, fmt.Sprintf("ledger:repair:%s:%s", sourceType, material.ID))
		if errors.Is(err, domain.ErrRepairRunning) {
			return nil, err
		}
		if err != nil {
			return nil, domain.NewPersistenceError(op, err)
		}
		defer release()
	}

	events, err := uc.sourceEvents(ctx, sourceType, material.ID)
	if err != nil {
		return nil, domain.NewPersistenceError(op, err)
	}

	report := &dto.StockRepairReport{
		SourceType:    string(sourceType),
		MaterialID:    material.ID,
		DryRun:        in.DryRun,
		Scanned:       len(events),
		TotalAdjusted: decimal.Zero,
		Log:           []string{},
	}
	for _, ev := range events {
		posted, fixed, err := uc.repairOne(ctx, sourceType, material.ID, ev, in.DryRun)
		if errors.Is(err, domain.ErrDuplicate) {
			// Una ejecución concurrente ya registró este evento.
			continue
		}
		if err != nil {
			return report, wrapTx(op, err)
		}
		if !fixed {
			continue
		}
		report.FixedCount++
		report.TotalAdjusted = report.TotalAdjusted.Add(posted)
		line := uc.printer.Sprintf("%s %s: movimiento faltante para %s, ajuste %.3f %s",
			sourceType, ev.referenceID, material.Name, posted.InexactFloat64(), material.Unit)
		if in.DryRun {
			line = "[dry-run] " + line
		}
		report.Log = append(report.Log, line)
		uc.log.Info().
			Str("source_type", string(sourceType)).
			Str("reference_id", ev.referenceID).
			Str("material_id", material.ID).
			Str("quantity", posted.String()).
			Bool("dry_run", in.DryRun).
			Msg("reparación de stock: movimiento faltante")
	}

	uc.log.Info().
		Str("source_type", string(sourceType)).
		Str("material_id", material.ID).
		Int("scanned", report.Scanned).
		Int("fixed", report.FixedCount).
		Str("total_adjusted", report.TotalAdjusted.String()).
		Bool("dry_run", in.DryRun).
		Msg("reparación de stock finalizada")
	return report, nil
}

// repairOne comprueba y, si falta, registra el movimiento del evento en su propia transacción.
func (uc *RepairUseCase) repairOne(ctx context.Context, sourceType entity.MovementType, materialID string, ev sourceEvent, dryRun bool) (decimal.Decimal, bool, error) {
	var (
		posted decimal.Decimal
		fixed  bool
	)
	err := withRetry(ctx, retryAttempts, func() error {
		posted, fixed = decimal.Zero, false
		return uc.txRunner.Run(ctx, func(ctx context.Context, r TxRepos) error {
			exists, err := r.Movements.ExistsFor(ctx, ev.referenceID, materialID, sourceType)
			if err != nil {
				return err
			}
			if exists {
				return nil
			}
			qty := ev.quantity
			if ev.residual {
				already, err := r.Movements.SumByReference(ctx, ev.referenceID, materialID)
				if err != nil {
					return err
				}
				qty = qty.Sub(already)
			}
			// Residuo cero: los ajustes ya cubren el peso medido y no se registra nada.
			if qty.IsZero() {
				return nil
			}
			posted, fixed = qty, true
			if dryRun {
				return nil
			}
			now := uc.now()
			_, err = post(ctx, r, &entity.Movement{
				MaterialID:  materialID,
				Quantity:    qty,
				Type:        sourceType,
				ReferenceID: ev.referenceID,
				Date:        ev.date,
				Notes:       "reparación: movimiento faltante",
				CreatedAt:   now,
			})
			return err
		})
	})
	return posted, fixed, err
}

func (uc *RepairUseCase) sourceEvents(ctx context.Context, sourceType entity.MovementType, materialID string) ([]sourceEvent, error) {
	var events []sourceEvent
	switch sourceType {
	case entity.MovementProductionInbound:
		recs, err := uc.production.ListByProductMaterial(ctx, materialID)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			if !r.QuantityProduced.GreaterThan(decimal.Zero) {
				continue
			}
			events = append(events, sourceEvent{referenceID: r.ID, quantity: r.QuantityProduced, date: r.Date})
		}
	case entity.MovementProductionConsumption:
		recs, err := uc.production.ListByRawMaterial(ctx, materialID)
		if err != nil {
			return nil, err
		}
		for _, r := range recs {
			if !r.HasConsumption() {
				continue
			}
			events = append(events, sourceEvent{referenceID: r.ID, quantity: r.QuantityConsumed.Neg(), date: r.Date})
		}
	case entity.MovementPurchaseInbound:
		list, err := uc.deliveries.ListByMaterial(ctx, materialID)
		if err != nil {
			return nil, err
		}
		for _, d := range list {
			events = append(events, sourceEvent{referenceID: d.ID, quantity: d.WeightMeasured, date: d.Date, residual: true})
		}
	}
	return events, nil
}
