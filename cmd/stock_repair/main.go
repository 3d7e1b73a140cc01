// stock_repair registra los movimientos que faltan para eventos de origen ya persistidos
// (registros de producción o entregas) y opcionalmente verifica los saldos al terminar.
//
// Uso (solo informe):
//
//	go run ./cmd/stock_repair -source=producao_entrada -material=<uuid>
//
// Para escribir:
//
//	go run ./cmd/stock_repair -source=compra_entrada -dry-run=false -verify
//
// Sin -material recorre todos los materiales. Usa la misma configuración (env) que la API;
// con REDIS_ADDR definido no corre en paralelo con otra reparación del mismo material.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jhoicas/abastecimiento-api/internal/application/dto"
	"github.com/jhoicas/abastecimiento-api/internal/bootstrap"
	"github.com/jhoicas/abastecimiento-api/internal/domain"
	"github.com/jhoicas/abastecimiento-api/pkg/config"
	"github.com/jhoicas/abastecimiento-api/pkg/logger"
)

func main() {
	source := flag.String("source", "", "Requerido: producao_entrada | producao_consumo | compra_entrada")
	materialID := flag.String("material", "", "Opcional: un solo material (uuid). Vacío = todos")
	dryRun := flag.Bool("dry-run", true, "Solo informa, no escribe movimientos")
	verify := flag.Bool("verify", false, "Verifica saldo contra el libro de todos los materiales al terminar")
	continueOnError := flag.Bool("continue-on-error", true, "Sigue con el siguiente material si uno falla")
	flag.Parse()

	if strings.TrimSpace(*source) == "" {
		fmt.Fprintln(os.Stderr, "-source es requerido")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inicializar almacenamiento: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()
	svc := bootstrap.NewServices(backend, cfg, log)

	ids := []string{strings.TrimSpace(*materialID)}
	if ids[0] == "" {
		materials, err := backend.Materials.List(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "listar materiales: %v\n", err)
			os.Exit(1)
		}
		ids = ids[:0]
		for _, m := range materials {
			ids = append(ids, m.ID)
		}
	}

	failed := 0
	for _, id := range ids {
		report, err := svc.Repair.Run(ctx, dto.StockRepairRequest{SourceType: *source, MaterialID: id, DryRun: *dryRun})
		if report != nil {
			printReport(report)
		}
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "material %s: %v\n", id, err)
			if le, ok := domain.AsLedgerError(err); ok && le.Kind == domain.KindValidation {
				os.Exit(2)
			}
			if errors.Is(err, context.Canceled) || !*continueOnError {
				os.Exit(1)
			}
		}
	}

	if *verify {
		checks, err := svc.Stock.VerifyAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "verificar saldos: %v\n", err)
			os.Exit(1)
		}
		for _, c := range checks {
			if c.Consistent {
				continue
			}
			failed++
			fmt.Printf("INCONSISTENTE %s (%s): stock=%s libro=%s diferencia=%s\n",
				c.MaterialName, c.MaterialID, c.CurrentStock, c.MovementSum, c.Difference)
		}
		fmt.Printf("Verificados %d materiales\n", len(checks))
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func printReport(r *dto.StockRepairReport) {
	mode := "escritura"
	if r.DryRun {
		mode = "dry-run"
	}
	fmt.Printf("[%s] %s material=%s revisados=%d corregidos=%d total=%s\n",
		mode, r.SourceType, r.MaterialID, r.Scanned, r.FixedCount, r.TotalAdjusted)
	for _, line := range r.Log {
		fmt.Println("  " + line)
	}
}
