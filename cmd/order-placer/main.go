package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/juancollazo-ch/vtex-order-placer/internal/api"
	"github.com/juancollazo-ch/vtex-order-placer/internal/config"
	"github.com/juancollazo-ch/vtex-order-placer/internal/logging"
	"github.com/juancollazo-ch/vtex-order-placer/internal/placer"
	"go.uber.org/zap"
)

// MAIN: carga opciones, corre el placer e imprime el reporte. El exit code
// es distinto de cero solo ante una falla de nivel superior; las fallas de
// pipelines individuales ya quedaron logueadas.
func main() {
	configPath := flag.String("config", "order-placer.yml", "path to the YAML options file")
	flag.Parse()

	logger, err := logging.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)

	opts, err := config.Load(*configPath)
	if err != nil {
		zap.L().Error("Failed to load options", zap.Error(err))
		os.Exit(1)
	}

	orderPlacer := placer.New(api.NewVtexClient(opts), opts)

	report, runErr := orderPlacer.Run(context.Background())
	if runErr != nil {
		zap.L().Error("Order placement failed", zap.Error(runErr))
	}

	// El reporte se imprime siempre: las órdenes ya colocadas cuentan
	// aunque la corrida haya muerto a mitad de camino.
	printReport(report)

	if runErr != nil {
		os.Exit(1)
	}
}

func printReport(report *placer.Report) {
	zap.L().Info(fmt.Sprintf("%d orders placed!", len(report.PlacedOrders)))
	for _, orderID := range report.PlacedOrders {
		zap.L().Info(orderID)
	}
}
