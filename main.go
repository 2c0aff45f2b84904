package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/catalog"
	"github.com/cupoftea4/retail-pos/config"
	"github.com/cupoftea4/retail-pos/console"
	"github.com/cupoftea4/retail-pos/customers"
	"github.com/cupoftea4/retail-pos/importer"
	"github.com/cupoftea4/retail-pos/reports"
	"github.com/cupoftea4/retail-pos/sales"
	"github.com/cupoftea4/retail-pos/store"
)

func main() {
	envFile := pflag.String("env", ".env", "environment file to load before reading POS_* variables")
	skipImport := pflag.Bool("skip-import", false, "start without seeding customers, products and suppliers")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, *skipImport, logger); err != nil {
		logger.Error("exiting", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogDev {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	if cfg.LogFile != "stderr" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
	}
	zc.OutputPaths = []string{cfg.LogFile}
	return zc.Build()
}

func run(ctx context.Context, cfg config.Config, skipImport bool, logger *zap.Logger) error {
	s, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		return err
	}

	catalogSvc := catalog.NewService(s, logger)
	customerSvc := customers.NewService(s, logger)
	engine := sales.NewEngine(s, catalogSvc, logger, sales.WithSettlementMode(cfg.Settlement))
	reportSvc := reports.NewService(s, logger)

	if !skipImport {
		importer.Bootstrap(ctx, importer.Sources{
			CustomersJSON: cfg.CustomersJSON,
			CatalogURL:    cfg.CatalogURL,
			ProductsCSV:   cfg.ProductsCSV,
			SuppliersXLSX: cfg.SuppliersXLSX,
			HTTPClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		}, customerSvc, catalogSvc, logger)
	}

	app := console.New(os.Stdin, os.Stdout, console.Deps{
		Customers: customerSvc,
		Catalog:   catalogSvc,
		Engine:    engine,
		Reports:   reportSvc,
		Logger:    logger,
	}, console.Options{
		Currency:       cfg.Currency,
		TopN:           cfg.TopN,
		ShiftReportPDF: cfg.ShiftReportPDF,
	})
	return app.Run(ctx)
}
