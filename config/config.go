// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/sales"
	"github.com/cupoftea4/retail-pos/store"
)

const DefaultCatalogURL = "https://pedrovncs.github.io/lindosprecos/produtos.html"

type Config struct {
	DBDriver string
	DBDSN    string

	LogLevel zapcore.Level
	LogDev   bool
	// LogFile is a zap output path; "stderr" keeps logs on the terminal.
	LogFile string

	Settlement sales.SettlementMode

	CatalogURL  string
	HTTPTimeout time.Duration

	CustomersJSON string
	SuppliersXLSX string
	ProductsCSV   string

	// ShiftReportPDF is written at end of shift when non-empty.
	ShiftReportPDF string
	Currency       string
	TopN           int
}

// Load applies the given env files (".env" when none are named) and then
// reads POS_* variables. Missing env files are skipped; variables already
// set in the process win over file entries.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, models.Invalidf("reading %s: %v", f, err)
		}
	}

	cfg := Config{
		DBDriver:       env("POS_DB_DRIVER", store.DriverSQLite),
		DBDSN:          env("POS_DB_DSN", "data/market.db"),
		LogFile:        env("POS_LOG_FILE", "stderr"),
		CatalogURL:     env("POS_CATALOG_URL", DefaultCatalogURL),
		CustomersJSON:  env("POS_CUSTOMERS_JSON", "data/customers.json"),
		SuppliersXLSX:  env("POS_SUPPLIERS_XLSX", "data/suppliers.xlsx"),
		ProductsCSV:    env("POS_PRODUCTS_CSV", "data/products.csv"),
		ShiftReportPDF: env("POS_SHIFT_REPORT_PDF", ""),
		Currency:       env("POS_CURRENCY", "R$"),
	}

	switch cfg.DBDriver {
	case store.DriverSQLite, store.DriverMySQL:
	default:
		return Config{}, models.Invalidf("POS_DB_DRIVER must be %q or %q, got %q", store.DriverSQLite, store.DriverMySQL, cfg.DBDriver)
	}

	var err error
	if cfg.LogLevel, err = zapcore.ParseLevel(env("POS_LOG_LEVEL", "info")); err != nil {
		return Config{}, models.Invalidf("POS_LOG_LEVEL: %v", err)
	}
	if cfg.LogDev, err = strconv.ParseBool(env("POS_LOG_DEV", "false")); err != nil {
		return Config{}, models.Invalidf("POS_LOG_DEV: %v", err)
	}
	if cfg.Settlement, err = sales.ParseSettlementMode(env("POS_SETTLEMENT", string(sales.SettleReserve))); err != nil {
		return Config{}, err
	}
	if cfg.HTTPTimeout, err = time.ParseDuration(env("POS_HTTP_TIMEOUT", "10s")); err != nil {
		return Config{}, models.Invalidf("POS_HTTP_TIMEOUT: %v", err)
	}
	if cfg.HTTPTimeout <= 0 {
		return Config{}, models.Invalidf("POS_HTTP_TIMEOUT must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.TopN, err = strconv.Atoi(env("POS_TOP_N", "5")); err != nil {
		return Config{}, models.Invalidf("POS_TOP_N: %v", err)
	}
	if cfg.TopN <= 0 {
		return Config{}, models.Invalidf("POS_TOP_N must be positive, got %d", cfg.TopN)
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}
