package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/cupoftea4/retail-pos/config"
	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/sales"
)

var keys = []string{
	"POS_DB_DRIVER", "POS_DB_DSN", "POS_LOG_LEVEL", "POS_LOG_DEV", "POS_LOG_FILE", "POS_SETTLEMENT",
	"POS_CATALOG_URL", "POS_HTTP_TIMEOUT", "POS_CUSTOMERS_JSON", "POS_SUPPLIERS_XLSX",
	"POS_PRODUCTS_CSV", "POS_SHIFT_REPORT_PDF", "POS_CURRENCY", "POS_TOP_N",
}

// clearEnv blanks every POS_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "data/market.db", cfg.DBDSN)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.LogDev)
	assert.Equal(t, "stderr", cfg.LogFile)
	assert.Equal(t, sales.SettleReserve, cfg.Settlement)
	assert.Equal(t, config.DefaultCatalogURL, cfg.CatalogURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "R$", cfg.Currency)
	assert.Equal(t, 5, cfg.TopN)
	assert.Empty(t, cfg.ShiftReportPDF)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POS_DB_DRIVER", "mysql")
	t.Setenv("POS_DB_DSN", "pos:secret@tcp(localhost:3306)/market")
	t.Setenv("POS_LOG_LEVEL", "debug")
	t.Setenv("POS_SETTLEMENT", "provisional")
	t.Setenv("POS_HTTP_TIMEOUT", "3s")
	t.Setenv("POS_TOP_N", "10")

	cfg, err := config.Load(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, sales.SettleProvisional, cfg.Settlement)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 10, cfg.TopN)
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	// Entries in the file only apply to variables absent from the process.
	require.NoError(t, os.Unsetenv("POS_DB_DSN"))
	t.Setenv("POS_CURRENCY", "US$")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("POS_DB_DSN=/tmp/shop.db\nPOS_CURRENCY=EUR\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shop.db", cfg.DBDSN)
	assert.Equal(t, "US$", cfg.Currency, "process environment wins over the file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"POS_DB_DRIVER":    "postgres",
		"POS_LOG_LEVEL":    "loud",
		"POS_LOG_DEV":      "maybe",
		"POS_SETTLEMENT":   "eventually",
		"POS_HTTP_TIMEOUT": "soon",
		"POS_TOP_N":        "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := config.Load(missingFile(t))
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}
