package importer

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/models"
)

type CustomerLoader interface {
	LoadInitial(ctx context.Context, records []models.CustomerRecord) (int, error)
}

type CatalogLoader interface {
	ReplaceProducts(ctx context.Context, records []models.ProductRecord) error
	ImportSuppliers(ctx context.Context, suppliers []models.SupplierRecord, links []models.SupplierLink) (models.SupplierImport, error)
}

// Sources names where each seed comes from. Empty paths or URL skip the
// corresponding step.
type Sources struct {
	CustomersJSON string
	CatalogURL    string
	ProductsCSV   string
	SuppliersXLSX string
	HTTPClient    *http.Client
}

// Result reports what Bootstrap loaded. Failed steps are collected in
// Errors and never stop the following steps.
type Result struct {
	Customers int
	Scraped   int
	Products  int
	Suppliers models.SupplierImport
	Errors    []error
}

// Bootstrap seeds customers when the table is empty, replaces products with
// the scraped catalog page and saves it as the product CSV, then imports the
// supplier workbook. When the scrape fails the existing CSV is imported. The
// CSV is only rewritten once the store has accepted the scraped products.
func Bootstrap(ctx context.Context, src Sources, customers CustomerLoader, catalog CatalogLoader, logger *zap.Logger) Result {
	logger = logger.Named("bootstrap")
	var res Result
	fail := func(step string, err error) {
		res.Errors = append(res.Errors, err)
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("source not found, step skipped", zap.String("step", step), zap.Error(err))
			return
		}
		logger.Error("step failed, skipped", zap.String("step", step), zap.Error(err))
	}

	if src.CustomersJSON != "" {
		records, err := ReadCustomersFile(src.CustomersJSON)
		if err == nil {
			res.Customers, err = customers.LoadInitial(ctx, records)
		}
		if err != nil {
			fail("customers", err)
		}
	}

	var scraped []models.ProductRecord
	if src.CatalogURL != "" && src.ProductsCSV != "" {
		client := src.HTTPClient
		if client == nil {
			client = http.DefaultClient
		}
		records, err := ScrapeCatalog(ctx, client, src.CatalogURL)
		if err != nil {
			fail("scrape", err)
		} else {
			scraped = records
			res.Scraped = len(records)
			logger.Info("catalog scraped", zap.Int("products", res.Scraped))
		}
	}

	if scraped != nil {
		// the CSV keeps the last catalog the store accepted
		err := catalog.ReplaceProducts(ctx, scraped)
		if err == nil {
			res.Products = len(scraped)
			err = WriteProductsFile(src.ProductsCSV, scraped)
		}
		if err != nil {
			fail("products", err)
		}
	} else if src.ProductsCSV != "" {
		records, err := ReadProductsFile(src.ProductsCSV)
		if err == nil {
			err = catalog.ReplaceProducts(ctx, records)
		}
		if err != nil {
			fail("products", err)
		} else {
			res.Products = len(records)
		}
	}

	if src.SuppliersXLSX != "" {
		suppliers, links, err := ReadSuppliersFile(src.SuppliersXLSX)
		if err == nil {
			res.Suppliers, err = catalog.ImportSuppliers(ctx, suppliers, links)
		}
		if err != nil {
			fail("suppliers", err)
		}
	}

	logger.Info("bootstrap finished",
		zap.Int("customers", res.Customers),
		zap.Int("products", res.Products),
		zap.Int("suppliers", res.Suppliers.Suppliers),
		zap.Int("failed_steps", len(res.Errors)))
	return res
}
