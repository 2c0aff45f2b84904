// Package reports answers read-only questions about sales, customers and
// stock. Every report runs in its own short transaction.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
)

type Service struct {
	store  *store.Store
	logger *zap.Logger
}

func NewService(s *store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger.Named("reports")}
}

// ShiftSummary is the end-of-shift close-out.
type ShiftSummary struct {
	Since       time.Time
	GeneratedAt time.Time
	ByCustomer  []models.CustomerTotal
	GrandTotal  decimal.Decimal
	OutOfStock  []models.Product
}

// ShiftSummary totals revenue per customer name for sales since the given
// instant (all sales when zero) and lists products with no stock left.
func (s *Service) ShiftSummary(ctx context.Context, since time.Time) (*ShiftSummary, error) {
	summary := &ShiftSummary{Since: since, GeneratedAt: time.Now(), GrandTotal: decimal.Zero}
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		if summary.ByCustomer, err = tx.CustomerTotals(ctx, since); err != nil {
			return err
		}
		summary.OutOfStock, err = tx.ProductsAtOrBelow(ctx, 0)
		return err
	})
	if err != nil {
		s.logger.Error("shift summary failed", zap.Error(err))
		return nil, err
	}
	for _, ct := range summary.ByCustomer {
		summary.GrandTotal = summary.GrandTotal.Add(ct.Total)
	}
	return summary, nil
}

func (s *Service) CustomersWithSales(ctx context.Context) ([]models.CustomerSaleCount, error) {
	var rows []models.CustomerSaleCount
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		rows, err = tx.CustomerSaleCounts(ctx, 0)
		return err
	})
	return rows, err
}

func (s *Service) CustomersWithoutSales(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		rows, err = tx.CustomersWithoutSales(ctx)
		return err
	})
	return rows, err
}

// TopCustomersBySaleCount ranks by number of sales, ties by ascending id.
func (s *Service) TopCustomersBySaleCount(ctx context.Context, n int) ([]models.CustomerSaleCount, error) {
	if n <= 0 {
		return nil, models.Invalidf("top N must be positive, got %d", n)
	}
	var rows []models.CustomerSaleCount
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		rows, err = tx.CustomerSaleCounts(ctx, n)
		return err
	})
	return rows, err
}

// TopCustomersBySpend ranks by total spent, ties by ascending id.
func (s *Service) TopCustomersBySpend(ctx context.Context, n int) ([]models.CustomerSpend, error) {
	if n <= 0 {
		return nil, models.Invalidf("top N must be positive, got %d", n)
	}
	var rows []models.CustomerSpend
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		rows, err = tx.TopCustomersBySpend(ctx, n)
		return err
	})
	return rows, err
}

// ProductsBySales ranks products by units sold; unsold products count as
// zero. Ties are broken by ascending id.
func (s *Service) ProductsBySales(ctx context.Context, n int, descending bool) ([]models.ProductSales, error) {
	if n <= 0 {
		return nil, models.Invalidf("top N must be positive, got %d", n)
	}
	var rows []models.ProductSales
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		rows, err = tx.ProductUnitsSold(ctx, n, descending)
		return err
	})
	return rows, err
}

func (s *Service) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	if threshold < 0 {
		return nil, models.Invalidf("threshold must not be negative, got %d", threshold)
	}
	var rows []models.Product
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		rows, err = tx.ProductsAtOrBelow(ctx, threshold)
		return err
	})
	return rows, err
}

// SuppliersForProduct returns the product with its suppliers.
func (s *Service) SuppliersForProduct(ctx context.Context, productID int64) (*models.Product, error) {
	var p *models.Product
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		p, err = tx.GetProduct(ctx, productID)
		return err
	})
	return p, err
}
