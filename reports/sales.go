package reports

import (
	"context"
	"time"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
)

// ListSales returns every sale, newest first.
func (s *Service) ListSales(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		sales, err = tx.ListSales(ctx, 0, time.Time{})
		return err
	})
	return sales, err
}

// SalesForCustomer returns the customer's sales, newest first.
func (s *Service) SalesForCustomer(ctx context.Context, customerID int64) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.GetCustomer(ctx, customerID); err != nil {
			return err
		}
		var err error
		sales, err = tx.ListSales(ctx, customerID, time.Time{})
		return err
	})
	return sales, err
}

func (s *Service) GetSale(ctx context.Context, saleID int64) (*models.Sale, error) {
	var sale *models.Sale
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		sale, err = tx.GetSale(ctx, saleID)
		return err
	})
	return sale, err
}
