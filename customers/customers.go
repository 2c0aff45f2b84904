// Package customers registers and maintains store customers.
package customers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
)

type Service struct {
	store  *store.Store
	logger *zap.Logger
}

func NewService(s *store.Store, logger *zap.Logger) *Service {
	return &Service{store: s, logger: logger.Named("customers")}
}

func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		customers, err = tx.ListCustomers(ctx)
		return err
	})
	return customers, err
}

func (s *Service) Get(ctx context.Context, customerID int64) (*models.Customer, error) {
	var c *models.Customer
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		c, err = tx.GetCustomer(ctx, customerID)
		return err
	})
	return c, err
}

// Create registers a customer. A blank name becomes "Customer N" where N is
// the next sequential id.
func (s *Service) Create(ctx context.Context, name string) (*models.Customer, error) {
	name = strings.TrimSpace(name)

	var c *models.Customer
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if name == "" {
			last, err := tx.MaxCustomerID(ctx)
			if err != nil {
				return err
			}
			name = fmt.Sprintf("Customer %d", last+1)
		}
		id, err := tx.InsertCustomer(ctx, models.Customer{Name: name})
		if err != nil {
			return err
		}
		c = &models.Customer{ID: id, Name: name}
		return nil
	})
	if err != nil {
		s.logger.Warn("registering customer failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("customer registered", zap.Int64("customer_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *Service) Update(ctx context.Context, customerID int64, name string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Invalidf("customer name is required")
	}

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.GetCustomer(ctx, customerID); err != nil {
			return err
		}
		return tx.UpdateCustomerName(ctx, customerID, name)
	})
	if err != nil {
		s.logger.Warn("updating customer failed", zap.Int64("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	return &models.Customer{ID: customerID, Name: name}, nil
}

// Delete removes the customer together with its sales and their lines and
// returns how many sales went with it. Callers that must keep history check
// HasSales first.
func (s *Service) Delete(ctx context.Context, customerID int64) (int64, error) {
	var removed int64
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.GetCustomer(ctx, customerID); err != nil {
			return err
		}
		var err error
		removed, err = tx.DeleteSalesForCustomer(ctx, customerID)
		if err != nil {
			return err
		}
		return tx.DeleteCustomer(ctx, customerID)
	})
	if err != nil {
		s.logger.Warn("deleting customer failed", zap.Int64("customer_id", customerID), zap.Error(err))
		return 0, err
	}
	s.logger.Info("customer deleted", zap.Int64("customer_id", customerID), zap.Int64("sales_removed", removed))
	return removed, nil
}

func (s *Service) HasSales(ctx context.Context, customerID int64) (bool, error) {
	var n int
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		n, err = tx.CountSalesForCustomer(ctx, customerID)
		return err
	})
	return n > 0, err
}

// LoadInitial seeds the customer table from records when it is empty and
// reports how many were inserted. Records with blank names are skipped.
func (s *Service) LoadInitial(ctx context.Context, records []models.CustomerRecord) (int, error) {
	var inserted int
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		inserted = 0
		n, err := tx.CountCustomers(ctx)
		if err != nil || n > 0 {
			return err
		}
		for _, r := range records {
			name := strings.TrimSpace(r.Name)
			if name == "" {
				s.logger.Warn("skipping customer record without name", zap.Int64("id", r.ID))
				continue
			}
			if _, err := tx.InsertCustomer(ctx, models.Customer{ID: r.ID, Name: name}); err != nil {
				return fmt.Errorf("customer %q: %w", name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("loading initial customers failed", zap.Error(err))
		return 0, err
	}
	if inserted == 0 {
		s.logger.Info("initial customers already loaded")
	} else {
		s.logger.Info("initial customers loaded", zap.Int("count", inserted))
	}
	return inserted, nil
}
