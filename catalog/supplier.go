package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
)

func (s *Service) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		suppliers, err = tx.ListSuppliers(ctx)
		return err
	})
	return suppliers, err
}

func (s *Service) CreateSupplier(ctx context.Context, name string) (*models.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Invalidf("supplier name is required")
	}

	var sup *models.Supplier
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		id, err := tx.InsertSupplier(ctx, name)
		if err != nil {
			return err
		}
		sup = &models.Supplier{ID: id, Name: name}
		return nil
	})
	if err != nil {
		s.logger.Error("creating supplier failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return sup, nil
}
