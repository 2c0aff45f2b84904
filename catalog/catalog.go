// Package catalog manages products, suppliers and their associations.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

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
	return &Service{store: s, logger: logger.Named("catalog")}
}

func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		products, err = tx.ListProducts(ctx)
		return err
	})
	return products, err
}

func (s *Service) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	var p *models.Product
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		p, err = tx.GetProduct(ctx, productID)
		return err
	})
	return p, err
}

func (s *Service) CreateProduct(ctx context.Context, in models.ProductCreate) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, models.Invalidf("product name is required")
	case in.Quantity < 0:
		return nil, models.Invalidf("quantity %d is negative", in.Quantity)
	case in.Price.IsNegative():
		return nil, models.Invalidf("price %s is negative", in.Price)
	}

	var p *models.Product
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		supplierIDs, err := s.knownSuppliers(ctx, tx, in.SupplierIDs)
		if err != nil {
			return err
		}
		id, err := tx.InsertProduct(ctx, models.Product{Name: name, Quantity: in.Quantity, Price: in.Price})
		if err != nil {
			return err
		}
		if err := tx.ReplaceProductSuppliers(ctx, id, supplierIDs); err != nil {
			return err
		}
		p, err = tx.GetProduct(ctx, id)
		return err
	})
	if err != nil {
		s.logger.Error("creating product failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	s.logger.Info("product created", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

// UpdateProduct replaces the fields set in in. Negative quantities and
// prices are clamped to zero.
func (s *Service) UpdateProduct(ctx context.Context, productID int64, in models.ProductUpdate) (*models.Product, error) {
	var p *models.Product
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		current, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return models.Invalidf("product name is required")
			}
			current.Name = name
		}
		if in.Quantity != nil {
			current.Quantity = max(0, *in.Quantity)
		}
		if in.Price != nil {
			current.Price = decimal.Max(decimal.Zero, *in.Price)
		}
		if err := tx.UpdateProduct(ctx, *current); err != nil {
			return err
		}
		if in.SupplierIDs != nil {
			supplierIDs, err := s.knownSuppliers(ctx, tx, *in.SupplierIDs)
			if err != nil {
				return err
			}
			if err := tx.ReplaceProductSuppliers(ctx, productID, supplierIDs); err != nil {
				return err
			}
		}
		p, err = tx.GetProduct(ctx, productID)
		return err
	})
	if err != nil {
		s.logger.Error("updating product failed", zap.Int64("product_id", productID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// DeleteProduct refuses products referenced by any sale line so that sales
// history is never removed through the cascade.
func (s *Service) DeleteProduct(ctx context.Context, productID int64) error {
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			return err
		}
		sold, err := tx.ProductHasSaleLines(ctx, productID)
		if err != nil {
			return err
		}
		if sold {
			return fmt.Errorf("product %d has recorded sales: %w", productID, models.ErrIntegrity)
		}
		return tx.DeleteProduct(ctx, productID)
	})
	if err != nil {
		s.logger.Warn("deleting product refused", zap.Int64("product_id", productID), zap.Error(err))
		return err
	}
	s.logger.Info("product deleted", zap.Int64("product_id", productID))
	return nil
}

// AdjustStock adds delta to the product quantity and returns the new value.
// The result never drops below zero.
func (s *Service) AdjustStock(ctx context.Context, productID int64, delta int) (int, error) {
	var quantity int
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		quantity = p.Quantity + delta
		if quantity < 0 {
			s.logger.Warn("stock clamped at zero",
				zap.Int64("product_id", productID),
				zap.Int("stock", p.Quantity),
				zap.Int("delta", delta))
			quantity = 0
		}
		return tx.SetProductQuantity(ctx, productID, p.Quantity, quantity)
	})
	if err != nil {
		s.logger.Error("adjusting stock failed",
			zap.Int64("product_id", productID), zap.Int("delta", delta), zap.Error(err))
		return 0, err
	}
	return quantity, nil
}

// knownSuppliers drops duplicate and unknown supplier ids, logging the
// unknown ones.
func (s *Service) knownSuppliers(ctx context.Context, tx *store.Tx, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	requested := slices.Clone(ids)
	slices.Sort(requested)
	requested = slices.Compact(requested)

	found, err := tx.SuppliersByID(ctx, requested)
	if err != nil {
		return nil, err
	}
	known := make([]int64, 0, len(found))
	for _, sup := range found {
		known = append(known, sup.ID)
	}
	if len(known) != len(requested) {
		var dropped []int64
		for _, id := range requested {
			if !slices.Contains(known, id) {
				dropped = append(dropped, id)
			}
		}
		s.logger.Warn("ignoring unknown supplier ids", zap.Int64s("supplier_ids", dropped))
	}
	return known, nil
}
