package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
)

// ReplaceProducts swaps the whole product table for records. Products are
// numbered 1..n in record order so that supplier workbooks can refer to
// them. The replacement is refused once any sale line exists, since the
// cascade would erase sales history.
func (s *Service) ReplaceProducts(ctx context.Context, records []models.ProductRecord) error {
	for i, r := range records {
		switch {
		case strings.TrimSpace(r.Name) == "":
			return models.Invalidf("product row %d has no name", i+1)
		case r.Quantity < 0:
			return models.Invalidf("product row %d has negative quantity", i+1)
		case r.Price.IsNegative():
			return models.Invalidf("product row %d has negative price", i+1)
		}
	}

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		lines, err := tx.CountSaleLines(ctx)
		if err != nil {
			return err
		}
		if lines > 0 {
			return fmt.Errorf("catalog has %d recorded sale lines: %w", lines, models.ErrIntegrity)
		}
		if err := tx.DeleteAllProducts(ctx); err != nil {
			return err
		}
		for i, r := range records {
			p := models.Product{
				ID:       int64(i + 1),
				Name:     strings.TrimSpace(r.Name),
				Quantity: r.Quantity,
				Price:    r.Price,
			}
			if _, err := tx.InsertProduct(ctx, p); err != nil {
				return fmt.Errorf("product row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("replacing products failed", zap.Error(err))
		return err
	}
	s.logger.Info("products replaced", zap.Int("count", len(records)))
	return nil
}

// ImportSuppliers replaces suppliers and associations with the workbook
// contents. Suppliers are deduplicated by name; links are deduplicated by
// pair and skipped when either side cannot be resolved.
func (s *Service) ImportSuppliers(ctx context.Context, suppliers []models.SupplierRecord, links []models.SupplierLink) (models.SupplierImport, error) {
	var result models.SupplierImport
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		result = models.SupplierImport{}
		if err := tx.DeleteAllSuppliers(ctx); err != nil {
			return err
		}

		byName := make(map[string]int64)
		externalToID := make(map[int64]int64)
		for _, r := range suppliers {
			name := strings.TrimSpace(r.Name)
			if name == "" {
				continue
			}
			id, ok := byName[name]
			if !ok {
				var err error
				id, err = tx.InsertSupplier(ctx, name)
				if err != nil {
					return fmt.Errorf("supplier %q: %w", name, err)
				}
				byName[name] = id
				result.Suppliers++
			}
			externalToID[r.ExternalID] = id
		}

		type pair struct{ product, supplier int64 }
		seen := make(map[pair]bool)
		productExists := make(map[int64]bool)
		for _, l := range links {
			supplierID, ok := externalToID[l.ExternalSupplierID]
			if !ok {
				result.SkippedSuppliers++
				continue
			}
			exists, checked := productExists[l.ProductID]
			if !checked {
				var err error
				exists, err = tx.ProductExists(ctx, l.ProductID)
				if err != nil {
					return err
				}
				productExists[l.ProductID] = exists
			}
			if !exists {
				result.SkippedProducts++
				continue
			}
			key := pair{l.ProductID, supplierID}
			if seen[key] {
				continue
			}
			seen[key] = true
			if err := tx.InsertProductSupplier(ctx, l.ProductID, supplierID); err != nil {
				return err
			}
			result.Links++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("importing suppliers failed", zap.Error(err))
		return models.SupplierImport{}, err
	}

	s.logger.Info("suppliers imported",
		zap.Int("suppliers", result.Suppliers),
		zap.Int("links", result.Links))
	if result.SkippedSuppliers > 0 || result.SkippedProducts > 0 {
		s.logger.Warn("supplier links skipped",
			zap.Int("unknown_supplier", result.SkippedSuppliers),
			zap.Int("unknown_product", result.SkippedProducts))
	}
	return result, nil
}
