package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cupoftea4/retail-pos/models"
)

func (t *Tx) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	return t.querySuppliers(ctx, `SELECT id, name FROM suppliers ORDER BY id ASC`)
}

func (t *Tx) SuppliersForProduct(ctx context.Context, productID int64) ([]models.Supplier, error) {
	return t.querySuppliers(ctx,
		`SELECT s.id, s.name
		FROM suppliers s
		JOIN product_suppliers ps ON ps.supplier_id = s.id
		WHERE ps.product_id = ?
		ORDER BY s.id ASC`, productID)
}

// SuppliersByID returns the subset of ids that name existing suppliers.
func (t *Tx) SuppliersByID(ctx context.Context, ids []int64) ([]models.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return t.querySuppliers(ctx,
		`SELECT id, name FROM suppliers WHERE id IN (`+placeholders(len(ids))+`) ORDER BY id ASC`, args...)
}

func (t *Tx) querySuppliers(ctx context.Context, query string, args ...any) ([]models.Supplier, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var suppliers []models.Supplier
	for rows.Next() {
		var s models.Supplier
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (t *Tx) FindSupplierByName(ctx context.Context, name string) (*models.Supplier, error) {
	s := &models.Supplier{}
	err := t.tx.QueryRowContext(ctx, `SELECT id, name FROM suppliers WHERE name = ?`, name).
		Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("supplier %q", name)
	}
	if err != nil {
		return nil, classify(err)
	}
	return s, nil
}

func (t *Tx) InsertSupplier(ctx context.Context, name string) (int64, error) {
	res, err := t.exec(ctx, `INSERT INTO suppliers (name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteAllSuppliers removes every supplier and association.
func (t *Tx) DeleteAllSuppliers(ctx context.Context) error {
	if _, err := t.exec(ctx, `DELETE FROM product_suppliers`); err != nil {
		return err
	}
	_, err := t.exec(ctx, `DELETE FROM suppliers`)
	return err
}

func (t *Tx) CountSuppliers(ctx context.Context) (int, error) {
	return t.countRows(ctx, `SELECT COUNT(*) FROM suppliers`)
}
