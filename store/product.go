package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cupoftea4/retail-pos/models"
)

func (t *Tx) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, name, quantity, price_cents FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, classify(err)
	}
	products, err := scanProducts(rows)
	if err != nil {
		return nil, err
	}

	suppliers, err := t.supplierMap(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Suppliers = suppliers[products[i].ID]
	}
	return products, nil
}

// ProductsAtOrBelow lists products whose stock does not exceed threshold,
// lowest stock first.
func (t *Tx) ProductsAtOrBelow(ctx context.Context, threshold int) ([]models.Product, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT id, name, quantity, price_cents FROM products
		WHERE quantity <= ?
		ORDER BY quantity ASC, id ASC`, threshold)
	if err != nil {
		return nil, classify(err)
	}
	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]models.Product, error) {
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var cents int64
		if err := rows.Scan(&p.ID, &p.Name, &p.Quantity, &cents); err != nil {
			return nil, err
		}
		p.Price = models.FromCents(cents)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (t *Tx) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	p := &models.Product{}
	var cents int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, name, quantity, price_cents FROM products WHERE id = ?`, productID).
		Scan(&p.ID, &p.Name, &p.Quantity, &cents)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("product %d", productID)
	}
	if err != nil {
		return nil, classify(err)
	}
	p.Price = models.FromCents(cents)

	p.Suppliers, err = t.SuppliersForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// InsertProduct stores p and returns its id. A non-zero p.ID is kept as the
// primary key.
func (t *Tx) InsertProduct(ctx context.Context, p models.Product) (int64, error) {
	var res sql.Result
	var err error
	if p.ID != 0 {
		res, err = t.exec(ctx,
			`INSERT INTO products (id, name, quantity, price_cents) VALUES (?, ?, ?, ?)`,
			p.ID, p.Name, p.Quantity, models.ToCents(p.Price))
	} else {
		res, err = t.exec(ctx,
			`INSERT INTO products (name, quantity, price_cents) VALUES (?, ?, ?)`,
			p.Name, p.Quantity, models.ToCents(p.Price))
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *Tx) UpdateProduct(ctx context.Context, p models.Product) error {
	_, err := t.exec(ctx,
		`UPDATE products SET name = ?, quantity = ?, price_cents = ? WHERE id = ?`,
		p.Name, p.Quantity, models.ToCents(p.Price), p.ID)
	return err
}

// SetProductQuantity stores quantity only while the row still holds
// expected, and returns ErrStaleRow otherwise.
func (t *Tx) SetProductQuantity(ctx context.Context, productID int64, expected, quantity int) error {
	res, err := t.exec(ctx, `UPDATE products SET quantity = ? WHERE id = ? AND quantity = ?`,
		quantity, productID, expected)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("stock of product %d: %w", productID, ErrStaleRow)
	}
	return nil
}

func (t *Tx) DeleteProduct(ctx context.Context, productID int64) error {
	if _, err := t.exec(ctx, `DELETE FROM product_suppliers WHERE product_id = ?`, productID); err != nil {
		return err
	}
	res, err := t.exec(ctx, `DELETE FROM products WHERE id = ?`, productID)
	if err != nil {
		return err
	}
	return expectAffected(res, "product", productID)
}

// DeleteAllProducts empties the catalog together with its supplier links.
func (t *Tx) DeleteAllProducts(ctx context.Context) error {
	if _, err := t.exec(ctx, `DELETE FROM product_suppliers`); err != nil {
		return err
	}
	_, err := t.exec(ctx, `DELETE FROM products`)
	return err
}

func (t *Tx) ProductExists(ctx context.Context, productID int64) (bool, error) {
	n, err := t.countRows(ctx, `SELECT COUNT(*) FROM products WHERE id = ?`, productID)
	return n > 0, err
}

func (t *Tx) ProductHasSaleLines(ctx context.Context, productID int64) (bool, error) {
	n, err := t.countRows(ctx, `SELECT COUNT(*) FROM sale_lines WHERE product_id = ?`, productID)
	return n > 0, err
}

func (t *Tx) CountSaleLines(ctx context.Context) (int, error) {
	return t.countRows(ctx, `SELECT COUNT(*) FROM sale_lines`)
}

// ReplaceProductSuppliers makes supplierIDs the complete association set of
// the product.
func (t *Tx) ReplaceProductSuppliers(ctx context.Context, productID int64, supplierIDs []int64) error {
	if _, err := t.exec(ctx, `DELETE FROM product_suppliers WHERE product_id = ?`, productID); err != nil {
		return err
	}
	for _, sid := range supplierIDs {
		if err := t.InsertProductSupplier(ctx, productID, sid); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tx) InsertProductSupplier(ctx context.Context, productID, supplierID int64) error {
	_, err := t.exec(ctx,
		`INSERT INTO product_suppliers (product_id, supplier_id) VALUES (?, ?)`, productID, supplierID)
	return err
}

func (t *Tx) CountProductSuppliers(ctx context.Context) (int, error) {
	return t.countRows(ctx, `SELECT COUNT(*) FROM product_suppliers`)
}

// supplierMap returns the suppliers of every product keyed by product id.
func (t *Tx) supplierMap(ctx context.Context) (map[int64][]models.Supplier, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT ps.product_id, s.id, s.name
		FROM product_suppliers ps
		JOIN suppliers s ON s.id = ps.supplier_id
		ORDER BY ps.product_id ASC, s.name ASC`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	m := make(map[int64][]models.Supplier)
	for rows.Next() {
		var pid int64
		var s models.Supplier
		if err := rows.Scan(&pid, &s.ID, &s.Name); err != nil {
			return nil, err
		}
		m[pid] = append(m[pid], s)
	}
	return m, rows.Err()
}

func expectAffected(res sql.Result, entity string, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NotFoundf("%s %d", entity, id)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
