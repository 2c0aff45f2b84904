package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cupoftea4/retail-pos/models"
)

func (t *Tx) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return t.queryCustomers(ctx, `SELECT id, name FROM customers ORDER BY id ASC`)
}

// CustomersWithoutSales is the anti-join of customers against sales.
func (t *Tx) CustomersWithoutSales(ctx context.Context) ([]models.Customer, error) {
	return t.queryCustomers(ctx,
		`SELECT c.id, c.name
		FROM customers c
		LEFT JOIN sales s ON s.customer_id = c.id
		WHERE s.id IS NULL
		ORDER BY c.id ASC`)
}

func (t *Tx) queryCustomers(ctx context.Context, query string, args ...any) ([]models.Customer, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (t *Tx) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	c := &models.Customer{}
	err := t.tx.QueryRowContext(ctx, `SELECT id, name FROM customers WHERE id = ?`, customerID).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("customer %d", customerID)
	}
	if err != nil {
		return nil, classify(err)
	}
	return c, nil
}

// InsertCustomer stores c and returns its id. A non-zero c.ID is kept.
func (t *Tx) InsertCustomer(ctx context.Context, c models.Customer) (int64, error) {
	var res sql.Result
	var err error
	if c.ID != 0 {
		res, err = t.exec(ctx, `INSERT INTO customers (id, name) VALUES (?, ?)`, c.ID, c.Name)
	} else {
		res, err = t.exec(ctx, `INSERT INTO customers (name) VALUES (?)`, c.Name)
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *Tx) UpdateCustomerName(ctx context.Context, customerID int64, name string) error {
	_, err := t.exec(ctx, `UPDATE customers SET name = ? WHERE id = ?`, name, customerID)
	return err
}

func (t *Tx) DeleteCustomer(ctx context.Context, customerID int64) error {
	res, err := t.exec(ctx, `DELETE FROM customers WHERE id = ?`, customerID)
	if err != nil {
		return err
	}
	return expectAffected(res, "customer", customerID)
}

func (t *Tx) MaxCustomerID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := t.tx.QueryRowContext(ctx, `SELECT MAX(id) FROM customers`).Scan(&id); err != nil {
		return 0, classify(err)
	}
	return id.Int64, nil
}

func (t *Tx) CountCustomers(ctx context.Context) (int, error) {
	return t.countRows(ctx, `SELECT COUNT(*) FROM customers`)
}

func (t *Tx) CountSalesForCustomer(ctx context.Context, customerID int64) (int, error) {
	return t.countRows(ctx, `SELECT COUNT(*) FROM sales WHERE customer_id = ?`, customerID)
}

// DeleteSalesForCustomer removes the customer's sales and their lines.
func (t *Tx) DeleteSalesForCustomer(ctx context.Context, customerID int64) (int64, error) {
	if _, err := t.exec(ctx,
		`DELETE FROM sale_lines WHERE sale_id IN (SELECT id FROM sales WHERE customer_id = ?)`,
		customerID); err != nil {
		return 0, err
	}
	res, err := t.exec(ctx, `DELETE FROM sales WHERE customer_id = ?`, customerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
