package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cupoftea4/retail-pos/models"
)

// InsertSale writes a sale header and its lines. The caller's unit of work
// makes the pair atomic.
func (t *Tx) InsertSale(ctx context.Context, customerID int64, soldAt time.Time, lines []models.SaleLine) (*models.Sale, error) {
	if len(lines) == 0 {
		return nil, models.Invalidf("sale for customer %d has no lines", customerID)
	}

	res, err := t.exec(ctx, `INSERT INTO sales (sold_at, customer_id) VALUES (?, ?)`,
		soldAt.Unix(), customerID)
	if err != nil {
		return nil, fmt.Errorf("inserting sale: %w", err)
	}
	saleID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	sale := &models.Sale{ID: saleID, SoldAt: time.Unix(soldAt.Unix(), 0).UTC(), CustomerID: customerID}
	for _, line := range lines {
		res, err = t.exec(ctx,
			`INSERT INTO sale_lines (sale_id, product_id, quantity, unit_price_cents) VALUES (?, ?, ?, ?)`,
			saleID, line.ProductID, line.Quantity, models.ToCents(line.UnitPrice))
		if err != nil {
			return nil, fmt.Errorf("inserting line for product %d: %w", line.ProductID, err)
		}
		line.ID, err = res.LastInsertId()
		if err != nil {
			return nil, err
		}
		line.SaleID = saleID
		sale.Lines = append(sale.Lines, line)
	}
	return sale, nil
}

// ListSales returns sales newest first with lines loaded. A zero customerID
// lists every customer; a non-zero since skips older sales.
func (t *Tx) ListSales(ctx context.Context, customerID int64, since time.Time) ([]models.Sale, error) {
	query := `SELECT s.id, s.sold_at, s.customer_id, c.name
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE 1 = 1`
	var args []any
	if customerID != 0 {
		query += ` AND s.customer_id = ?`
		args = append(args, customerID)
	}
	if !since.IsZero() {
		query += ` AND s.sold_at >= ?`
		args = append(args, since.Unix())
	}
	query += ` ORDER BY s.sold_at DESC, s.id DESC`

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	var sales []models.Sale
	index := make(map[int64]int)
	for rows.Next() {
		var s models.Sale
		var soldAt int64
		if err := rows.Scan(&s.ID, &soldAt, &s.CustomerID, &s.Customer); err != nil {
			rows.Close()
			return nil, err
		}
		s.SoldAt = time.Unix(soldAt, 0).UTC()
		index[s.ID] = len(sales)
		sales = append(sales, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, nil
	}

	ids := make([]any, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}
	lines, err := t.saleLines(ctx, "WHERE l.sale_id IN ("+placeholders(len(ids))+")", ids)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if i, ok := index[l.SaleID]; ok {
			sales[i].Lines = append(sales[i].Lines, l)
		}
	}
	return sales, nil
}

func (t *Tx) GetSale(ctx context.Context, saleID int64) (*models.Sale, error) {
	s := &models.Sale{}
	var soldAt int64
	err := t.tx.QueryRowContext(ctx,
		`SELECT s.id, s.sold_at, s.customer_id, c.name
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE s.id = ?`, saleID).Scan(&s.ID, &soldAt, &s.CustomerID, &s.Customer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("sale %d", saleID)
	}
	if err != nil {
		return nil, classify(err)
	}
	s.SoldAt = time.Unix(soldAt, 0).UTC()

	s.Lines, err = t.saleLines(ctx, "WHERE l.sale_id = ?", []any{saleID})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (t *Tx) saleLines(ctx context.Context, where string, args []any) ([]models.SaleLine, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT l.id, l.sale_id, l.product_id, p.name, l.quantity, l.unit_price_cents
		FROM sale_lines l
		JOIN products p ON p.id = l.product_id
		`+where+`
		ORDER BY l.sale_id ASC, l.id ASC`, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var lines []models.SaleLine
	for rows.Next() {
		var l models.SaleLine
		var cents int64
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.ProductName, &l.Quantity, &cents); err != nil {
			return nil, err
		}
		l.UnitPrice = models.FromCents(cents)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (t *Tx) CountSales(ctx context.Context) (int, error) {
	return t.countRows(ctx, `SELECT COUNT(*) FROM sales`)
}
