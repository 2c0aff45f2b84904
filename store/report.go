package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cupoftea4/retail-pos/models"
)

// CustomerTotals sums sale revenue per customer name for sales at or after
// since (all sales when since is zero), highest total first.
func (t *Tx) CustomerTotals(ctx context.Context, since time.Time) ([]models.CustomerTotal, error) {
	var sinceUnix int64
	if !since.IsZero() {
		sinceUnix = since.Unix()
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT c.name, SUM(l.quantity * l.unit_price_cents) AS total
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		JOIN sale_lines l ON l.sale_id = s.id
		WHERE s.sold_at >= ?
		GROUP BY c.name
		ORDER BY total DESC, c.name ASC`, sinceUnix)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var totals []models.CustomerTotal
	for rows.Next() {
		var ct models.CustomerTotal
		var cents int64
		if err := rows.Scan(&ct.Name, &cents); err != nil {
			return nil, err
		}
		ct.Total = models.FromCents(cents)
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// CustomerSaleCounts counts sales per customer. With limit > 0 the result is
// the top customers by count, otherwise every customer with a sale by id.
func (t *Tx) CustomerSaleCounts(ctx context.Context, limit int) ([]models.CustomerSaleCount, error) {
	query := `SELECT c.id, c.name, COUNT(s.id) AS sale_count
		FROM customers c
		JOIN sales s ON s.customer_id = c.id
		GROUP BY c.id, c.name`
	var args []any
	if limit > 0 {
		query += ` ORDER BY sale_count DESC, c.id ASC LIMIT ?`
		args = append(args, limit)
	} else {
		query += ` ORDER BY c.id ASC`
	}

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var counts []models.CustomerSaleCount
	for rows.Next() {
		var cc models.CustomerSaleCount
		if err := rows.Scan(&cc.ID, &cc.Name, &cc.Sales); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}

func (t *Tx) TopCustomersBySpend(ctx context.Context, limit int) ([]models.CustomerSpend, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT c.id, c.name, SUM(l.quantity * l.unit_price_cents) AS spent
		FROM customers c
		JOIN sales s ON s.customer_id = c.id
		JOIN sale_lines l ON l.sale_id = s.id
		GROUP BY c.id, c.name
		ORDER BY spent DESC, c.id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var spends []models.CustomerSpend
	for rows.Next() {
		var cs models.CustomerSpend
		var cents int64
		if err := rows.Scan(&cs.ID, &cs.Name, &cents); err != nil {
			return nil, err
		}
		cs.Total = models.FromCents(cents)
		spends = append(spends, cs)
	}
	return spends, rows.Err()
}

// ProductUnitsSold ranks products by units sold. Products without sales
// count as zero.
func (t *Tx) ProductUnitsSold(ctx context.Context, limit int, descending bool) ([]models.ProductSales, error) {
	order := `units ASC, p.id ASC`
	if descending {
		order = `units DESC, p.id ASC`
	}
	rows, err := t.tx.QueryContext(ctx,
		`SELECT p.id, p.name, COALESCE(SUM(l.quantity), 0) AS units
		FROM products p
		LEFT JOIN sale_lines l ON l.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY `+order+`
		LIMIT ?`, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var ranked []models.ProductSales
	for rows.Next() {
		var ps models.ProductSales
		var units sql.NullInt64
		if err := rows.Scan(&ps.ProductID, &ps.Name, &units); err != nil {
			return nil, err
		}
		ps.UnitsSold = int(units.Int64)
		ranked = append(ranked, ps)
	}
	return ranked, rows.Err()
}
