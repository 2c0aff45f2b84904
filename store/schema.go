package store

import (
	"context"
	"fmt"
)

// Foreign keys from the association and line tables cascade to their parents.
// Prices are integer cents and sale timestamps unix seconds so both engines
// aggregate and compare them identically.
var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS customers (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id   INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id          INTEGER PRIMARY KEY,
			name        TEXT NOT NULL,
			quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			price_cents INTEGER NOT NULL CHECK (price_cents >= 0)
		)`,
		`CREATE TABLE IF NOT EXISTS product_suppliers (
			product_id  INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE ON UPDATE CASCADE,
			supplier_id INTEGER NOT NULL REFERENCES suppliers(id) ON DELETE CASCADE ON UPDATE CASCADE,
			PRIMARY KEY (product_id, supplier_id)
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id          INTEGER PRIMARY KEY,
			sold_at     INTEGER NOT NULL,
			customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE ON UPDATE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS sale_lines (
			id               INTEGER PRIMARY KEY,
			sale_id          INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE ON UPDATE CASCADE,
			product_id       INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE ON UPDATE CASCADE,
			quantity         INTEGER NOT NULL CHECK (quantity > 0),
			unit_price_cents INTEGER NOT NULL CHECK (unit_price_cents >= 0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_customer ON sales (customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sale_lines_sale ON sale_lines (sale_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sale_lines_product ON sale_lines (product_id)`,
	},
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS customers (
			id   BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id   BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS products (
			id          BIGINT AUTO_INCREMENT PRIMARY KEY,
			name        VARCHAR(255) NOT NULL,
			quantity    INT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			price_cents BIGINT NOT NULL CHECK (price_cents >= 0)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS product_suppliers (
			product_id  BIGINT NOT NULL,
			supplier_id BIGINT NOT NULL,
			PRIMARY KEY (product_id, supplier_id),
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE ON UPDATE CASCADE,
			FOREIGN KEY (supplier_id) REFERENCES suppliers(id) ON DELETE CASCADE ON UPDATE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS sales (
			id          BIGINT AUTO_INCREMENT PRIMARY KEY,
			sold_at     BIGINT NOT NULL,
			customer_id BIGINT NOT NULL,
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE CASCADE ON UPDATE CASCADE
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS sale_lines (
			id               BIGINT AUTO_INCREMENT PRIMARY KEY,
			sale_id          BIGINT NOT NULL,
			product_id       BIGINT NOT NULL,
			quantity         INT NOT NULL CHECK (quantity > 0),
			unit_price_cents BIGINT NOT NULL CHECK (unit_price_cents >= 0),
			FOREIGN KEY (sale_id) REFERENCES sales(id) ON DELETE CASCADE ON UPDATE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE ON UPDATE CASCADE
		) ENGINE=InnoDB`,
	},
}

// Migrate creates any missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	stmts, ok := schemas[s.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.driver)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}
