package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Supplier struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Suppliers []Supplier      `json:"suppliers,omitempty"`
}

type ProductCreate struct {
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	SupplierIDs []int64         `json:"supplier_ids"`
}

// ProductUpdate replaces only the non-nil fields. A nil SupplierIDs keeps the
// current associations; a non-nil empty slice removes them all.
type ProductUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	SupplierIDs *[]int64         `json:"supplier_ids,omitempty"`
}

type Sale struct {
	ID         int64      `json:"id"`
	SoldAt     time.Time  `json:"sold_at"`
	CustomerID int64      `json:"customer_id"`
	Customer   string     `json:"customer"`
	Lines      []SaleLine `json:"lines"`
}

// Total is the sum of the line subtotals.
func (s Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

type SaleLine struct {
	ID          int64           `json:"id"`
	SaleID      int64           `json:"sale_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (l SaleLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
