package models

import "github.com/shopspring/decimal"

type CustomerSaleCount struct {
	Customer
	Sales int `json:"sales"`
}

type CustomerSpend struct {
	Customer
	Total decimal.Decimal `json:"total"`
}

// CustomerTotal is revenue grouped by customer name.
type CustomerTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

type ProductSales struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int    `json:"units_sold"`
}
