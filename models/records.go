package models

import "github.com/shopspring/decimal"

// Records below are the typed rows produced by the bulk importers. They are
// validated at the import boundary before reaching the services.

type CustomerRecord struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

type ProductRecord struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// SupplierRecord maps a supplier id used by the workbook to a name.
type SupplierRecord struct {
	ExternalID int64
	Name       string
}

// SupplierLink associates a product id with a workbook supplier id.
type SupplierLink struct {
	ProductID          int64
	ExternalSupplierID int64
}

type SupplierImport struct {
	Suppliers        int
	Links            int
	SkippedSuppliers int // links whose workbook supplier id was never defined
	SkippedProducts  int // links naming a product that does not exist
}
