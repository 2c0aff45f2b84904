package models

import "github.com/shopspring/decimal"

// ToCents converts a price into the integer cents stored in the database,
// rounding half away from zero.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
