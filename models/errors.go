package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrValidation     = errors.New("validation error")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrIntegrity      = errors.New("integrity violation")
	ErrExternalSource = errors.New("external source error")
	// ErrNoSale is returned when a checkout ends without any accepted item.
	ErrNoSale = errors.New("no sale")
)

// InsufficientStockError reports a requested quantity above what is available.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	if e.Available == 0 {
		return fmt.Sprintf("product %d is out of stock", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for product %d: requested %d, maximum available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrValidation }

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func Invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}
