package console

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/cupoftea4/retail-pos/models"
)

const timeLayout = "02/01/2006 15:04"

// table renders rows as aligned columns under a header.
func (a *App) table(header []string, rows [][]string) {
	w := tabwriter.NewWriter(a.p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	underline := make([]string, len(header))
	for i, h := range header {
		underline[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(underline, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func (a *App) money(d decimal.Decimal) string {
	return a.opts.Currency + " " + d.StringFixed(2)
}

func id(v int64) string { return fmt.Sprint(v) }

// describe turns service errors into cashier-facing text.
func describe(err error) string {
	var stock *models.InsufficientStockError
	switch {
	case errors.As(err, &stock):
		if stock.Available == 0 {
			return "product is out of stock"
		}
		return fmt.Sprintf("insufficient stock, maximum available: %d", stock.Available)
	case errors.Is(err, models.ErrDuplicateName):
		return "that name is already registered"
	case errors.Is(err, models.ErrNotFound):
		return strings.TrimSuffix(err.Error(), ": "+models.ErrNotFound.Error()) + " not found"
	default:
		return err.Error()
	}
}

var rule = strings.Repeat("=", 60)

func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}
