package sales_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/catalog"
	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/sales"
	"github.com/cupoftea4/retail-pos/store"
	"github.com/cupoftea4/retail-pos/store/storetest"
)

type checkoutTestContext struct {
	t        *testing.T
	store    *store.Store
	catalog  *catalog.Service
	engine   *sales.Engine
	products map[string]int64
	checkout *sales.Checkout
	receipt  *sales.Receipt
	err      error
}

func (c *checkoutTestContext) reset() {
	c.store = storetest.New(c.t)
	c.catalog = catalog.NewService(c.store, zap.NewNop())
	c.engine = sales.NewEngine(c.store, c.catalog, zap.NewNop())
	c.products = make(map[string]int64)
	c.checkout = nil
	c.receipt = nil
	c.err = nil
}

func (c *checkoutTestContext) theCatalog(table *godog.Table) error {
	ctx := context.Background()
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		var qty int
		if _, err := fmt.Sscan(row.Cells[1].Value, &qty); err != nil {
			return err
		}
		price, err := decimal.NewFromString(row.Cells[2].Value)
		if err != nil {
			return err
		}
		p, err := c.catalog.CreateProduct(ctx, models.ProductCreate{Name: row.Cells[0].Value, Quantity: qty, Price: price})
		if err != nil {
			return err
		}
		c.products[p.Name] = p.ID
	}
	return nil
}

func (c *checkoutTestContext) aCustomerNamed(name string) error {
	ctx := context.Background()
	return c.store.WithTx(ctx, func(tx *store.Tx) error {
		id, err := tx.InsertCustomer(ctx, models.Customer{Name: name})
		if err != nil {
			return err
		}
		c.checkout = c.engine.Begin(models.Customer{ID: id, Name: name})
		return nil
	})
}

func (c *checkoutTestContext) theCashierAdds(quantity int, name string) error {
	_, c.err = c.checkout.Add(context.Background(), c.products[name], quantity)
	return nil
}

func (c *checkoutTestContext) theCashierFinishes() error {
	c.receipt, c.err = c.checkout.Finish(context.Background())
	return nil
}

func (c *checkoutTestContext) aSaleIsRecordedWithLines(n int) error {
	if c.err != nil {
		return c.err
	}
	if got := len(c.receipt.Sale.Lines); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theSaleTotalIs(total string) error {
	if got := c.receipt.Total().StringFixed(2); got != total {
		return fmt.Errorf("expected total %s, got %s", total, got)
	}
	return nil
}

func (c *checkoutTestContext) theStockOfIs(name string, want int) error {
	p, err := c.catalog.GetProduct(context.Background(), c.products[name])
	if err != nil {
		return err
	}
	if p.Quantity != want {
		return fmt.Errorf("expected stock %d for %s, got %d", want, name, p.Quantity)
	}
	return nil
}

func (c *checkoutTestContext) theLineForHasQuantity(name string, want int) error {
	for _, l := range c.receipt.Sale.Lines {
		if l.ProductID == c.products[name] {
			if l.Quantity != want {
				return fmt.Errorf("expected quantity %d, got %d", want, l.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("no line for %s", name)
}

func (c *checkoutTestContext) theItemIsRejectedWithAvailable(available int) error {
	var short *models.InsufficientStockError
	if !errors.As(c.err, &short) {
		return fmt.Errorf("expected insufficient stock, got %v", c.err)
	}
	if short.Available != available {
		return fmt.Errorf("expected %d available, got %d", available, short.Available)
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutIsStillCollecting() error {
	if s := c.checkout.State(); s != sales.StateCollecting {
		return fmt.Errorf("expected collecting, got %s", s)
	}
	return nil
}

func (c *checkoutTestContext) noSaleIsRecorded() error {
	if !errors.Is(c.err, models.ErrNoSale) {
		return fmt.Errorf("expected no sale, got %v", c.err)
	}
	ctx := context.Background()
	return c.store.WithTx(ctx, func(tx *store.Tx) error {
		n, err := tx.CountSales(ctx)
		if err != nil {
			return err
		}
		if n != 0 {
			return fmt.Errorf("expected no sales, found %d", n)
		}
		return nil
	})
}

func TestCheckoutFeatures(t *testing.T) {
	tc := &checkoutTestContext{t: t}

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
				tc.reset()
				return ctx, nil
			})

			ctx.Step(`^the catalog:$`, tc.theCatalog)
			ctx.Step(`^a customer named "([^"]*)"$`, tc.aCustomerNamed)
			ctx.Step(`^the cashier adds (\d+) of "([^"]*)"$`, tc.theCashierAdds)
			ctx.Step(`^the cashier finishes the checkout$`, tc.theCashierFinishes)
			ctx.Step(`^a sale is recorded with (\d+) lines$`, tc.aSaleIsRecordedWithLines)
			ctx.Step(`^the sale total is (\d+\.\d{2})$`, tc.theSaleTotalIs)
			ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
			ctx.Step(`^the line for "([^"]*)" has quantity (\d+)$`, tc.theLineForHasQuantity)
			ctx.Step(`^the item is rejected with (\d+) available$`, tc.theItemIsRejectedWithAvailable)
			ctx.Step(`^the checkout is still collecting$`, tc.theCheckoutIsStillCollecting)
			ctx.Step(`^no sale is recorded$`, tc.noSaleIsRecorded)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
