package console

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/sales"
)

func (a *App) checkout(ctx context.Context) error {
	a.p.println("\n--- Checkout ---")
	customer, err := a.chooseCustomer(ctx)
	if err != nil || customer == nil {
		return err
	}

	co := a.Engine.Begin(*customer)
	a.p.printf("\n=== Serving %s (ID: %d) ===\n", customer.Name, customer.ID)
	if err := a.collect(ctx, co); err != nil {
		if cerr := co.Cancel(context.WithoutCancel(ctx)); cerr != nil {
			a.logger.Error("cancelling interrupted checkout", zap.Error(cerr))
		}
		return err
	}

	receipt, err := co.Finish(ctx)
	switch {
	case errors.Is(err, models.ErrNoSale):
		a.p.println("\nNo products purchased.")
		return nil
	case err != nil:
		a.p.printf("\nSale could not be recorded: %s\n", describe(err))
		return nil
	}
	a.printReceipt(&receipt.Sale)
	if !receipt.Settled() {
		a.p.println("Warning: the sale is recorded but stock could not be updated for some items.")
		for _, e := range receipt.SettlementErrors {
			a.p.printf("  %s\n", describe(e))
		}
	}
	return nil
}

// chooseCustomer returns the customer to serve. Id 0 or an unknown id
// registers a new customer. A nil customer means the checkout is abandoned.
func (a *App) chooseCustomer(ctx context.Context) (*models.Customer, error) {
	cid, err := a.p.readID("Customer ID (0 to register a new customer): ")
	if err != nil {
		return nil, err
	}
	if cid > 0 {
		c, err := a.Customers.Get(ctx, cid)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, a.report("finding customer", err)
		}
		a.p.println("Customer not found. Registering a new customer.")
	}

	name, err := a.p.readLine("New customer name (ENTER to generate): ")
	if err != nil {
		return nil, err
	}
	c, err := a.Customers.Create(ctx, name)
	if err != nil {
		a.p.printf("Registration failed: %s. Back to main menu.\n", describe(err))
		return nil, nil
	}
	a.p.printf("Customer registered with ID %d.\n", c.ID)
	return c, nil
}

// collect reads items until the cashier enters product 0.
func (a *App) collect(ctx context.Context, co *sales.Checkout) error {
	for {
		a.p.println("\n--- New Item ---")
		pid, err := a.p.readID("Product ID (0 to finish): ")
		if err != nil {
			return err
		}
		if pid == 0 {
			return nil
		}

		offer, err := co.Lookup(ctx, pid)
		if err != nil {
			var stock *models.InsufficientStockError
			if errors.As(err, &stock) {
				a.p.println("Error: product is out of stock.")
				continue
			}
			if err := a.report("finding product", err); err != nil {
				return err
			}
			continue
		}
		a.p.printf("Product: %s | Stock: %d | Price: %s\n",
			offer.Product.Name, offer.Available, a.money(offer.Product.Price))

		qty, err := a.p.readInt("Quantity: ", 1)
		if err != nil {
			return err
		}
		item, err := co.Add(ctx, pid, qty)
		if err != nil {
			if err := a.report("adding item", err); err != nil {
				return err
			}
			continue
		}
		a.p.printf("%dx %s added to the cart.\n", item.Quantity, item.Name)
	}
}

func (a *App) printReceipt(sale *models.Sale) {
	a.p.println("\n" + rule)
	a.p.printf("RECEIPT | %s (Sale ID: %d)\n", sale.Customer, sale.ID)
	a.p.printf("Date: %s\n\n", sale.SoldAt.In(time.Local).Format(timeLayout))
	rows := make([][]string, 0, len(sale.Lines))
	for i, l := range sale.Lines {
		rows = append(rows, []string{
			fmt.Sprint(i + 1), l.ProductName, fmt.Sprint(l.Quantity), a.money(l.UnitPrice), a.money(l.Subtotal()),
		})
	}
	a.table([]string{"Item", "Product", "Qty", "Unit Price", "Total"}, rows)
	a.p.printf("\nTotal: %s\n", a.money(sale.Total()))
	a.p.println(rule)
}
