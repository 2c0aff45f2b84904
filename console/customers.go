package console

import (
	"context"
	"fmt"
)

func (a *App) managementMenu(ctx context.Context) error {
	for {
		a.p.println("\n=== Management ===")
		a.p.println("1: Customers")
		a.p.println("2: Products")
		a.p.println("3: Suppliers")
		a.p.println("X: Back")
		choice, err := a.p.readLine("Enter choice: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = a.customersMenu(ctx)
		case "2":
			err = a.productsMenu(ctx)
		case "3":
			err = a.suppliersMenu(ctx)
		case "X", "x":
			return nil
		default:
			a.p.println("Invalid choice. Please enter a valid option.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) customersMenu(ctx context.Context) error {
	for {
		a.p.println("\n=== Management > Customers ===")
		a.p.println("1: Register Customer")
		a.p.println("2: List Customers")
		a.p.println("3: Update Customer")
		a.p.println("4: Delete Customer")
		a.p.println("5: Queries")
		a.p.println("X: Back")
		choice, err := a.p.readLine("Enter choice: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = a.registerCustomer(ctx)
		case "2":
			err = a.listCustomers(ctx)
		case "3":
			err = a.updateCustomer(ctx)
		case "4":
			err = a.deleteCustomer(ctx)
		case "5":
			err = a.customerQueries(ctx)
		case "X", "x":
			return nil
		default:
			a.p.println("Invalid choice. Please enter a valid option.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) registerCustomer(ctx context.Context) error {
	name, err := a.p.readLine("Customer name (ENTER to generate): ")
	if err != nil {
		return err
	}
	c, err := a.Customers.Create(ctx, name)
	if err != nil {
		return a.report("registering customer", err)
	}
	a.p.printf("Customer %q registered with ID %d.\n", c.Name, c.ID)
	return nil
}

func (a *App) listCustomers(ctx context.Context) error {
	list, err := a.Customers.List(ctx)
	if err != nil {
		return a.report("listing customers", err)
	}
	if len(list) == 0 {
		a.p.println("No customers registered.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{id(c.ID), c.Name})
	}
	a.p.println("\n--- Customers ---")
	a.table([]string{"ID", "Name"}, rows)
	return nil
}

func (a *App) updateCustomer(ctx context.Context) error {
	cid, err := a.p.readInt("Customer ID: ", 1)
	if err != nil {
		return err
	}
	name, err := a.p.readLine("New name: ")
	if err != nil {
		return err
	}
	if _, err := a.Customers.Update(ctx, int64(cid), name); err != nil {
		return a.report("updating customer", err)
	}
	a.p.println("Customer updated.")
	return nil
}

func (a *App) deleteCustomer(ctx context.Context) error {
	cid, err := a.p.readInt("Customer ID: ", 1)
	if err != nil {
		return err
	}
	has, err := a.Customers.HasSales(ctx, int64(cid))
	if err != nil {
		return a.report("checking customer sales", err)
	}
	if has {
		a.p.println("Cannot delete: customer has recorded sales.")
		return nil
	}
	if _, err := a.Customers.Delete(ctx, int64(cid)); err != nil {
		return a.report("deleting customer", err)
	}
	a.p.println("Customer deleted.")
	return nil
}

func (a *App) customerQueries(ctx context.Context) error {
	for {
		a.p.println("\n--- Customers > Queries ---")
		a.p.println("1: Customers with Sales (history and receipts)")
		a.p.println("2: Customers without Sales")
		a.p.println("3: Top Customers by Number of Sales")
		a.p.println("4: Top Customers by Total Spent")
		a.p.println("X: Back")
		choice, err := a.p.readLine("Enter choice: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = a.customersWithSales(ctx)
		case "2":
			err = a.customersWithoutSales(ctx)
		case "3":
			err = a.topBySaleCount(ctx)
		case "4":
			err = a.topBySpend(ctx)
		case "X", "x":
			return nil
		default:
			a.p.println("Invalid choice. Please enter a valid option.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) customersWithSales(ctx context.Context) error {
	list, err := a.Reports.CustomersWithSales(ctx)
	if err != nil {
		return a.report("listing customers", err)
	}
	if len(list) == 0 {
		a.p.println("No customer has recorded sales.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{id(c.ID), c.Name, fmt.Sprint(c.Sales)})
	}
	a.p.println("\n--- Customers with Sales ---")
	a.table([]string{"ID", "Customer", "Sales"}, rows)

	cid, err := a.p.readID("Customer ID for history (0 to go back): ")
	if err != nil || cid == 0 {
		return err
	}
	return a.customerHistory(ctx, cid)
}

// customerHistory lists a customer's sales newest first and reprints a
// chosen receipt.
func (a *App) customerHistory(ctx context.Context, customerID int64) error {
	c, err := a.Customers.Get(ctx, customerID)
	if err != nil {
		return a.report("finding customer", err)
	}
	history, err := a.Reports.SalesForCustomer(ctx, customerID)
	if err != nil {
		return a.report("listing sales", err)
	}
	if len(history) == 0 {
		a.p.printf("%s has no recorded sales.\n", c.Name)
		return nil
	}

	a.p.printf("\nSales of %s (newest first):\n", c.Name)
	rows := make([][]string, 0, len(history))
	for _, s := range history {
		rows = append(rows, []string{id(s.ID), s.SoldAt.Local().Format(timeLayout), a.money(s.Total())})
	}
	a.table([]string{"Sale ID", "Date/Time", "Total"}, rows)

	sid, err := a.p.readID("\nSale ID to show the receipt (0 to go back): ")
	if err != nil || sid == 0 {
		return err
	}
	for i := range history {
		if history[i].ID == sid {
			a.printReceipt(&history[i])
			return nil
		}
	}
	a.p.println("Sale not found for this customer.")
	return nil
}

func (a *App) customersWithoutSales(ctx context.Context) error {
	list, err := a.Reports.CustomersWithoutSales(ctx)
	if err != nil {
		return a.report("listing customers", err)
	}
	if len(list) == 0 {
		a.p.println("Every customer has bought something.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{id(c.ID), c.Name})
	}
	a.p.println("\n--- Customers without Sales ---")
	a.table([]string{"ID", "Name"}, rows)
	return nil
}

func (a *App) readTopN() (int, error) {
	text, err := a.p.readLine(fmt.Sprintf("Top N (ENTER for %d): ", a.opts.TopN))
	if err != nil || text == "" {
		return a.opts.TopN, err
	}
	var n int
	if _, err := fmt.Sscan(text, &n); err != nil || n < 1 {
		a.p.printf("Invalid number, using %d.\n", a.opts.TopN)
		return a.opts.TopN, nil
	}
	return n, nil
}

func (a *App) topBySaleCount(ctx context.Context) error {
	n, err := a.readTopN()
	if err != nil {
		return err
	}
	list, err := a.Reports.TopCustomersBySaleCount(ctx, n)
	if err != nil {
		return a.report("ranking customers", err)
	}
	if len(list) == 0 {
		a.p.println("No sales recorded yet.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{id(c.ID), c.Name, fmt.Sprint(c.Sales)})
	}
	a.p.printf("\n--- Top %d Customers by Number of Sales ---\n", n)
	a.table([]string{"ID", "Customer", "Sales"}, rows)
	return nil
}

func (a *App) topBySpend(ctx context.Context) error {
	n, err := a.readTopN()
	if err != nil {
		return err
	}
	list, err := a.Reports.TopCustomersBySpend(ctx, n)
	if err != nil {
		return a.report("ranking customers", err)
	}
	if len(list) == 0 {
		a.p.println("No sales recorded yet.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{id(c.ID), c.Name, a.money(c.Total)})
	}
	a.p.printf("\n--- Top %d Customers by Total Spent ---\n", n)
	a.table([]string{"ID", "Customer", "Total Spent"}, rows)
	return nil
}
