package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cupoftea4/retail-pos/models"
)

func (a *App) productsMenu(ctx context.Context) error {
	for {
		a.p.println("\n=== Management > Products ===")
		a.p.println("1: Add Product")
		a.p.println("2: List Products")
		a.p.println("3: Update Product")
		a.p.println("4: Delete Product")
		a.p.println("5: Queries")
		a.p.println("X: Back")
		choice, err := a.p.readLine("Enter choice: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = a.addProduct(ctx)
		case "2":
			err = a.listProducts(ctx)
		case "3":
			err = a.updateProduct(ctx)
		case "4":
			err = a.deleteProduct(ctx)
		case "5":
			err = a.productQueries(ctx)
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

func (a *App) addProduct(ctx context.Context) error {
	var in models.ProductCreate
	var err error
	if in.Name, err = a.p.readLine("Name: "); err != nil {
		return err
	}
	if in.Quantity, err = a.p.readInt("Quantity: ", 0); err != nil {
		return err
	}
	if in.Price, err = a.p.readDecimal("Price: "); err != nil {
		return err
	}
	if in.SupplierIDs, err = a.chooseSuppliers(ctx); err != nil {
		return err
	}

	p, err := a.Catalog.CreateProduct(ctx, in)
	if err != nil {
		return a.report("adding product", err)
	}
	a.p.printf("Product added with ID %d.\n", p.ID)
	if len(p.Suppliers) < len(in.SupplierIDs) {
		a.p.println("Some supplier ids do not exist and were ignored.")
	}
	return nil
}

// chooseSuppliers shows the registered suppliers and reads a comma
// separated selection.
func (a *App) chooseSuppliers(ctx context.Context) ([]int64, error) {
	if err := a.listSuppliers(ctx); err != nil {
		return nil, err
	}
	return a.p.readIDs("Supplier IDs, comma separated (ENTER for none): ")
}

func (a *App) listProducts(ctx context.Context) error {
	list, err := a.Catalog.ListProducts(ctx)
	if err != nil {
		return a.report("listing products", err)
	}
	if len(list) == 0 {
		a.p.println("No products registered.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{id(p.ID), p.Name, fmt.Sprint(p.Quantity), a.money(p.Price), supplierNames(p.Suppliers)})
	}
	a.p.println("\n--- Products ---")
	a.table([]string{"ID", "Name", "Qty", "Price", "Suppliers"}, rows)
	return nil
}

func supplierNames(suppliers []models.Supplier) string {
	if len(suppliers) == 0 {
		return "N/A"
	}
	names := make([]string, len(suppliers))
	for i, s := range suppliers {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}

func (a *App) updateProduct(ctx context.Context) error {
	pid, err := a.p.readInt("Product ID: ", 1)
	if err != nil {
		return err
	}
	current, err := a.Catalog.GetProduct(ctx, int64(pid))
	if err != nil {
		return a.report("finding product", err)
	}
	a.p.printf("Current: name=%s, qty=%d, price=%s\n", current.Name, current.Quantity, current.Price.StringFixed(2))

	var in models.ProductUpdate
	name, err := a.p.readLine("New name (ENTER keeps): ")
	if err != nil {
		return err
	}
	if name != "" {
		in.Name = &name
	}

	text, err := a.p.readLine("New quantity (ENTER keeps): ")
	if err != nil {
		return err
	}
	if text != "" {
		qty, err := strconv.Atoi(text)
		if err != nil {
			a.p.println("Invalid quantity.")
			return nil
		}
		in.Quantity = &qty
	}

	text, err = a.p.readLine("New price (ENTER keeps): ")
	if err != nil {
		return err
	}
	if text != "" {
		price, err := parseAmount(text)
		if err != nil {
			a.p.println("Invalid price.")
			return nil
		}
		in.Price = &price
	}

	a.p.println("\nUpdate suppliers?")
	a.p.println("1: Keep as is")
	a.p.println("2: Replace supplier list")
	choice, err := a.p.readLine("Enter choice: ")
	if err != nil {
		return err
	}
	if choice == "2" {
		ids, err := a.chooseSuppliers(ctx)
		if err != nil {
			return err
		}
		if ids == nil {
			ids = []int64{}
		}
		in.SupplierIDs = &ids
	}

	if _, err := a.Catalog.UpdateProduct(ctx, int64(pid), in); err != nil {
		return a.report("updating product", err)
	}
	a.p.println("Product updated.")
	return nil
}

func (a *App) deleteProduct(ctx context.Context) error {
	pid, err := a.p.readInt("Product ID: ", 1)
	if err != nil {
		return err
	}
	if err := a.Catalog.DeleteProduct(ctx, int64(pid)); err != nil {
		return a.report("deleting product", err)
	}
	a.p.println("Product deleted.")
	return nil
}

func (a *App) productQueries(ctx context.Context) error {
	for {
		a.p.println("\n--- Products > Queries ---")
		a.p.println("1: Best and Worst Sellers")
		a.p.println("2: Low Stock")
		a.p.println("3: Suppliers of a Product")
		a.p.println("X: Back")
		choice, err := a.p.readLine("Enter choice: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = a.bestAndWorstSellers(ctx)
		case "2":
			err = a.lowStock(ctx)
		case "3":
			err = a.productSuppliers(ctx)
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

func (a *App) bestAndWorstSellers(ctx context.Context) error {
	n, err := a.readTopN()
	if err != nil {
		return err
	}
	for _, desc := range []bool{true, false} {
		list, err := a.Reports.ProductsBySales(ctx, n, desc)
		if err != nil {
			return a.report("ranking products", err)
		}
		title := "Best"
		if !desc {
			title = "Worst"
		}
		rows := make([][]string, 0, len(list))
		for _, p := range list {
			rows = append(rows, []string{id(p.ProductID), p.Name, fmt.Sprint(p.UnitsSold)})
		}
		a.p.printf("\n--- Top %d %s Sellers ---\n", n, title)
		a.table([]string{"ID", "Product", "Units Sold"}, rows)
	}
	return nil
}

func (a *App) lowStock(ctx context.Context) error {
	threshold, err := a.p.readInt("Low stock means at most: ", 0)
	if err != nil {
		return err
	}
	list, err := a.Reports.LowStock(ctx, threshold)
	if err != nil {
		return a.report("listing low stock", err)
	}
	if len(list) == 0 {
		a.p.println("No products at or below that stock level.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, p := range list {
		rows = append(rows, []string{id(p.ID), p.Name, fmt.Sprint(p.Quantity)})
	}
	a.p.println("\n--- Low Stock ---")
	a.table([]string{"ID", "Product", "Stock"}, rows)
	return nil
}

func (a *App) productSuppliers(ctx context.Context) error {
	pid, err := a.p.readInt("Product ID: ", 1)
	if err != nil {
		return err
	}
	p, err := a.Reports.SuppliersForProduct(ctx, int64(pid))
	if err != nil {
		return a.report("finding product", err)
	}
	a.p.printf("\nSuppliers of %s (ID %d):\n", p.Name, p.ID)
	if len(p.Suppliers) == 0 {
		a.p.println("N/A (none associated)")
		return nil
	}
	rows := make([][]string, 0, len(p.Suppliers))
	for _, s := range p.Suppliers {
		rows = append(rows, []string{id(s.ID), s.Name})
	}
	a.table([]string{"Supplier ID", "Name"}, rows)
	return nil
}

func (a *App) suppliersMenu(ctx context.Context) error {
	for {
		a.p.println("\n=== Management > Suppliers ===")
		a.p.println("1: List Suppliers")
		a.p.println("2: Register Supplier")
		a.p.println("X: Back")
		choice, err := a.p.readLine("Enter choice: ")
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = a.listSuppliers(ctx)
		case "2":
			err = a.registerSupplier(ctx)
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

func (a *App) listSuppliers(ctx context.Context) error {
	list, err := a.Catalog.ListSuppliers(ctx)
	if err != nil {
		return a.report("listing suppliers", err)
	}
	if len(list) == 0 {
		a.p.println("No suppliers registered.")
		return nil
	}
	a.p.println("\nSuppliers:")
	for _, s := range list {
		a.p.printf("- %d | %s\n", s.ID, s.Name)
	}
	return nil
}

func (a *App) registerSupplier(ctx context.Context) error {
	name, err := a.p.readLine("Supplier name: ")
	if err != nil {
		return err
	}
	s, err := a.Catalog.CreateSupplier(ctx, name)
	if err != nil {
		return a.report("registering supplier", err)
	}
	a.p.printf("Supplier registered with ID %d.\n", s.ID)
	return nil
}
