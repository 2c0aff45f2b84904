// Package console is the cashier's interactive terminal: checkout, store
// management, sales history and the end-of-shift close.
package console

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/catalog"
	"github.com/cupoftea4/retail-pos/customers"
	"github.com/cupoftea4/retail-pos/reports"
	"github.com/cupoftea4/retail-pos/sales"
)

type Deps struct {
	Customers *customers.Service
	Catalog   *catalog.Service
	Engine    *sales.Engine
	Reports   *reports.Service
	Logger    *zap.Logger
}

type Options struct {
	Currency string
	// TopN is offered as the default size of ranking reports.
	TopN int
	// ShiftReportPDF, when set, receives a PDF copy of the shift summary.
	ShiftReportPDF string
}

type App struct {
	Deps
	opts       Options
	p          *prompter
	shiftStart time.Time
	logger     *zap.Logger
}

func New(in io.Reader, out io.Writer, deps Deps, opts Options) *App {
	if opts.Currency == "" {
		opts.Currency = "R$"
	}
	if opts.TopN <= 0 {
		opts.TopN = 5
	}
	return &App{
		Deps:   deps,
		opts:   opts,
		p:      newPrompter(in, out),
		logger: deps.Logger.Named("console"),
	}
}

// Run shows the main menu until the shift is closed or input ends.
func (a *App) Run(ctx context.Context) error {
	a.shiftStart = time.Now()
	a.logger.Info("shift started")

	err := a.mainMenu(ctx)
	if errors.Is(err, ErrInputClosed) {
		a.logger.Info("input closed, leaving without closing the shift")
		return nil
	}
	return err
}

func (a *App) mainMenu(ctx context.Context) error {
	for {
		a.p.println("\n==== Market Point of Sale ====")
		a.p.println("1: Checkout")
		a.p.println("2: Management")
		a.p.println("3: List Sales")
		a.p.println("X: Close Shift and Exit")
		choice, err := a.p.readLine("Enter choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = a.checkout(ctx)
		case "2":
			err = a.managementMenu(ctx)
		case "3":
			err = a.listSales(ctx)
		case "X", "x":
			if err := a.closeShift(ctx); err != nil {
				return err
			}
			a.p.println("Shift closed. Goodbye!")
			return nil
		default:
			a.p.println("Invalid choice. Please enter a valid option.")
		}
		if err != nil {
			return err
		}
	}
}

// report prints a failed operation and keeps the session going. Input
// errors are returned so that menus unwind.
func (a *App) report(action string, err error) error {
	if errors.Is(err, ErrInputClosed) {
		return err
	}
	a.p.printf("Error %s: %s\n", action, describe(err))
	return nil
}
