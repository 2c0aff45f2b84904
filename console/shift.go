package console

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/reports"
)

func (a *App) listSales(ctx context.Context) error {
	a.p.println("\n--- Recorded Sales ---")
	list, err := a.Reports.ListSales(ctx)
	if err != nil {
		return a.report("listing sales", err)
	}
	if len(list) == 0 {
		a.p.println("No sales recorded.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{id(s.ID), s.SoldAt.Local().Format(timeLayout), s.Customer, a.money(s.Total())})
	}
	a.table([]string{"ID", "Date/Time", "Customer", "Total"}, rows)

	sid, err := a.p.readID("\nSale ID for details (0 to go back): ")
	if err != nil || sid == 0 {
		return err
	}
	sale, err := a.Reports.GetSale(ctx, sid)
	if err != nil {
		return a.report("finding sale", err)
	}
	a.printReceipt(sale)
	return nil
}

// closeShift prints the summary of every recorded sale and, when configured,
// writes it as a PDF. Sales from earlier sessions are included.
func (a *App) closeShift(ctx context.Context) error {
	summary, err := a.Reports.ShiftSummary(ctx, time.Time{})
	if err != nil {
		return a.report("closing shift", err)
	}

	a.p.println("\n" + rule)
	a.p.println("SHIFT CLOSE")
	a.p.println(rule)
	a.p.printf("Session opened: %s\n", a.shiftStart.Local().Format(timeLayout))
	a.p.printf("Closed: %s\n\n", summary.GeneratedAt.Local().Format(timeLayout))

	if len(summary.ByCustomer) == 0 {
		a.p.println("No sales recorded.")
	} else {
		rows := make([][]string, 0, len(summary.ByCustomer))
		for _, c := range summary.ByCustomer {
			rows = append(rows, []string{c.Name, a.money(c.Total)})
		}
		a.table([]string{"Customer", "Total Spent"}, rows)
	}
	a.p.printf("\nShift total: %s\n\n", a.money(summary.GrandTotal))

	a.p.println("--- Out of Stock ---")
	if len(summary.OutOfStock) == 0 {
		a.p.println("No product is out of stock.")
	} else {
		rows := make([][]string, 0, len(summary.OutOfStock))
		for _, p := range summary.OutOfStock {
			rows = append(rows, []string{id(p.ID), p.Name, fmt.Sprint(p.Quantity)})
		}
		a.table([]string{"ID", "Name", "Qty"}, rows)
	}
	a.logger.Info("shift closed",
		zap.Duration("length", time.Since(a.shiftStart).Round(time.Second)),
		zap.String("total", summary.GrandTotal.StringFixed(2)))

	if a.opts.ShiftReportPDF != "" {
		if err := a.writeShiftPDF(summary); err != nil {
			a.logger.Error("writing shift report failed", zap.String("path", a.opts.ShiftReportPDF), zap.Error(err))
			a.p.printf("Could not write the shift report: %s\n", err)
		} else {
			a.p.printf("Shift report saved to %s\n", a.opts.ShiftReportPDF)
		}
	}
	return nil
}

func (a *App) writeShiftPDF(summary *reports.ShiftSummary) error {
	f, err := os.Create(a.opts.ShiftReportPDF)
	if err != nil {
		return err
	}
	if err := reports.WriteShiftPDF(f, summary, a.opts.Currency); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
