package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// WriteShiftPDF renders the shift summary as a one-page A4 report.
func WriteShiftPDF(w io.Writer, summary *ShiftSummary, currency string) error {
	return shiftPDF(summary, currency, true).Output(w)
}

// shiftPDF lays out the report. Text is converted to cp1252, the encoding
// of the core fonts.
func shiftPDF(summary *ShiftSummary, currency string, compress bool) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	currency = tr(currency)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Shift Summary", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	if !summary.Since.IsZero() {
		pdf.CellFormat(0, 10, fmt.Sprintf("Since: %s", summary.Since.Local().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 10, fmt.Sprintf("Generated: %s", summary.GeneratedAt.Local().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 10, "Customer", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 10, "Total", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	if len(summary.ByCustomer) == 0 {
		pdf.CellFormat(170, 10, "No sales recorded", "1", 1, "C", false, 0, "")
	}
	for _, row := range summary.ByCustomer {
		pdf.CellFormat(120, 10, tr(row.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 10, money(currency, row.Total), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 10, "Grand total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 10, money(currency, summary.GrandTotal), "1", 1, "R", false, 0, "")
	pdf.Ln(8)

	pdf.CellFormat(0, 10, "Out of stock", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	if len(summary.OutOfStock) == 0 {
		pdf.CellFormat(0, 10, "None", "", 1, "L", false, 0, "")
	}
	for _, p := range summary.OutOfStock {
		pdf.CellFormat(20, 10, fmt.Sprintf("%d", p.ID), "1", 0, "C", false, 0, "")
		pdf.CellFormat(150, 10, tr(p.Name), "1", 1, "L", false, 0, "")
	}
	return pdf
}

func money(currency string, d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", currency, d.StringFixed(2))
}
