package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"docflow/internal/core/types"
)

type pdfColumn struct {
	title string
	width float64
	align string
	value func(r InvoiceRow) string
}

var pdfColumns = []pdfColumn{
	{"Number", 32, "L", func(r InvoiceRow) string { return r.Number }},
	{"Vendor", 50, "L", func(r InvoiceRow) string { return r.VendorName }},
	{"Status", 24, "L", func(r InvoiceRow) string { return r.Status }},
	{"Issued", 24, "L", func(r InvoiceRow) string { return formatDate(&r.IssueDate) }},
	{"Due", 24, "L", func(r InvoiceRow) string { return formatDate(r.DueDate) }},
	{"Taxable 8%", 26, "R", func(r InvoiceRow) string { return types.FormatAmount(r.Reduced.Taxable) }},
	{"Tax 8%", 20, "R", func(r InvoiceRow) string { return types.FormatAmount(r.Reduced.Tax) }},
	{"Taxable 10%", 26, "R", func(r InvoiceRow) string { return types.FormatAmount(r.Standard.Taxable) }},
	{"Tax 10%", 20, "R", func(r InvoiceRow) string { return types.FormatAmount(r.Standard.Tax) }},
	{"Total", 28, "R", func(r InvoiceRow) string { return types.FormatAmount(r.TotalAmount) }},
}

// WritePDF renders rows as a landscape A4 table followed by a totals line.
func WritePDF(w io.Writer, title string, generatedAt time.Time, rows []InvoiceRow) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 12)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s, %d invoices", generatedAt.Format(time.DateTime), len(rows)))
	pdf.Ln(8)
	header()

	pdf.SetFont("Helvetica", "", 9)
	for _, r := range rows {
		if pdf.GetY() > 190 {
			pdf.AddPage()
			header()
			pdf.SetFont("Helvetica", "", 9)
		}
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, tr(c.value(r)), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	subtotal, taxAmount, total := Totals(rows)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Subtotal %s   Tax %s   Total %s",
		types.FormatAmount(subtotal), types.FormatAmount(taxAmount), types.FormatAmount(total)))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
