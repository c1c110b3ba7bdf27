package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"docflow/internal/core/types"
)

// CSVHeader is the first record of every CSV export.
var CSVHeader = []string{
	"number", "vendor", "status", "issue_date", "due_date",
	"subtotal", "tax_amount", "total_amount",
	"taxable_8", "tax_8", "taxable_10", "tax_10",
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []InvoiceRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.Number,
			r.VendorName,
			r.Status,
			formatDate(&r.IssueDate),
			formatDate(r.DueDate),
			types.FormatAmount(r.Subtotal),
			types.FormatAmount(r.TaxAmount),
			types.FormatAmount(r.TotalAmount),
			types.FormatAmount(r.Reduced.Taxable),
			types.FormatAmount(r.Reduced.Tax),
			types.FormatAmount(r.Standard.Taxable),
			types.FormatAmount(r.Standard.Tax),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.Number, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
