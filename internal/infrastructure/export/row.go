// Package export renders invoice lists as CSV or PDF. Amounts are always
// written as decimal strings.
package export

import (
	"time"

	"github.com/shopspring/decimal"

	"docflow/internal/core/types"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/tax"
)

// InvoiceRow is one exported invoice with its per-rate breakdown.
type InvoiceRow struct {
	Number      string
	VendorName  string
	Status      string
	IssueDate   time.Time
	DueDate     *time.Time
	Subtotal    types.Money
	TaxAmount   types.Money
	TotalAmount types.Money

	Reduced  tax.RateGroup // 8%
	Standard tax.RateGroup // 10%
}

// NewInvoiceRow builds a row from an invoice with its items loaded. Totals
// come from the stored header; the breakdown is recomputed from items.
func NewInvoiceRow(inv *invoice.Invoice, vendorName string) (InvoiceRow, error) {
	summary, err := tax.Compute(inv.Items)
	if err != nil {
		return InvoiceRow{}, err
	}

	return InvoiceRow{
		Number:      inv.Number,
		VendorName:  vendorName,
		Status:      string(inv.Status),
		IssueDate:   inv.Date,
		DueDate:     inv.DueDate,
		Subtotal:    inv.Subtotal,
		TaxAmount:   inv.TaxAmount,
		TotalAmount: inv.TotalAmount,
		Reduced:     group(summary, tax.ReducedRate),
		Standard:    group(summary, tax.StandardRate),
	}, nil
}

func group(s tax.Summary, rate types.Rate) tax.RateGroup {
	if g, ok := s.ByRate[tax.RateKey(rate)]; ok {
		return g
	}
	return tax.RateGroup{Rate: rate, Taxable: decimal.Zero, Tax: decimal.Zero}
}

// Totals sums the amount columns of rows.
func Totals(rows []InvoiceRow) (subtotal, taxAmount, total types.Money) {
	subtotal, taxAmount, total = decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		subtotal = subtotal.Add(r.Subtotal)
		taxAmount = taxAmount.Add(r.TaxAmount)
		total = total.Add(r.TotalAmount)
	}
	return subtotal, taxAmount, total
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
