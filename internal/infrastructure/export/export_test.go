package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/tax"
	"docflow/internal/infrastructure/export"
)

func mixedInvoice(t *testing.T) *invoice.Invoice {
	t.Helper()
	issue := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	inv := invoice.NewInvoice(id.New(), issue, issue.AddDate(0, 0, 30))
	inv.Number = "INV-2025-00001"
	inv.Items = []entity.LineItem{
		{LineNo: 1, ItemName: "Rice 5kg", Quantity: 3, UnitPrice: types.Yen(333), TaxRate: tax.ReducedRate},
		{LineNo: 2, ItemName: "Paper A4", Quantity: 1, UnitPrice: types.Yen(1000), TaxRate: tax.StandardRate},
	}
	_, err := tax.Apply(&inv.Document)
	require.NoError(t, err)
	return inv
}

func TestNewInvoiceRow_Breakdown(t *testing.T) {
	row, err := export.NewInvoiceRow(mixedInvoice(t), "Acme")
	require.NoError(t, err)

	assert.Equal(t, "999", row.Reduced.Taxable.String())
	assert.Equal(t, "79", row.Reduced.Tax.String())
	assert.Equal(t, "1000", row.Standard.Taxable.String())
	assert.Equal(t, "100", row.Standard.Tax.String())
	assert.Equal(t, "2178", row.TotalAmount.String())
}

func TestNewInvoiceRow_MissingRateIsZero(t *testing.T) {
	inv := mixedInvoice(t)
	inv.Items = inv.Items[1:]
	row, err := export.NewInvoiceRow(inv, "Acme")
	require.NoError(t, err)
	assert.True(t, row.Reduced.Taxable.IsZero())
	assert.True(t, row.Reduced.Tax.IsZero())
}

func TestWriteCSV(t *testing.T) {
	row, err := export.NewInvoiceRow(mixedInvoice(t), "Acme, Inc.")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, []export.InvoiceRow{row}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, export.CSVHeader, records[0])
	assert.Equal(t, []string{
		"INV-2025-00001", "Acme, Inc.", "DRAFT", "2025-06-01", "2025-07-01",
		"1999", "179", "2178", "999", "79", "1000", "100",
	}, records[1])
}

func TestWritePDF(t *testing.T) {
	row, err := export.NewInvoiceRow(mixedInvoice(t), "Acme")
	require.NoError(t, err)

	rows := make([]export.InvoiceRow, 60)
	for i := range rows {
		rows[i] = row
	}

	var buf bytes.Buffer
	require.NoError(t, export.WritePDF(&buf, "Invoices June 2025", time.Now(), rows))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTotals(t *testing.T) {
	row, err := export.NewInvoiceRow(mixedInvoice(t), "Acme")
	require.NoError(t, err)

	subtotal, taxAmount, total := export.Totals([]export.InvoiceRow{row, row})
	assert.Equal(t, "3998", subtotal.String())
	assert.Equal(t, "358", taxAmount.String())
	assert.Equal(t, "4356", total.String())
}
