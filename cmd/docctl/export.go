package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docflow/internal/app"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/infrastructure/export"
	"docflow/internal/infrastructure/http/v1/dto"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export documents",
}

var exportInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Export invoices with their per-rate tax breakdown",
	Example: `  # All unpaid invoices as CSV
  docctl export invoices --status SENT,OVERDUE > unpaid.csv

  # June summary as PDF
  docctl export invoices --format pdf --from 2025-06-01 --to 2025-06-30 -o june.pdf`,
	RunE: runExportInvoices,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportInvoicesCmd)

	exportInvoicesCmd.Flags().String("format", "csv", "Output format: csv or pdf")
	exportInvoicesCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	exportInvoicesCmd.Flags().String("status", "", "Comma-separated statuses to include")
	exportInvoicesCmd.Flags().String("vendor", "", "Vendor id")
	exportInvoicesCmd.Flags().String("from", "", "Issue date from (YYYY-MM-DD)")
	exportInvoicesCmd.Flags().String("to", "", "Issue date to (YYYY-MM-DD)")
}

func runExportInvoices(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != "csv" && format != "pdf" {
		return fmt.Errorf("unsupported format %q, use csv or pdf", format)
	}

	q := dto.DocumentListQuery{}
	q.Status, _ = cmd.Flags().GetString("status")
	q.VendorID, _ = cmd.Flags().GetString("vendor")
	var err error
	if q.DateFrom, err = dateFlag(cmd, "from"); err != nil {
		return err
	}
	if q.DateTo, err = dateFlag(cmd, "to"); err != nil {
		return err
	}
	filter, err := q.ToFilter(lifecycle.InvoiceMachine())
	if err != nil {
		return err
	}

	return withContainer(cmd.Context(), func(c *app.Container) error {
		rows, err := export.CollectInvoiceRows(cmd.Context(), c.Invoices, c.Vendors, filter)
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			w = f
		}

		log.Infow("exporting invoices", "format", format, "rows", len(rows))
		if format == "pdf" {
			return export.WritePDF(w, "Invoices", time.Now().In(cfg.Location), rows)
		}
		return export.WriteCSV(w, rows)
	})
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q, use YYYY-MM-DD", name, s)
	}
	return &t, nil
}
