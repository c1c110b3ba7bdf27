package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"docflow/internal/app"
	"docflow/internal/core/apperror"
	appctx "docflow/internal/core/context"
	"docflow/internal/core/entity"
	"docflow/internal/core/id"
	"docflow/internal/core/types"
	"docflow/internal/domain/catalogs/vendor"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/tax"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo vendors, and optionally a sample order and invoice",
	Long: `Seed creates a small vendor catalog. Vendors are matched by code, so
running it twice does not duplicate them.

With --demo it also creates a purchase order and a linked invoice with
reminder settings, useful for trying the reminder scan.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Bool("demo", false, "Also create a sample purchase order and invoice")
}

type vendorSeed struct {
	code, name, email string
	registration      string
}

var demoVendors = []vendorSeed{
	{"V-0001", "Kanda Shoji", "billing@kanda.example", "T1234567890123"},
	{"V-0002", "Ueno Foods", "ap@ueno.example", "T9876543210987"},
	{"V-0003", "Asakusa Office Supply", "invoice@asakusa.example", ""},
}

func runSeed(cmd *cobra.Command, args []string) error {
	demo, _ := cmd.Flags().GetBool("demo")
	ctx := appctx.WithUser(cmd.Context(), &appctx.UserContext{UserID: "docctl"})

	return withContainer(ctx, func(c *app.Container) error {
		var first *vendor.Vendor
		for _, s := range demoVendors {
			v, err := seedVendor(ctx, c.Vendors, s)
			if err != nil {
				return err
			}
			if first == nil {
				first = v
			}
		}
		if !demo {
			log.Info("seeding completed successfully")
			return nil
		}
		if err := seedDocuments(ctx, c, first); err != nil {
			return err
		}
		log.Info("seeding completed successfully")
		return nil
	})
}

func seedVendor(ctx context.Context, svc *vendor.Service, s vendorSeed) (*vendor.Vendor, error) {
	existing, err := svc.GetByCode(ctx, s.code)
	if err == nil {
		log.Infow("vendor already exists", "code", s.code, "vendor_id", existing.ID)
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("check vendor %s: %w", s.code, err)
	}

	v := vendor.NewVendor(s.code, s.name, s.email)
	if s.registration != "" {
		reg := s.registration
		v.RegistrationNumber = &reg
	}
	if err := svc.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create vendor %s: %w", s.code, err)
	}
	log.Infow("vendor created", "code", s.code, "vendor_id", v.ID)
	return v, nil
}

func seedDocuments(ctx context.Context, c *app.Container, v *vendor.Vendor) error {
	today := time.Now().In(cfg.Location)
	orderDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	po := purchase_order.NewPurchaseOrder(v.ID, orderDate)
	po.DeliveryAddress = "1-1 Marunouchi, Chiyoda-ku, Tokyo"
	po.SetItems([]entity.LineItem{
		{ItemName: "Rice 5kg", Quantity: 3, UnitPrice: types.Yen(2480), TaxRate: tax.ReducedRate, Category: "food"},
		{ItemName: "Copy paper A4", Quantity: 10, UnitPrice: types.Yen(550), TaxRate: tax.StandardRate},
	})
	if err := c.PurchaseOrders.Create(ctx, po); err != nil {
		return fmt.Errorf("create purchase order: %w", err)
	}
	log.Infow("purchase order created", "number", po.Number, "total", po.TotalAmount)

	inv := invoice.NewInvoice(v.ID, orderDate, orderDate.AddDate(0, 0, 30))
	inv.PurchaseOrderID = &po.ID
	inv.PaymentTerms = "Net 30"
	lines := make([]entity.LineItem, len(po.Items))
	for i, item := range po.Items {
		item.ID = id.Nil()
		lines[i] = item
	}
	inv.SetItems(lines)
	if err := c.Invoices.Create(ctx, inv); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	_, err := c.Invoices.SetReminders(ctx, inv.ID, []invoice.ReminderSetting{
		{Type: invoice.ReminderBeforeDue, DaysBeforeOrAfter: 3, Enabled: true},
		{Type: invoice.ReminderAfterDue, DaysBeforeOrAfter: 1, Enabled: true},
	})
	if err != nil {
		return fmt.Errorf("set reminders: %w", err)
	}
	log.Infow("invoice created", "number", inv.Number, "total", inv.TotalAmount, "due", inv.DueDate.Format("2006-01-02"))
	return nil
}
