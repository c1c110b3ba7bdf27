package test

import (
	"context"
	"time"

	appctx "docflow/internal/core/context"
	"docflow/internal/core/id"
	"docflow/internal/core/numerator"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/lifecycle"
)

// Env is a fully wired in-memory document environment.
type Env struct {
	Invoices       *InvoiceStore
	PurchaseOrders *DocumentStore[*purchase_order.PurchaseOrder]
	Trail          *Trail
	Sender         *Sender
	Vendors        *Vendors
	VendorID       id.ID
	Clock          *Clock
	Tx             *Tx
	Numerator      *numerator.MockGenerator

	InvoiceEngine *lifecycle.Engine[*invoice.Invoice]
	OrderEngine   *lifecycle.Engine[*purchase_order.PurchaseOrder]
	InvoiceSvc    *invoice.Service
	OrderSvc      *purchase_order.Service
}

// Tokyo is the default business calendar.
var Tokyo = mustLoad("Asia/Tokyo")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// UserContext returns a background context carrying an authenticated user.
func UserContext(userID string) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: userID})
}

// NewEnv wires services over in-memory stores with the clock at now.
func NewEnv(now time.Time) *Env {
	e := &Env{
		Invoices:       NewInvoiceStore(),
		PurchaseOrders: NewPurchaseOrderStore(),
		Trail:          &Trail{},
		Sender:         &Sender{},
		Clock:          NewClock(now),
		Numerator:      &numerator.MockGenerator{},
	}
	e.Vendors, e.VendorID = NewVendors("billing@vendor.example")
	e.Tx = NewTx(e.Invoices, e.PurchaseOrders, e.Trail)

	e.InvoiceEngine = lifecycle.NewEngine(lifecycle.Config[*invoice.Invoice]{
		Machine:   lifecycle.InvoiceMachine(),
		Store:     e.Invoices,
		Trail:     e.Trail,
		TxManager: e.Tx,
		Contacts:  e.Vendors,
		Sender:    e.Sender,
		Location:  Tokyo,
		Now:       e.Clock.Now,
	})
	e.OrderEngine = lifecycle.NewEngine(lifecycle.Config[*purchase_order.PurchaseOrder]{
		Machine:   lifecycle.PurchaseOrderMachine(),
		Store:     e.PurchaseOrders,
		Trail:     e.Trail,
		TxManager: e.Tx,
		Contacts:  e.Vendors,
		Sender:    e.Sender,
		Location:  Tokyo,
		Now:       e.Clock.Now,
	})

	e.OrderSvc = purchase_order.NewService(purchase_order.Deps{
		Repo:      e.PurchaseOrders,
		Engine:    e.OrderEngine,
		Trail:     e.Trail,
		TxManager: e.Tx,
		Numerator: e.Numerator,
		Vendors:   e.Vendors,
	})
	e.InvoiceSvc = invoice.NewService(invoice.Deps{
		Repo:      e.Invoices,
		Payments:  e.Invoices,
		Reminders: e.Invoices,
		Engine:    e.InvoiceEngine,
		Trail:     e.Trail,
		TxManager: e.Tx,
		Numerator: e.Numerator,
		Vendors:   e.Vendors,
		Orders:    e.OrderSvc,
	})
	e.OrderSvc.SetInvoiceLinks(e.InvoiceSvc)

	return e
}
