// Package app wires the Postgres-backed services shared by the server,
// the worker and docctl.
package app

import (
	"context"
	"fmt"

	"docflow/internal/config"
	"docflow/internal/domain/catalogs/vendor"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/domain/notification"
	"docflow/internal/domain/reminder"
	"docflow/internal/infrastructure/notify"
	"docflow/internal/infrastructure/numerator"
	"docflow/internal/infrastructure/storage/postgres"
	"docflow/internal/infrastructure/storage/postgres/catalog_repo"
	"docflow/internal/infrastructure/storage/postgres/document_repo"
	"docflow/pkg/logger"
)

// Container holds the wired components. Close releases the pool.
type Container struct {
	Config    *config.Config
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Audit     *postgres.AuditService
	Outbox    *postgres.OutboxPublisher
	Sender    notification.Sender

	Vendors        *vendor.Service
	PurchaseOrders *purchase_order.Service
	Invoices       *invoice.Service
	Scheduler      *reminder.Scheduler
	Runner         *reminder.Runner
}

// New connects to the database, bootstraps the schema and wires services.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := postgres.InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	c, err := build(cfg, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info(ctx, "services wired",
		"notify_mode", cfg.NotifyMode,
		"location", cfg.Location.String())
	return c, nil
}

func build(cfg *config.Config, pool *postgres.Pool) (*Container, error) {
	txManager := postgres.NewTxManager(pool)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		return nil, fmt.Errorf("create audit service: %w", err)
	}
	numbers := numerator.NewFromSource(txManager)
	outbox := postgres.NewOutboxPublisher(txManager)

	var sender notification.Sender = notify.NewLogSender()
	if cfg.NotifyMode == config.NotifyModeOutbox {
		sender = notify.NewOutboxSender(outbox)
	}

	vendors := vendor.NewService(catalog_repo.NewVendorRepo(txManager), txManager, numbers)
	history := document_repo.NewHistoryRepo(txManager)
	orderRepo := document_repo.NewPurchaseOrderRepo(txManager)
	invoiceRepo := document_repo.NewInvoiceRepo(txManager)

	orderEngine := lifecycle.NewEngine(lifecycle.Config[*purchase_order.PurchaseOrder]{
		Machine:   lifecycle.PurchaseOrderMachine(),
		Store:     orderRepo,
		Trail:     history,
		TxManager: txManager,
		Contacts:  vendors,
		Sender:    sender,
		Location:  cfg.Location,
	})
	invoiceEngine := lifecycle.NewEngine(lifecycle.Config[*invoice.Invoice]{
		Machine:   lifecycle.InvoiceMachine(),
		Store:     invoiceRepo,
		Trail:     history,
		TxManager: txManager,
		Contacts:  vendors,
		Sender:    sender,
		Location:  cfg.Location,
	})

	orders := purchase_order.NewService(purchase_order.Deps{
		Repo:      orderRepo,
		Engine:    orderEngine,
		Trail:     history,
		TxManager: txManager,
		Numerator: numbers,
		Vendors:   vendors,
		Auditor:   auditService,
	})
	invoices := invoice.NewService(invoice.Deps{
		Repo:      invoiceRepo,
		Payments:  invoiceRepo,
		Reminders: invoiceRepo,
		Engine:    invoiceEngine,
		Trail:     history,
		TxManager: txManager,
		Numerator: numbers,
		Vendors:   vendors,
		Orders:    orders,
		Auditor:   auditService,
	})
	orders.SetInvoiceLinks(invoices)

	scheduler := reminder.NewScheduler(reminder.Config{
		Invoices:       invoices,
		PurchaseOrders: orders,
		Contacts:       vendors,
		Sender:         sender,
		Location:       cfg.Location,
		Workers:        cfg.ReminderWorkers,
	})
	runner := reminder.NewRunner(scheduler, reminder.RunnerConfig{
		Interval:  cfg.ReminderInterval,
		RunAtHour: cfg.ReminderHour,
	})

	return &Container{
		Config:         cfg,
		Pool:           pool,
		TxManager:      txManager,
		Audit:          auditService,
		Outbox:         outbox,
		Sender:         sender,
		Vendors:        vendors,
		PurchaseOrders: orders,
		Invoices:       invoices,
		Scheduler:      scheduler,
		Runner:         runner,
	}, nil
}

// Close releases database connections.
func (c *Container) Close() {
	c.Pool.Close()
}
