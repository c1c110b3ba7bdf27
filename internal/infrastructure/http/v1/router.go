// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"docflow/internal/domain/auth"
	"docflow/internal/domain/documents/invoice"
	"docflow/internal/domain/documents/purchase_order"
	"docflow/internal/domain/lifecycle"
	"docflow/internal/infrastructure/http/v1/handlers"
	"docflow/internal/infrastructure/http/v1/middleware"
	"docflow/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// Version is reported by /health/info
	Version string

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	Vendors        handlers.VendorService
	PurchaseOrders handlers.DocumentService[*purchase_order.PurchaseOrder]
	Invoices       handlers.InvoiceService
	Reminders      handlers.ReminderRunner
	Audit          handlers.AuditReader // Optional

	// Idempotency enables replay of mutating requests when set
	Idempotency middleware.IdempotencyStore

	// Debug keeps gin in debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	// Health endpoints (no auth)
	if cfg.DB != nil {
		healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
		health := router.Group("/health")
		{
			health.GET("/live", healthHandler.Live)
			health.GET("/ready", healthHandler.Ready)
			health.GET("/info", healthHandler.Info)
		}
	}

	// API v1
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	compress := gzip.Gzip(gzip.DefaultCompression)
	base := handlers.NewBaseHandler()

	registerVendorRoutes(api, base, cfg, compress)
	registerDocumentRoutes(api, base, cfg, compress)
	registerServiceRoutes(api, base, cfg)

	return router
}

// registerVendorRoutes registers vendor catalog endpoints.
func registerVendorRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig, compress gin.HandlerFunc) {
	if cfg.Vendors == nil {
		return
	}
	h := handlers.NewVendorHandler(base, cfg.Vendors)
	read := middleware.RequirePermission(auth.PermVendorRead)
	write := middleware.RequirePermission(auth.PermVendorWrite)

	vendors := rg.Group("/vendors")
	vendors.GET("", read, compress, h.List)
	vendors.POST("", write, h.Create)
	vendors.GET("/:id", read, h.Get)
	vendors.PUT("/:id", write, h.Update)
	vendors.DELETE("/:id", write, h.Delete)
}

// registerDocumentRoutes registers purchase order and invoice endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig, compress gin.HandlerFunc) {
	if cfg.PurchaseOrders != nil {
		h := handlers.NewPurchaseOrderHandler(base, cfg.PurchaseOrders, lifecycle.PurchaseOrderMachine())
		RegisterDocumentRoutes(rg.Group("/purchase-orders"), h, compress)
	}

	if cfg.Invoices == nil {
		return
	}
	h := handlers.NewInvoiceHandler(base, cfg.Invoices, lifecycle.InvoiceMachine(), cfg.Vendors)
	invoices := rg.Group("/invoices")
	read := middleware.RequirePermission(auth.PermDocumentRead)

	// Static segment registered before the generic :id routes.
	invoices.GET("/export", read, compress, h.Export)
	RegisterDocumentRoutes(invoices, h, compress)

	invoices.POST("/:id/payments", middleware.RequirePermission(auth.PermInvoicePay), h.RegisterPayment)
	invoices.GET("/:id/payments", read, h.ListPayments)
	invoices.PUT("/:id/reminders", middleware.RequirePermission(auth.PermReminderWrite), h.SetReminders)
	invoices.GET("/:id/reminders", read, h.GetReminders)
}

// registerServiceRoutes registers tax, admin and audit endpoints.
func registerServiceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	taxHandler := handlers.NewTaxHandler(base)
	rg.POST("/tax/compute", middleware.RequirePermission(auth.PermDocumentRead), taxHandler.Compute)

	if cfg.Reminders == nil {
		return
	}
	admin := handlers.NewAdminHandler(base, cfg.Reminders, cfg.Audit)
	run := middleware.RequirePermission(auth.PermReminderRun)
	rg.POST("/admin/reminders/run", run, admin.RunReminders)
	rg.GET("/admin/reminders/last", run, admin.LastReminderReport)
	rg.GET("/audit/:kind/:id", middleware.RequirePermission(auth.PermAuditRead), admin.AuditHistory)
}

var (
	_ handlers.InvoiceService                                 = (*invoice.Service)(nil)
	_ handlers.DocumentService[*purchase_order.PurchaseOrder] = (*purchase_order.Service)(nil)
)
