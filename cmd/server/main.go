// Package main is the entry point for the docflow API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docflow/internal/app"
	"docflow/internal/config"
	"docflow/internal/domain/auth"
	v1 "docflow/internal/infrastructure/http/v1"
	"docflow/internal/infrastructure/storage/postgres"
	"docflow/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting docflow server", "version", version)

	// --- Database and services ---
	container, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize services", "error", err)
	}
	defer container.Close()
	log.Info("database connection established")

	// --- JWT Service ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		DB:             container.Pool,
		Version:        version,
		JWTValidator:   jwtService,
		Vendors:        container.Vendors,
		PurchaseOrders: container.PurchaseOrders,
		Invoices:       container.Invoices,
		Reminders:      container.Runner,
		Audit:          container.Audit,
		Idempotency:    postgres.NewIdempotencyStore(container.TxManager, cfg.IdempotencyTTL),
		Debug:          cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
