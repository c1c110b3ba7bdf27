// Package main is the entry point for the docflow background worker.
// It runs the daily reminder scan and relays queued notifications.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"docflow/internal/app"
	"docflow/internal/config"
	"docflow/internal/infrastructure/notify"
	"docflow/internal/infrastructure/storage/postgres"
	"docflow/pkg/logger"
)

// Published outbox rows are kept this long for inspection.
const outboxRetention = 7 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting docflow worker")

	container, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to initialize services", "error", err)
	}
	defer container.Close()

	worker := NewWorker(container, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info("worker stopped")
	case <-time.After(cfg.ShutdownTimeout):
		log.Warn("worker shutdown timed out")
	}
}

// Worker owns the background loops of one process.
type Worker struct {
	container   *app.Container
	relay       *postgres.OutboxRelay
	idempotency *postgres.IdempotencyStore
	log         *logger.Logger
}

// NewWorker creates a worker. The outbox relay is enabled only in outbox
// mode with a webhook target.
func NewWorker(c *app.Container, log *logger.Logger) *Worker {
	w := &Worker{
		container:   c,
		idempotency: postgres.NewIdempotencyStore(c.TxManager, c.Config.IdempotencyTTL),
		log:         log.WithComponent("worker"),
	}
	switch {
	case c.Config.NotifyMode != config.NotifyModeOutbox:
	case c.Config.NotifyWebhookURL == "":
		w.log.Warn("outbox mode without NOTIFY_WEBHOOK_URL, queued notifications will not be relayed")
	default:
		handler := notify.NewWebhookHandler(c.Config.NotifyWebhookURL, nil)
		w.relay = postgres.NewOutboxRelay(c.Pool, c.Config.OutboxBatchSize, handler)
	}
	return w
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.container.Runner.Start(ctx)
	}()

	if w.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.runOutbox(ctx)
		}()
	}

	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
			w.purgeOutbox(ctx)
		}
	}
}

func (w *Worker) runOutbox(ctx context.Context) {
	ticker := time.NewTicker(w.container.Config.OutboxInterval)
	defer ticker.Stop()

	w.log.Infow("outbox relay started",
		"interval", w.container.Config.OutboxInterval.String(),
		"batch_size", w.container.Config.OutboxBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			delivered, err := w.relay.ProcessBatch(ctx)
			if err != nil {
				w.log.Errorw("outbox batch failed", "error", err)
				continue
			}
			if delivered > 0 {
				w.log.Debugw("outbox batch delivered", "count", delivered)
			}
		}
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	n, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
}

func (w *Worker) purgeOutbox(ctx context.Context) {
	if w.relay == nil {
		return
	}
	n, err := w.relay.PurgePublished(ctx, time.Now().Add(-outboxRetention))
	if err != nil {
		w.log.Errorw("outbox purge failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("purged published outbox messages", "count", n)
	}
}
