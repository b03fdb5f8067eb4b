package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"kakeibo/internal/amqp"
	"kakeibo/internal/config"
	applog "kakeibo/internal/log"
	"kakeibo/internal/services"
	"kakeibo/internal/sheets"
	gsheet "kakeibo/internal/sheets/google"
	"kakeibo/internal/storage"
	"kakeibo/internal/worker"
)

func main() {
	// Load .env for local development (ignored in production/docker).
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: "kakeibo-worker"})
	applog.SetDefault(logger)

	decimal.MarshalJSONWithoutQuotes = true

	logger.Info("Starting kakeibo-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("Worker requires AMQP_URL")
		os.Exit(1)
	}

	// The worker shares the store with the server, so it needs the
	// sqlite backend: a private memory store would recalculate ledgers
	// nobody can read.
	if cfg.DataBackend != "sqlite" {
		logger.Error("Worker requires DATA_BACKEND=sqlite", "backend", cfg.DataBackend)
		os.Exit(1)
	}
	sqliteStore, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteStore.Close()
	store := storage.NewRetryStore(sqliteStore, cfg.RetryAttempts, cfg.RetryBackoff)
	repo := storage.NewRepository(store)

	// Sheets export is optional.
	var exporter sheets.SnapshotExporter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = sheetsClient
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	recalcWorker := worker.NewRecalcWorker(
		services.NewRecalcService(repo, cfg.RecalcParallelism),
		exporter,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := amqpClient.ConsumeRecalc(ctx, func(msg *amqp.RecalcMessage) error {
			return recalcWorker.HandleRecalcMessage(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker stopped")
}
