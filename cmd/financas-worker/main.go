package main

import (
	"context"
	"errors"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cli"
	"financas/internal/config"
	applog "financas/internal/log"
	gsheet "financas/internal/sheets/google"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)
	logger.Info("Starting financas-worker")

	if !cfg.MirrorEnabled() {
		logger.Error("GOOGLE_SPREADSHEET_ID is required, nothing to mirror")
		os.Exit(1)
	}
	if cfg.DataBackend == "memory" && cfg.SnapshotFile == "" {
		logger.Warn("Memory backend without SNAPSHOT_FILE, the worker sees an empty ledger")
	}

	ctx := context.Background()
	store, err := cli.OpenBackend(ctx, cfg, logger.WithComponent(applog.ComponentBackend).Logger)
	if err != nil {
		cli.Fatal(logger.Logger, "Failed to open backend", err, "backend", cfg.DataBackend)
	}
	defer store.Close()

	sheetsClient, err := gsheet.New(ctx, sheetsConfig(cfg))
	if err != nil {
		cli.Fatal(logger.Logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	mirror := worker.NewMirrorWorker(store.Backend, sheetsClient, cfg.ProjectionMonths)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on the schedule only", "error", err)
		} else {
			defer amqpClient.Close()
		}
	}

	runCtx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := mirror.Stop(ctx); err != nil {
			logger.Error("Failed to stop mirror schedule", "error", err)
		}
	})

	logger.Info("Performing startup export")
	if err := mirror.Export(runCtx); err != nil {
		logger.Error("Startup export failed", "error", err)
	}

	if err := mirror.Start(runCtx, cfg.SyncSchedule); err != nil {
		cli.Fatal(logger.Logger, "Failed to start mirror schedule", err, "schedule", cfg.SyncSchedule)
	}

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeRecordsChanged(runCtx, mirror.HandleRecordsChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", "error", err)
			}
		}()
	}

	<-runCtx.Done()
	<-done
	logger.Info("Worker stopped gracefully")
}

func sheetsConfig(cfg *config.Config) gsheet.Config {
	return gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	}
}
