package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/cache"
	"financas/internal/cli"
	"financas/internal/core"
	apphttp "financas/internal/http"
	applog "financas/internal/log"
	"financas/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx := context.Background()
	store, err := cli.OpenBackend(ctx, cfg, logger.WithComponent(applog.ComponentBackend).Logger)
	if err != nil {
		cli.Fatal(logger.Logger, "Failed to open backend", err, "backend", cfg.DataBackend)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	}()

	snapshots := cache.NewLRUCache[core.Snapshot](4, cfg.CacheTTL)
	caches := cache.NewManager()
	caches.Register(snapshots)
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// the mirror catches up on its schedule
			logger.Warn("AMQP unavailable, change notifications disabled", "error", err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("AMQP publisher connected", "exchange", cfg.AMQPExchange)
		}
	}

	ledger := services.NewLedgerService(store.Backend, publisher, snapshots)
	srv := apphttp.NewServer(apphttp.Config{
		Addr:             net.JoinHostPort("", cfg.Port),
		ProjectionMonths: cfg.ProjectionMonths,
		Logger:           logger,
		Ready:            cli.ReadinessCheck(store.Backend),
	}, ledger)

	shutdownCtx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting financas server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-shutdownCtx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
