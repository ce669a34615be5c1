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

	"fulfillment/cmd"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/processor"
	"fulfillment/internal/pkg/logging"
	"fulfillment/internal/pkg/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		return err
	}

	logger, syncLogger, err := logging.New(configs.LogLevel, configs.ServiceName)
	if err != nil {
		return err
	}
	defer func() { _ = syncLogger() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, configs.ServiceName, configs.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}

	db, err := postgres.OpenDB(configs.Database(), logger)
	if err != nil {
		return err
	}
	if err = postgres.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	settings, err := cmd.LoadSettings(configs.SettingsPath)
	if err != nil {
		return err
	}
	itemProcessor, err := processor.New(configs.Processor(), logger)
	if err != nil {
		return err
	}
	notifier, closeNotifier, err := cmd.NewNotifier(ctx, configs.Redis(), logger)
	if err != nil {
		return err
	}

	app := cmd.NewCompositionRoot(configs, db, itemProcessor, notifier, settings, logger)
	app.Orchestrator().Start(ctx)

	jobManager, err := app.CreateJobManager()
	if err != nil {
		return err
	}
	if err = jobManager.StartAll(); err != nil {
		return err
	}

	e, err := app.CreateRouter()
	if err != nil {
		return err
	}
	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "HTTP server failed", "error", err)
			stop()
		}
	}()
	logger.InfoContext(ctx, "Fulfillment service started",
		"port", configs.HTTPPort, "processor", configs.ProcessorName, "workers", configs.Workers)

	<-ctx.Done()
	logger.InfoContext(context.Background(), "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var shutdownErrs []error
	shutdownErrs = append(shutdownErrs, e.Shutdown(shutdownCtx))
	jobManager.StopAll(shutdownCtx)
	shutdownErrs = append(shutdownErrs,
		app.Orchestrator().Shutdown(shutdownCtx),
		closeNotifier(),
		shutdownTracing(shutdownCtx),
		sqlDB.Close(),
	)
	return errors.Join(shutdownErrs...)
}
