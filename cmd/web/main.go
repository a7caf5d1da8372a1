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

	"github.com/yuankika/final-computer/internal/calculator"
	"github.com/yuankika/final-computer/internal/config"
	"github.com/yuankika/final-computer/internal/observability"
	"github.com/yuankika/final-computer/internal/server"
	"github.com/yuankika/final-computer/internal/ui"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "calculator-web:", err)
		os.Exit(1)
	}
}

func run() error {

	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logger
	if err := observability.InitLogger(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics, OTLP logs
	if cfg.TelemetryEnabled {
		telemetryShutdown, err := initTelemetry(ctx)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := telemetryShutdown(flushCtx); err != nil {
				observability.Logger.Warn("telemetry shutdown", zap.Error(err))
			}
		}()
	}

	client, err := calculator.NewClient(calculator.Options{
		BaseURL: cfg.ServiceURL,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return err
	}

	// Router
	router := server.NewRouter(
		ui.NewHandler(ui.NewStore(cfg.SessionTTL), client),
		calculator.NewAPI(client),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("calculator_endpoint", client.Endpoint()),
			zap.Bool("telemetry", cfg.TelemetryEnabled),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		observability.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
