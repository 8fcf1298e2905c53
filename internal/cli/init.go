// Package cli provides common initialization utilities shared by the
// rendiconto server, the workers and the command line tool.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"rendiconto/internal/amqp"
	"rendiconto/internal/backend"
	"rendiconto/internal/cache"
	"rendiconto/internal/config"
	"rendiconto/internal/log"
	"rendiconto/internal/reports"
	"rendiconto/internal/services"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL value.
// The returned logger is also installed as the slog default.
func SetupLogger(level string, component string) *log.Logger {
	return SetupLoggerTo(os.Stdout, level, component)
}

// SetupLoggerTo is SetupLogger writing to w. The command line tool logs to
// stderr so that stdout carries only report JSON.
func SetupLoggerTo(w io.Writer, level string, component string) *log.Logger {
	lvl := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: component,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitBackend creates the configured ledger backend.
// Returns the backend or exits the process on failure.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger.With(log.FieldComponent, log.ComponentBackend)).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// InitAMQP connects to the broker. Without AMQP_URL it returns nil, or exits
// when required is set. A failed connection is fatal only when required.
func InitAMQP(logger *log.Logger, cfg *config.Config, required bool) *amqp.Client {
	if cfg.AMQPURL == "" {
		if required {
			logger.Error("AMQP_URL is required")
			os.Exit(1)
		}
		logger.Info("AMQP disabled - reports will not be announced")
		return nil
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		if required {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		logger.Warn("Failed to initialize AMQP client, continuing without notifications", log.FieldError, err.Error())
		return nil
	}
	logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// Services bundles the report service with the cache it reads through.
type Services struct {
	Reports *services.ReportService
	caches  *cache.Manager
}

// NewServices builds the report engine and service over a backend. The
// notifier may be nil.
func NewServices(logger *log.Logger, cfg *config.Config, res *backend.BackendResult, notifier *amqp.Client) *Services {
	engine := reports.NewEngine(res.Ledger, res.Ledger,
		reports.WithLogger(logger.Logger.With(log.FieldComponent, log.ComponentReports)))

	opts := services.ReportServiceOptions{
		Store:         res.Reports,
		ReaderTimeout: cfg.ReaderTimeout,
	}
	// an untyped nil keeps the service from publishing
	if notifier != nil {
		opts.Notifier = notifier
	}

	out := &Services{}
	if cfg.ReportCacheSize > 0 {
		lru := cache.NewLRUCache[*reports.Report](cfg.ReportCacheSize, cfg.ReportCacheTTL)
		opts.Cache = lru
		out.caches = cache.NewManager()
		out.caches.Register(lru)
		out.caches.StartCleanup(cfg.ReportCacheTTL)
	}
	out.Reports = services.NewReportService(engine, opts)
	return out
}

// Close stops the cache cleanup routine.
func (s *Services) Close() {
	if s.caches != nil {
		s.caches.Stop()
	}
}

// RequireStores exits unless the backend persists reports and schedules.
func RequireStores(logger *log.Logger, res *backend.BackendResult) {
	if res.Reports == nil || res.Schedules == nil {
		logger.Error("The configured backend cannot store reports; use DATA_BACKEND=sqlite",
			log.FieldError, services.ErrNoStore.Error())
		os.Exit(1)
	}
}

// CloseBackend runs the backend cleanup, if any.
func CloseBackend(logger *log.Logger, res *backend.BackendResult) {
	if res == nil || res.Cleanup == nil {
		return
	}
	if err := res.Cleanup(); err != nil && !errors.Is(err, os.ErrClosed) {
		logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
	}
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
