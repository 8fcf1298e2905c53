package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"rendiconto/internal/cli"
	apphttp "rendiconto/internal/http"
	"rendiconto/internal/log"
	"rendiconto/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer cli.CloseBackend(logger, res)

	amqpClient := cli.InitAMQP(logger, cfg, false)
	if amqpClient != nil {
		defer amqpClient.Close()
	}

	svcs := cli.NewServices(logger, cfg, res, amqpClient)
	defer svcs.Close()

	opts := apphttp.Options{Logger: logger}
	if res.Schedules != nil {
		opts.Schedules = services.NewScheduleProcessor(res.Schedules, nil)
	}
	if res.Pinger != nil {
		opts.Ready = res.Pinger.Ping
	}
	srv := apphttp.NewServer(":"+cfg.Port, svcs.Reports, opts)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting rendiconto server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"persistence", res.Reports != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
