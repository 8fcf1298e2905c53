package main

import (
	"context"
	"errors"
	"os"
	"time"

	"rendiconto/internal/cli"
	"rendiconto/internal/log"
	"rendiconto/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting report-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer cli.CloseBackend(logger, res)
	cli.RequireStores(logger, res)

	amqpClient := cli.InitAMQP(logger, cfg, true)
	defer amqpClient.Close()

	svcs := cli.NewServices(logger, cfg, res, amqpClient)
	defer svcs.Close()

	reportWorker := worker.NewReportWorker(svcs.Reports, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go func() {
		err := amqpClient.ConsumeReportRequests(ctx, reportWorker.HandleReportRequest)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err.Error())
			os.Exit(1)
		}
	}()

	logger.Info("Consuming report requests", "queue", cfg.AMQPQueue, "backend", cfg.DataBackend)
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
