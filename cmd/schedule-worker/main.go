package main

import (
	"context"
	"os"
	"time"

	"rendiconto/internal/cli"
	"rendiconto/internal/log"
	"rendiconto/internal/services"
)

// schedule-worker dispatches due report schedules. With AMQP configured the
// requests are queued for report-worker, otherwise reports are generated and
// stored in-process.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentScheduler)
	logger.Info("Starting schedule-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer cli.CloseBackend(logger, res)
	cli.RequireStores(logger, res)

	amqpClient := cli.InitAMQP(logger, cfg, false)

	svcs := cli.NewServices(logger, cfg, res, amqpClient)
	defer svcs.Close()

	var dispatcher services.Dispatcher
	if amqpClient != nil {
		defer amqpClient.Close()
		dispatcher = services.QueueDispatcher{Publisher: amqpClient}
		logger.Info("Due reports will be queued", "queue", cfg.AMQPQueue)
	} else {
		dispatcher = services.DirectDispatcher{Service: svcs.Reports}
		logger.Info("Due reports will be generated in-process")
	}

	processor := services.NewScheduleProcessor(res.Schedules, dispatcher)
	runner := services.NewScheduleRunner(processor, services.ScheduleRunnerConfig{
		PollInterval: cfg.ScheduleInterval,
		Now:          time.Now,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := runner.Stop(shutdownCtx); err != nil {
			logger.Warn("Schedule runner stop failed", log.FieldError, err.Error())
		}
	})

	if err := runner.Start(ctx); err != nil {
		logger.Error("Failed to start schedule runner", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
