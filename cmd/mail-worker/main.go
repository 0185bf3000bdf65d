package main

import (
	"context"
	"errors"
	"os"

	"expensetracker/internal/cli"
	"expensetracker/internal/metrics"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, "mail-worker")

	client := cli.InitAMQP(logger, cfg)
	if client == nil {
		logger.Error("AMQP_URL is required to run the mail worker")
		os.Exit(1)
	}
	defer client.Close()

	mailWorker := worker.NewMailWorker(cli.NewMailer(logger, cfg), metrics.New(), 0)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.Info("Starting mail worker", "queue", cfg.AMQPMailQueue)
	if err := client.ConsumeEmails(ctx, mailWorker.HandleEmailMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Mail worker stopped")
}
