package main

import (
	"context"
	"os"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/backend"
	"finledger/internal/cli"
	"finledger/internal/config"
	"finledger/internal/log"
	"finledger/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(log.ComponentWorker, cfg.LogLevel)
	logger.Info("Starting ledger-worker")

	if cfg.DataBackend == config.BackendSheets || cfg.DataBackend == config.BackendMemory {
		logger.Error("The mirror needs a csv or sqlite primary backend", log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	source, err := factory.CreateSnapshot(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to open primary snapshot", log.FieldError, err)
		os.Exit(1)
	}
	target, err := factory.CreateMirror(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", target.Sheet())

	// Events come from AMQP only; with kafka or none the schedule drives
	// every pass.
	var consumer worker.Consumer
	var amqpClient *amqp.Client
	if cfg.EventsBackend == config.EventsAMQP {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		consumer = amqpClient
	} else {
		logger.Info("Skipping AMQP message consumption", "events", cfg.EventsBackend)
	}

	mirror := worker.NewMirrorWorker(source, target)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if c, ok := source.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				logger.Warn("Snapshot close error", log.FieldError, err)
			}
		}
	})

	if err := mirror.Run(ctx, consumer, cfg.MirrorSchedule); err != nil {
		logger.Error("Mirror worker stopped", log.FieldError, err)
		os.Exit(1)
	}

	stats := mirror.Stats()
	logger.Info("Worker shutting down",
		"syncs", stats.Syncs,
		"failures", stats.Failures)
	cli.WaitForShutdown(ctx, done)
}
