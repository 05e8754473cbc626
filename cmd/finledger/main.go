package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finledger/internal/cli"
	"finledger/internal/export"
	apphttp "finledger/internal/http"
	"finledger/internal/log"
	"finledger/internal/record"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(log.ComponentApp, cfg.LogLevel)

	loc, _ := cfg.Location()
	res, err := cli.OpenLedger(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open ledger",
			log.FieldBackend, cfg.DataBackend,
			log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, res.Ledger, export.New(record.Codec{Location: loc}), logger)
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Ledger cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting finledger server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"events", cfg.EventsBackend,
		log.FieldCount, res.Ledger.Count())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
