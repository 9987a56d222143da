package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/accident-data-etl/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/accident-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/accident-data-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/accident-data-etl/internal/config"
	"github.com/couchcryptid/accident-data-etl/internal/observability"
	"github.com/couchcryptid/accident-data-etl/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("etl failed", "error", err)
		os.Exit(1)
	}
	logger.Info("etl complete", "output_dir", cfg.OutputDir)
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loaders := []pipeline.Loader{csvfile.NewWriter(cfg, logger)}

	// Optional sinks (enabled via XLSX_EXPORT_PATH / KAFKA_BROKERS).
	if cfg.XLSXExportPath != "" {
		loaders = append(loaders, xlsx.NewExporter(cfg.XLSXExportPath, logger))
		logger.Info("xlsx export enabled", "path", cfg.XLSXExportPath)
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafkaadapter.NewPublisher(cfg, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		loaders = append(loaders, publisher)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(
		csvfile.NewReader(cfg, logger),
		pipeline.NewTransformer(logger),
		loaders,
		logger,
		metrics,
		cfg.TopCities,
	)
	runErr := p.Run(ctx)

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL); err != nil {
			logger.Error("metrics push failed", "error", err)
		}
	}

	return runErr
}
