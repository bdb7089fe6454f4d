package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	httpadapter "github.com/couchcryptid/brazil-fires-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/brazil-fires-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/chart"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/config"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/dashboard"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/dataset"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/domain"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/observability"
	"github.com/couchcryptid/brazil-fires-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := dataset.NewLoader(dataset.Files{
		Incidents:  cfg.DataPath(cfg.IncidentsFile),
		StateCodes: cfg.DataPath(cfg.StateCodesFile),
		Boundaries: cfg.DataPath(cfg.BoundariesFile),
		Encoding:   cfg.IncidentsEncoding,
	}, domain.YearRange(cfg.FirstYear, cfg.LastYear), logger, metrics)

	svc := dashboard.NewService(chart.MapOptions{
		Style:       cfg.MapboxStyle,
		AccessToken: cfg.MapboxToken,
	}, cfg.ChartCacheSize, logger, metrics)

	// Aggregate publication is feature-flagged via KAFKA_ENABLED.
	var (
		publisher pipeline.AggregatePublisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(loader, svc, publisher, logger, metrics)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:        cfg.HTTPAddr,
		FirstYear:   cfg.FirstYear,
		LastYear:    cfg.LastYear,
		DefaultYear: cfg.DefaultYear,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
		MapboxToken: cfg.MapboxToken,
	}, svc, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Load the dataset. Failure is fatal.
	var exitCode atomic.Int32
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
			exitCode.Store(1)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if code := exitCode.Load(); code != 0 {
		cancel()
		os.Exit(int(code))
	}
}
