package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/api"
	"github.com/Harshitk-cp/causalchain/internal/buildconfig"
	"github.com/Harshitk-cp/causalchain/internal/config"
	"github.com/Harshitk-cp/causalchain/internal/events"
	"github.com/Harshitk-cp/causalchain/internal/fixture"
	"github.com/Harshitk-cp/causalchain/internal/service"
	"github.com/Harshitk-cp/causalchain/internal/store"
	"github.com/Harshitk-cp/causalchain/internal/tracing"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	// Config first so LOG_LEVEL from the env file applies.
	cfgErr := config.Load()

	logger, err := newLogger(config.LogLevel())
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		logger.Fatal("failed to load config", zap.Error(cfgErr))
	}

	ctx := context.Background()

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		Endpoint:       config.OTLPEndpoint(),
		Insecure:       config.OTLPInsecure(),
		ServiceName:    buildconfig.ServiceName(),
		ServiceVersion: buildconfig.Version(),
	}, logger)
	if err != nil {
		logger.Fatal("failed to set up tracing", zap.Error(err))
	}

	bus := events.NewBus(logger)
	causalSvc := service.NewCausalService(store.NewGraphStore(), bus, logger)

	app, err := api.NewApp(causalSvc, logger)
	if err != nil {
		logger.Fatal("failed to build app", zap.Error(err))
	}

	// Seed after NewApp so the cache and metrics listeners see the fixture.
	if path := config.SeedGraphPath(); path != "" {
		g, err := fixture.Load(path)
		if err != nil {
			logger.Fatal("failed to load seed graph", zap.String("path", path), zap.Error(err))
		}
		ids, err := fixture.Apply(ctx, causalSvc, g)
		if err != nil {
			logger.Fatal("failed to apply seed graph", zap.String("path", path), zap.Error(err))
		}
		logger.Info("seed graph loaded", zap.String("path", path), zap.Int("nodes", len(ids)), zap.Int("edges", len(g.Edges)))
	}

	// Start background services
	app.Start()

	addr := config.ServerAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("version", buildconfig.Version()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Stop background services
	app.Stop()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
