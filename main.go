package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/FACorreiaa/moxc-web/internal/pkg/config"
	"github.com/FACorreiaa/moxc-web/internal/server"
	"github.com/FACorreiaa/moxc-web/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), zap.String("service", cfg.Observability.ServiceName)); err != nil {
		return err
	}
	defer func() { _ = logger.Log.Sync() }()
	lg := logger.Log

	otelShutdown, err := server.InitObservability(cfg.Observability, lg)
	if err != nil {
		return err
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			lg.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}()

	srv, err := server.New(cfg, lg)
	if err != nil {
		return err
	}

	router, err := server.SetupRouter(cfg, srv.Dependencies(), lg)
	if err != nil {
		return err
	}
	if err := server.SetupAssets(router); err != nil {
		lg.Error("Failed to setup assets", zap.Error(err))
		return err
	}
	srv.SetRouter(router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lg.Info("Server starting",
		zap.String("port", cfg.ServerPort),
		zap.String("pprof_addr", cfg.Observability.PprofAddr))
	if err := server.Serve(ctx, lg, srv.HTTPServer(), server.PprofServer(cfg.Observability.PprofAddr)); err != nil {
		lg.Error("Server error", zap.Error(err))
		return err
	}

	lg.Info("Graceful shutdown complete")
	return nil
}
