package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docflow/internal/config"
	"docflow/internal/logger"
	"docflow/internal/otel"
	"docflow/internal/server"
	"docflow/internal/token"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel, "docflow-gateway")
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("gateway_failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "docflow-gateway", log)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// The gateway only verifies; it shares the secret and issuer with the auth service.
	verifier, err := token.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, token.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		return err
	}

	app, err := server.NewGatewayApp(server.GatewayDeps{
		Config:   cfg,
		Verifier: verifier,
		Registry: server.NewRegistry(),
		Log:      log,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	server.Serve(gctx, g, app, ":"+cfg.Ports.Gateway, log)
	return server.Wait(g)
}
