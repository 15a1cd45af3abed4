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
	"docflow/internal/events"
	"docflow/internal/http/handler"
	"docflow/internal/logger"
	"docflow/internal/otel"
	redisrepo "docflow/internal/repository/redis"
	"docflow/internal/server"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel, "docflow-translator")
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("translator_failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "docflow-translator", log)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	translator, err := server.NewTranslator(cfg.Translator)
	if err != nil {
		return err
	}

	var dedup events.Deduplicator
	var checks []handler.Check
	if cfg.Translator.Dedup == "redis" {
		client, err := redisrepo.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		dedup = events.NewRedisDeduplicator(client, cfg.Translator.DedupTTL)
		checks = append(checks, handler.RedisCheck(client))
	}

	broker, err := events.NewBroker(cfg.Broker, log)
	if err != nil {
		return err
	}
	defer broker.Close()

	svc, err := server.NewTranslatorService(server.TranslatorDeps{
		Config:     cfg,
		Broker:     broker,
		Translator: translator,
		Dedup:      dedup,
		Checks:     checks,
		Registry:   server.NewRegistry(),
		Log:        log,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if err := svc.Start(gctx, g); err != nil {
		return err
	}
	server.Serve(gctx, g, svc.App, ":"+cfg.Ports.Translator, log)
	return server.Wait(g)
}
