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
	"docflow/internal/database"
	"docflow/internal/database/migration"
	"docflow/internal/events"
	"docflow/internal/http/handler"
	"docflow/internal/logger"
	"docflow/internal/otel"
	"docflow/internal/server"
	"docflow/internal/storage"
	"docflow/internal/translation"
)

// @title Docflow Document API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel, "docflow-document")
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("document_service_failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "docflow-document", log)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	stores := server.MemoryStores()
	var checks []handler.Check
	if cfg.Document.Store == "postgres" {
		// Initialize PostgreSQL connection (with pooling via database/sql)
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			return err
		}
		stores = server.PostgresStores(db)
		checks = append(checks, handler.DBCheck(db))
	}

	var links storage.Linker
	if cfg.MinIO.Endpoint != "" {
		links, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
	}

	broker, err := events.NewBroker(cfg.Broker, log)
	if err != nil {
		return err
	}
	defer broker.Close()

	var translator translation.Translator
	if cfg.Document.EmbeddedTranslate {
		if translator, err = server.NewTranslator(cfg.Translator); err != nil {
			return err
		}
	}

	svc, err := server.NewDocumentService(server.DocumentDeps{
		Config:     cfg,
		Stores:     stores,
		Links:      links,
		Broker:     broker,
		Translator: translator,
		Checks:     checks,
		Registry:   server.NewRegistry(),
		Log:        log,
	})
	if err != nil {
		return err
	}

	if cfg.Document.SeedDepartments {
		if err := svc.Departments.SeedDefaults(ctx, "General", "Engineering"); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	if err := svc.Start(gctx, g); err != nil {
		return err
	}
	server.Serve(gctx, g, svc.App, ":"+cfg.Ports.Document, log)
	return server.Wait(g)
}
