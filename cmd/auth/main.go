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
	"docflow/internal/http/handler"
	"docflow/internal/logger"
	"docflow/internal/otel"
	"docflow/internal/repository"
	"docflow/internal/repository/memory"
	redisrepo "docflow/internal/repository/redis"
	"docflow/internal/server"
	"docflow/internal/service"
	"docflow/internal/token"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel, "docflow-auth")
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("auth_service_failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, "docflow-auth", log)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	var users repository.UserRepository
	var checks []handler.Check
	switch cfg.Auth.Store {
	case "redis":
		client, err := redisrepo.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		users = redisrepo.NewUserRedis(client)
		checks = append(checks, handler.RedisCheck(client))
	default:
		users = memory.NewUserStore()
	}

	tokens, err := token.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, token.WithIssuer(cfg.JWT.Issuer))
	if err != nil {
		return err
	}

	userSvc := service.NewUserService(users, cfg.Auth.BcryptCost, log)
	if cfg.Auth.AdminPassword != "" {
		if err := userSvc.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			return err
		}
	} else {
		log.Warn("admin_bootstrap_skipped", zap.String("reason", "ADMIN_PASSWORD not set"))
	}

	app, err := server.NewAuthApp(server.AuthDeps{
		Config:   cfg,
		Users:    userSvc,
		Tokens:   tokens,
		Checks:   checks,
		Registry: server.NewRegistry(),
		Log:      log,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	server.Serve(gctx, g, app, ":"+cfg.Ports.Auth, log)
	return server.Wait(g)
}
