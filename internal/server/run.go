package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Serve listens on addr on g and shuts the app down once ctx is done.
func Serve(ctx context.Context, g *errgroup.Group, app *fiber.App, addr string, log *zap.Logger) {
	g.Go(func() error {
		log.Info("server_started", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("server_stopping")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		return nil
	})
}

// Wait blocks on g and drops the cancellation error that ends a clean shutdown.
func Wait(g *errgroup.Group) error {
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
