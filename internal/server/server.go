// Package server assembles the Fiber applications and event loops of every
// service. The binaries under cmd/ and the end-to-end tests share it.
package server

import (
	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"docflow/internal/config"
	"docflow/internal/http/handler"
	"docflow/internal/http/middleware"
	"docflow/internal/service"
)

// newApp returns a Fiber app carrying the middleware chain shared by every service.
func newApp(name string, reg *prometheus.Registry, log *zap.Logger) (*fiber.App, error) {
	// Immutable: params and headers outlive the request in the stores, and fasthttp reuses their buffers.
	app := fiber.New(fiber.Config{
		AppName:               name,
		ErrorHandler:          handler.ErrorHandler(log),
		Immutable:             true,
		CaseSensitive:         true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(prom.Handler())

	return app, nil
}

func registry(reg *prometheus.Registry) *prometheus.Registry {
	if reg == nil {
		return prometheus.NewRegistry()
	}
	return reg
}

// AuthDeps groups the collaborators of the auth service.
type AuthDeps struct {
	Config   *config.AppConfig
	Users    service.UserService
	Tokens   handler.TokenIssuer
	Checks   []handler.Check
	Registry *prometheus.Registry
	Log      *zap.Logger
}

// NewAuthApp builds the auth service: credential exchange, signup and user administration.
// The caller identity of /auth/me and /admin is read from the gateway's trust headers.
func NewAuthApp(d AuthDeps) (*fiber.App, error) {
	reg := registry(d.Registry)
	app, err := newApp("docflow-auth", reg, d.Log)
	if err != nil {
		return nil, err
	}
	handler.RegisterSystemRoutes(app, handler.Metrics(reg), d.Checks...)

	app.Use(middleware.Identity(d.Config.Identity.UserHeader, d.Config.Identity.RolesHeader))
	handler.RegisterAuthRoutes(app, d.Users, d.Tokens)
	return app, nil
}

// GatewayDeps groups the collaborators of the gateway.
type GatewayDeps struct {
	Config   *config.AppConfig
	Verifier middleware.TokenVerifier
	Registry *prometheus.Registry
	Log      *zap.Logger
}

// NewGatewayApp builds the single public entry point. Every request passes the
// token filter before it is forwarded to the auth or document service.
func NewGatewayApp(d GatewayDeps) (*fiber.App, error) {
	reg := registry(d.Registry)
	app, err := newApp("docflow-gateway", reg, d.Log)
	if err != nil {
		return nil, err
	}
	app.Use(middleware.GatewayAuth(middleware.GatewayAuthConfig{
		Verifier:    d.Verifier,
		PublicPaths: d.Config.Gateway.PublicPaths,
		UserHeader:  d.Config.Identity.UserHeader,
		RolesHeader: d.Config.Identity.RolesHeader,
		Log:         d.Log,
	}))
	handler.RegisterSystemRoutes(app, handler.Metrics(reg))
	handler.RegisterGatewayRoutes(app, handler.GatewayRoutes{
		AuthURL:     d.Config.Gateway.AuthServiceURL,
		DocumentURL: d.Config.Gateway.DocumentServiceURL,
		Timeout:     d.Config.Gateway.UpstreamTimeout,
	})
	return app, nil
}
