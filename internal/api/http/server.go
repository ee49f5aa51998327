package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/researchhive/hive-api/internal/observability"
)

// ServerConfig describes a fully wired HTTP application.
type ServerConfig struct {
	AppName    string
	BodyLimit  int
	Proxy      ProxyConfig
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Middleware MiddlewareConfig
	Routes     RouteConfig
}

// ProxyConfig tells fiber where to read the client IP when running behind a
// load balancer. With TrustedProxies set, the header is honoured only for
// requests arriving from those addresses.
type ProxyConfig struct {
	Header         string
	TrustedProxies []string
}

// NewServer builds the fiber app with the global middleware chain and all routes.
func NewServer(cfg ServerConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:                 cfg.AppName,
		BodyLimit:               cfg.BodyLimit,
		DisableStartupMessage:   true,
		ProxyHeader:             cfg.Proxy.Header,
		EnableIPValidation:      cfg.Proxy.Header != "",
		EnableTrustedProxyCheck: len(cfg.Proxy.TrustedProxies) > 0,
		TrustedProxies:          cfg.Proxy.TrustedProxies,
	})
	RegisterMiddlewares(app, logger, cfg.Metrics, cfg.Middleware)
	RegisterRoutes(app, cfg.Routes)
	return app
}
