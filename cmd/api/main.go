package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/researchhive/hive-api/internal/api/http"
	"github.com/researchhive/hive-api/internal/api/http/handlers"
	"github.com/researchhive/hive-api/internal/auth"
	"github.com/researchhive/hive-api/internal/config"
	"github.com/researchhive/hive-api/internal/events"
	"github.com/researchhive/hive-api/internal/media"
	"github.com/researchhive/hive-api/internal/observability"
	"github.com/researchhive/hive-api/internal/persistence"
	"github.com/researchhive/hive-api/internal/repository"
	"github.com/researchhive/hive-api/internal/service"
	"github.com/researchhive/hive-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo   repository.UserRepository
		reviewRepo repository.ReviewRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		reviewRepo = repository.NewReviewRepository(pg.PoolHandle())
	} else {
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		reviewRepo = store.Reviews()
	}

	var throttle auth.LoginThrottle = auth.NoopThrottle{}
	if redis.Enabled() {
		throttle = auth.NewRedisThrottle(redis.Client, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow())
	}

	uploader, err := media.NewUploader(ctx, cfg.Media)
	if err != nil {
		logger.Fatal("failed to init media uploader", zap.Error(err))
	}
	if !cfg.Media.Enabled() {
		logger.Warn("MEDIA_S3_BUCKET not provided; profile picture uploads disabled")
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	cookies := auth.NewSessionCookie(cfg.Auth.CookieName, cfg.Auth.SessionTTL(), !cfg.App.IsDevelopment())

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Hasher:     auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:     tokens,
		Uploader:   uploader,
		Throttle:   throttle,
		Dispatcher: dispatcher,
		Logger:     logger.Named("auth"),
	})
	reviewService := service.NewReviewService(reviewRepo, dispatcher, logger.Named("reviews"))
	metrics := observability.NewMetrics()

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:   cfg.App.Name,
		BodyLimit: cfg.App.BodyLimit(),
		Logger:    logger,
		Metrics:   metrics,
		Proxy: httptransport.ProxyConfig{
			Header:         cfg.App.ProxyHeader,
			TrustedProxies: cfg.App.TrustedProxies,
		},
		Middleware: httptransport.MiddlewareConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Timeout:        cfg.App.RequestTimeout(),
		},
		Routes: httptransport.RouteConfig{
			BasePath:       cfg.App.BasePath,
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
			Auth:           handlers.NewAuthHandler(authService, cookies),
			Reviews:        handlers.NewReviewsHandler(reviewService),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, cookies, userRepo),
		},
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
