package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/researchhive/hive-api/internal/api/http/handlers"
	"github.com/researchhive/hive-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	BasePath       string
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Reviews        *handlers.ReviewsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group(cfg.BasePath)
	protect := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login-by-email", cfg.Auth.LoginByEmail)
	authGroup.Post("/login-by-mobile", cfg.Auth.LoginByMobile)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/check", protect, cfg.Auth.Check)
	authGroup.Put("/update-profile", protect, cfg.Auth.UpdateProfile)
	authGroup.Put("/update-user-data", protect, cfg.Auth.UpdateProfile)
	authGroup.Put("/update-profile-pic", protect, cfg.Auth.UpdateProfilePic)

	reviewGroup := api.Group("/review")
	reviewGroup.Post("/create", protect, cfg.Reviews.Create)
	reviewGroup.Delete("/:id", protect, cfg.Reviews.Delete)
	reviewGroup.Get("/:paperId", cfg.Reviews.ListByPaper)
}
