package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/martensmichael89-pixel/parking4free/internal/config"
	"github.com/martensmichael89-pixel/parking4free/internal/handlers"
	"github.com/martensmichael89-pixel/parking4free/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	userHandler *handlers.UserHandler,
	parkingHandler *handlers.ParkingHandler,
	reportedHandler *handlers.ReportedParkingHandler,
	favoriteHandler *handlers.FavoriteHandler,
	statisticsHandler *handlers.StatisticsHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected auth routes get JWT middleware individually so the public
	// ones above stay public.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Put("/auth/change-password", middleware.JWTProtected(cfg), authHandler.ChangePassword)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Profile
	api.Get("/user/profile", middleware.JWTProtected(cfg), userHandler.GetProfile)
	api.Put("/user/profile", middleware.JWTProtected(cfg), userHandler.UpdateProfile)

	// Curated parking inventory, reads are public
	api.Get("/parking", parkingHandler.List)
	api.Get("/parking/nearby", parkingHandler.Nearby)
	api.Get("/parking/:id", parkingHandler.Get)
	api.Post("/parking", middleware.JWTProtected(cfg), parkingHandler.Create)
	api.Put("/parking/:id", middleware.JWTProtected(cfg), parkingHandler.Update)
	api.Delete("/parking/:id", middleware.JWTProtected(cfg), parkingHandler.Delete)
	api.Patch("/parking/:id/availability", middleware.JWTProtected(cfg), parkingHandler.SetAvailability)

	// Reported spots. The public listing shows approved spots only.
	api.Get("/reported-parking", reportedHandler.ListApproved)
	api.Post("/reported-parking", middleware.JWTProtected(cfg), reportedHandler.Report)
	api.Get("/reported-parking/:id", reportedHandler.Get)
	api.Post("/reported-parking/:id/rate", middleware.JWTProtected(cfg), reportedHandler.Rate)
	api.Delete("/reported-parking/:id", middleware.JWTProtected(cfg), reportedHandler.Delete)
	api.Put("/reported-parking/:id/status", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg), reportedHandler.SetStatus)

	// Favorites
	api.Get("/favorites", middleware.JWTProtected(cfg), favoriteHandler.List)
	api.Post("/favorites/:spotId", middleware.JWTProtected(cfg), favoriteHandler.Add)
	api.Delete("/favorites/:spotId", middleware.JWTProtected(cfg), favoriteHandler.Remove)

	// Statistics. The leaderboard is public, per-user reads are not.
	api.Get("/statistics/leaderboard", statisticsHandler.Leaderboard)
	api.Get("/statistics/user/:userId", middleware.JWTProtected(cfg), statisticsHandler.GetUser)
	api.Get("/statistics/user/:userId/position", middleware.JWTProtected(cfg), statisticsHandler.Position)
	api.Post("/statistics/increment", middleware.JWTProtected(cfg), statisticsHandler.Increment)

	// Admin panel (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:userId/role", adminHandler.ChangeRole)
	admin.Delete("/users/:userId", adminHandler.DeleteUser)
	admin.Get("/parking-spots", parkingHandler.List)
	admin.Put("/parking-spots/:id", parkingHandler.Update)
	admin.Delete("/parking-spots/:id", parkingHandler.Delete)
	admin.Get("/reported-parking", adminHandler.ListReportedSpots)
	admin.Get("/moderation/queue", reportedHandler.ListPending)
	admin.Get("/logs", adminHandler.Logs)
}
