package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/config"
	"github.com/votopopular/civic-api/internal/handlers"
	"github.com/votopopular/civic-api/internal/identity"
	"github.com/votopopular/civic-api/internal/middleware"
	"github.com/votopopular/civic-api/internal/rpc"
	"github.com/votopopular/civic-api/internal/services"
	"gorm.io/gorm"
)

var errRateLimited = apperr.New(apperr.RateLimited, "", "too many requests")

// Setup mounts health and the procedure table under /api and returns the table.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	verifier *identity.Verifier,
	authService *services.AuthService,
	healthHandler *handlers.HealthHandler,
	providers ...handlers.Provider,
) *rpc.Table {
	api := app.Group("/api")

	// General API rate limiter per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitPerMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached:      func(c *fiber.Ctx) error { return rpc.Fail(c, errRateLimited) },
	}))

	// Health (no identity required)
	api.Get("/health", healthHandler.Check)

	table := rpc.NewTable()
	for _, p := range providers {
		table.Register(p.Procedures()...)
	}

	procedures := api.Group("/rpc",
		middleware.Identity(verifier, authService),
		middleware.ResolveActor(db),
	)
	table.Mount(procedures)
	return table
}
