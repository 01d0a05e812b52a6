package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/votopopular/civic-api/internal/apperr"
	"github.com/votopopular/civic-api/internal/config"
	"github.com/votopopular/civic-api/internal/database"
	"github.com/votopopular/civic-api/internal/handlers"
	"github.com/votopopular/civic-api/internal/identity"
	"github.com/votopopular/civic-api/internal/logging"
	"github.com/votopopular/civic-api/internal/middleware"
	"github.com/votopopular/civic-api/internal/routes"
	"github.com/votopopular/civic-api/internal/services"
	"github.com/votopopular/civic-api/internal/tenant"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var seed *tenant.SeedFile
	if cfg.SeedPath != "" {
		var err error
		if seed, err = tenant.LoadSeed(cfg.SeedPath); err != nil {
			slog.Error("failed to load municipality seed", "path", cfg.SeedPath, "error", err)
			os.Exit(1)
		}
		slog.Info("municipality seed loaded", "municipalities", len(seed.Municipalities))
	}

	// Database handle; the server itself may still be down.
	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	// Store log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(logging.StdoutHandler(), dbLogHandler)))

	// Anti-fraud attempt window: Redis when configured, otherwise the store.
	var attempts services.AttemptStore = services.NewGormAttemptStore(db)
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		attempts = services.NewRedisAttemptStore(rdb)
	}
	antifraudKey := cfg.AntifraudKey
	if antifraudKey == "" {
		slog.Warn("ANTIFRAUD_KEY not set, using an ephemeral key")
		antifraudKey = uuid.NewString()
	}

	// Services
	sanitizer := services.NewSanitizer()
	auditService := services.NewAuditService(db)
	antifraud := services.NewAntifraud(attempts, cfg.AntifraudAttempts, cfg.AntifraudWindow, antifraudKey)
	authService := services.NewAuthService(db, auditService, antifraud, cfg.SuperAdminList())
	userService := services.NewUserService(db, auditService, antifraud, sanitizer)
	proposalService := services.NewProposalService(db, auditService, sanitizer)
	voteService := services.NewVoteService(db, auditService)
	municipalityService := services.NewMunicipalityService(db, auditService)
	complaintService := services.NewComplaintService(db, sanitizer)
	reportService := services.NewReportService(db)

	// Migrations retry in the background so public endpoints answer while the store is down.
	ctx, cancel := context.WithCancel(context.Background())
	cleanupDone := make(chan struct{})
	go database.MigrateWithRetry(ctx, db, cfg.DBRetryInterval, func() {
		if seed != nil {
			created, err := municipalityService.EnsureSeed(ctx, seed)
			if err != nil {
				slog.Error("municipality seed failed", "error", err)
			} else {
				slog.Info("municipality seed applied", "created", created)
			}
		}
		// Log cleanup (30-day retention)
		logging.StartCleanup(db, cleanupDone)
	})

	verifier := identity.FromConfig(cfg)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	table := routes.Setup(app, cfg, db, verifier, authService,
		handlers.NewHealthHandler(db, cfg.IdentityProvider),
		handlers.NewAuthHandler(authService),
		handlers.NewUserHandler(userService),
		handlers.NewProposalHandler(proposalService),
		handlers.NewVoteHandler(voteService),
		handlers.NewMunicipalityHandler(municipalityService),
		handlers.NewComplaintHandler(complaintService),
		handlers.NewReportHandler(reportService, auditService),
	)
	slog.Info("procedures registered", "count", len(table.Names()))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "identity_provider", cfg.IdentityProvider, "db_driver", cfg.DBDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	cancel()
	close(cleanupDone)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

// customErrorHandler renders errors that never reached a procedure, such as
// unknown routes, in the same envelope procedures use.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "request_id", c.Locals("requestid"), "error", err.Error())
		message = "internal error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    apperr.CodeForStatus(code),
			"message": message,
		},
	})
}
