package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/cache"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/database"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/logging"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/mail"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/realtime"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/routes"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	config.LoadDotEnv(0)
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	for name, value := range map[string]string{
		"JWT_SECRET":         cfg.JWTSecret,
		"JWT_REFRESH_SECRET": cfg.JWTRefreshSecret,
		"DB_PASSWORD":        cfg.DBPassword,
	} {
		if value == "" {
			slog.Error(name + " environment variable is required")
			os.Exit(1)
		}
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records also go to system_logs
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewFanout(stdout, pgLogHandler)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Redis is optional; without it the reset cooldown is skipped.
	rdb, err := cache.New(cfg)
	if err != nil {
		slog.Warn("redis unavailable, reset cooldown disabled", "error", err)
		rdb = nil
	}

	mailer := mail.NewMailer(mail.NewSMTPTransport(cfg), cfg.FrontendURL)
	registry := realtime.NewRegistry()

	// Services
	tokens := services.NewTokenIssuer(cfg)
	notificationService := services.NewNotificationService(database.DB, registry)
	loadService := services.NewLoadService(database.DB, cfg, notificationService)
	authService := services.NewAuthService(database.DB, cfg, tokens, mailer, services.NewResetCooldown(rdb, cfg.ResetCooldown))
	userService := services.NewUserService(database.DB, cfg, tokens, mailer)
	dashboardService := services.NewDashboardService(database.DB, registry)
	exportService := services.NewExportService(database.DB)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	app := fiber.New(fiber.Config{
		// POD images arrive inline as data URIs.
		BodyLimit:    15 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Loads:         handlers.NewLoadHandler(loadService),
		Users:         handlers.NewUserHandler(userService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Dashboard:     handlers.NewDashboardHandler(dashboardService),
		Export:        handlers.NewExportHandler(exportService),
		Health:        handlers.NewHealthHandler(database.DB, registry),
		Realtime:      handlers.NewRealtimeHandler(database.DB, tokens, registry),
	}, routes.DefaultLimits)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	registry.Close()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)
	cache.Close(rdb)

	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
