package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Loads         *handlers.LoadHandler
	Users         *handlers.UserHandler
	Notifications *handlers.NotificationHandler
	Dashboard     *handlers.DashboardHandler
	Export        *handlers.ExportHandler
	Health        *handlers.HealthHandler
	Realtime      *handlers.RealtimeHandler
}

// Limits holds the per-IP request budgets; zero disables a limiter.
type Limits struct {
	API  int
	Auth int
}

var DefaultLimits = Limits{API: 60, Auth: 10}

func rateLimit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers, limits Limits) {
	// Websocket upgrade authenticates with ?token= instead of a header.
	app.Get("/ws", h.Realtime.Handshake, h.Realtime.Serve())

	api := app.Group("/api", middleware.Language())
	api.Use(rateLimit(limits.API))

	api.Get("/health", h.Health.Check)

	auth := api.Group("/auth")
	auth.Use(rateLimit(limits.Auth))
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh-token", h.Auth.Refresh)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/setup-password", h.Auth.SetupPassword)
	auth.Post("/logout", h.Auth.Logout)

	// Protected groups carry their own auth chain so the public routes above
	// never see it.
	jwt := middleware.JWTProtected(cfg)
	current := middleware.CurrentUser(db)
	manager := middleware.Authorize(models.RoleManager)
	driver := middleware.Authorize(models.RoleDriver)

	api.Get("/auth/me", jwt, current, h.Auth.Me)

	loads := api.Group("/loads", jwt, current)
	loads.Post("/", manager, h.Loads.Create)
	loads.Get("/", h.Loads.List)
	loads.Get("/:id", h.Loads.Get)
	loads.Patch("/:id", manager, h.Loads.Update)
	loads.Delete("/:id", manager, h.Loads.Delete)
	loads.Patch("/:id/assign", manager, h.Loads.Assign)
	loads.Patch("/:id/accept", driver, h.Loads.Accept)
	loads.Patch("/:id/decline", driver, h.Loads.Decline)
	loads.Post("/:id/pod", driver, h.Loads.UploadPOD)
	loads.Post("/:id/documents", driver, h.Loads.UploadDocuments)

	users := api.Group("/users", jwt, current)
	users.Patch("/profile", h.Users.UpdateProfile)
	users.Post("/", manager, h.Users.CreateDriver)
	users.Get("/", manager, h.Users.ListDrivers)
	users.Get("/:id", manager, h.Users.GetDriver)
	users.Patch("/:id/status", manager, h.Users.ToggleStatus)
	users.Delete("/:id", manager, h.Users.DeleteDriver)

	dashboard := api.Group("/dashboard", jwt, current)
	dashboard.Get("/manager", manager, h.Dashboard.Manager)
	dashboard.Get("/driver", driver, h.Dashboard.Driver)

	notifications := api.Group("/notifications", jwt, current)
	notifications.Get("/", h.Notifications.List)
	notifications.Get("/unread-count", h.Notifications.UnreadCount)
	notifications.Patch("/read-all", h.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", h.Notifications.MarkRead)
	notifications.Delete("/:id", h.Notifications.Delete)

	api.Get("/exports/loads", jwt, current, manager, h.Export.Loads)
}
