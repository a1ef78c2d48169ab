package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/database"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/realtime"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	registry *realtime.Registry
}

func NewHealthHandler(db *gorm.DB, registry *realtime.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status, state := fiber.StatusOK, "ok"
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		status, state = fiber.StatusServiceUnavailable, "degraded"
	}

	return c.Status(status).JSON(dto.HealthResponse{
		Success:     status == fiber.StatusOK,
		Status:      state,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		DB:          dbStatus,
		OnlineUsers: h.registry.OnlineUsers(),
	})
}
