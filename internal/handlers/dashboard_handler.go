package handlers

import (
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Manager(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	stats, err := h.dashboardService.Manager(userID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.DashboardResponse{Success: true, Dashboard: stats})
}

func (h *DashboardHandler) Driver(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	stats, err := h.dashboardService.Driver(userID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.DashboardResponse{Success: true, Dashboard: stats})
}
