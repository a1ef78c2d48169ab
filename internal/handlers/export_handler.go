package handlers

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Loads streams the caller's loads as an xlsx file. Query: status,
// startDate, endDate (YYYY-MM-DD; endDate is inclusive).
func (h *ExportHandler) Loads(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	filter := services.ExportFilter{Status: c.Query("status")}
	if v := c.Query("startDate"); v != "" {
		d, err := dto.ParseDate(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid startDate"))
		}
		filter.StartDate = &d
	}
	if v := c.Query("endDate"); v != "" {
		d, err := dto.ParseDate(v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid endDate"))
		}
		end := d.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	data, _, err := h.exportService.Loads(userID, filter)
	if err != nil {
		return handleError(c, err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=loads_%d.xlsx", time.Now().Unix()))
	return c.Send(data)
}
