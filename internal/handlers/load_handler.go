package handlers

import (
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LoadHandler struct {
	loadService *services.LoadService
}

func NewLoadHandler(loadService *services.LoadService) *LoadHandler {
	return &LoadHandler{loadService: loadService}
}

func (h *LoadHandler) Create(c *fiber.Ctx) error {
	user, err := identity.User(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.CreateLoadRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	load, err := h.loadService.Create(user.ID, &req)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.LoadEnvelope{
		Success: true, Message: "Load created successfully", Load: load,
	})
}

func (h *LoadHandler) List(c *fiber.Ctx) error {
	user, err := identity.User(c)
	if err != nil {
		return unauthorized(c)
	}

	loads, err := h.loadService.List(user, c.Query("status"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.LoadsEnvelope{Success: true, Count: len(loads), Loads: loads})
}

func (h *LoadHandler) Get(c *fiber.Ctx) error {
	user, err := identity.User(c)
	if err != nil {
		return unauthorized(c)
	}

	load, err := h.loadService.Get(c.Params("id"), user)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.LoadEnvelope{Success: true, Load: load})
}

func (h *LoadHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateLoadRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	load, err := h.loadService.Update(c.Params("id"), &req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.LoadEnvelope{Success: true, Message: "Load updated successfully", Load: load})
}

func (h *LoadHandler) Delete(c *fiber.Ctx) error {
	if err := h.loadService.Delete(c.Params("id")); err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.OK("Load deleted successfully"))
}

func (h *LoadHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignLoadRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	load, err := h.loadService.Assign(c.Params("id"), req.DriverID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.LoadEnvelope{Success: true, Message: "Driver assigned successfully", Load: load})
}

func (h *LoadHandler) Accept(c *fiber.Ctx) error {
	user, err := identity.User(c)
	if err != nil {
		return unauthorized(c)
	}

	load, err := h.loadService.Accept(c.Params("id"), user)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.LoadEnvelope{Success: true, Message: "Load accepted successfully", Load: load})
}

func (h *LoadHandler) Decline(c *fiber.Ctx) error {
	user, err := identity.User(c)
	if err != nil {
		return unauthorized(c)
	}

	load, err := h.loadService.Decline(c.Params("id"), user)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.LoadEnvelope{Success: true, Message: "Load declined", Load: load})
}

func (h *LoadHandler) UploadPOD(c *fiber.Ctx) error {
	user, err := identity.User(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UploadPODRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	load, err := h.loadService.UploadPOD(c.Params("id"), user, req.Image)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.LoadEnvelope{
		Success: true, Message: "POD uploaded successfully. Load marked as completed.", Load: load,
	})
}

func (h *LoadHandler) UploadDocuments(c *fiber.Ctx) error {
	user, err := identity.User(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UploadDocumentsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	load, err := h.loadService.UploadDocuments(c.Params("id"), user, req.Invoices, req.Documents)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.LoadEnvelope{Success: true, Message: "Documents uploaded successfully", Load: load})
}
