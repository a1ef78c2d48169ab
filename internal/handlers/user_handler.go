package handlers

import (
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) CreateDriver(c *fiber.Ctx) error {
	var req dto.CreateDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.userService.CreateDriver(c.UserContext(), &req)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *UserHandler) ListDrivers(c *fiber.Ctx) error {
	drivers, err := h.userService.ListDrivers()
	if err != nil {
		return handleError(c, err)
	}

	out := make([]dto.UserResponse, len(drivers))
	for i := range drivers {
		out[i] = dto.NewUserResponse(&drivers[i])
	}
	return c.JSON(dto.DriversEnvelope{Success: true, Count: len(out), Drivers: out})
}

func (h *UserHandler) GetDriver(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return handleError(c, services.ErrDriverNotFound)
	}

	driver, err := h.userService.GetDriver(id)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.DriverEnvelope{Success: true, Driver: dto.NewUserResponse(driver)})
}

func (h *UserHandler) ToggleStatus(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return handleError(c, services.ErrDriverNotFound)
	}

	driver, err := h.userService.ToggleStatus(id)
	if err != nil {
		return handleError(c, err)
	}
	msg := "Driver deactivated successfully"
	if driver.IsActive {
		msg = "Driver activated successfully"
	}
	return c.JSON(dto.DriverEnvelope{Success: true, Message: msg, Driver: dto.NewUserResponse(driver)})
}

func (h *UserHandler) DeleteDriver(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return handleError(c, services.ErrDriverNotFound)
	}

	if err := h.userService.DeleteDriver(id); err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.OK("Driver deleted successfully"))
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.UserEnvelope{
		Success: true, Message: "Profile updated successfully", User: dto.NewUserResponse(user),
	})
}
