package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/i18n"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(
				i18n.T(identity.Language(c), "auth.invalidCredentials", nil),
			))
		}
		return handleError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Refresh(&req)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	user, err := h.authService.Me(userID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.UserEnvelope{Success: true, User: dto.NewUserResponse(user)})
}

// Logout is an acknowledgement; sessions are stateless and the client drops
// its tokens.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return c.JSON(dto.OK("Logged out successfully"))
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.RequestPasswordReset(c.UserContext(), &req); err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.OK("OTP sent to your email"))
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.ResetPassword(&req); err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.OK("Password reset successfully"))
}

func (h *AuthHandler) SetupPassword(c *fiber.Ctx) error {
	var req dto.SetupPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.SetupPassword(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			return handleErrorStatus(c, err, fiber.StatusUnauthorized)
		}
		return handleError(c, err)
	}
	return c.JSON(resp)
}
