package handlers

import (
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	list, err := h.notificationService.List(userID, c.QueryInt("limit", services.DefaultNotificationLimit))
	if err != nil {
		return handleError(c, err)
	}
	unread, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.NotificationsEnvelope{
		Success:       true,
		Count:         len(list),
		UnreadCount:   unread,
		Notifications: list,
	})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.UnreadCountResponse{Success: true, Count: count})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return handleError(c, services.ErrNotificationGone)
	}

	n, err := h.notificationService.MarkRead(id, userID)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.NotificationEnvelope{Success: true, Notification: n})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if _, err := h.notificationService.MarkAllRead(userID); err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.OK("All notifications marked as read"))
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return handleError(c, services.ErrNotificationGone)
	}

	if err := h.notificationService.Delete(id, userID); err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.OK("Notification deleted"))
}
