package dto

import "github.com/ahmetcoskunkizilkaya/truckflow/internal/models"

type NotificationsEnvelope struct {
	Success       bool                  `json:"success"`
	Count         int                   `json:"count"`
	UnreadCount   int64                 `json:"unread_count"`
	Notifications []models.Notification `json:"notifications"`
}

type NotificationEnvelope struct {
	Success      bool                 `json:"success"`
	Notification *models.Notification `json:"notification"`
}

type UnreadCountResponse struct {
	Success bool  `json:"success"`
	Count   int64 `json:"count"`
}
