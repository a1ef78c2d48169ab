package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationLoadCreated       NotificationType = "load_created"
	NotificationLoadAssigned      NotificationType = "load_assigned"
	NotificationLoadAccepted      NotificationType = "load_accepted"
	NotificationLoadRejected      NotificationType = "load_rejected"
	NotificationLoadCompleted     NotificationType = "load_completed"
	NotificationLoadCancelled     NotificationType = "load_cancelled"
	NotificationDocumentsUploaded NotificationType = "documents_uploaded"
)

type Notification struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_notifications_user_read" json:"user_id"`
	Type       NotificationType  `gorm:"size:30;not null" json:"type"`
	Title      string            `gorm:"not null;size:255" json:"title"`
	Message    string            `gorm:"not null;type:text" json:"message"`
	TitleKey   string            `gorm:"size:100" json:"title_key"`
	MessageKey string            `gorm:"size:100" json:"message_key"`
	Params     datatypes.JSONMap `json:"params"`
	LoadID     *uuid.UUID        `gorm:"type:uuid;index" json:"load_id"`
	LoadNumber string            `gorm:"size:8" json:"load_number"`
	Read       bool              `gorm:"not null;default:false;index:idx_notifications_user_read" json:"read"`
	CreatedAt  time.Time         `gorm:"index:idx_notifications_user_read" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Params == nil {
		n.Params = datatypes.JSONMap{}
	}
	return nil
}
