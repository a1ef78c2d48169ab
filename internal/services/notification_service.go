package services

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/i18n"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 100

	EventNotification = "notification"
)

// Pusher is the live side of delivery. *realtime.Registry satisfies it.
type Pusher interface {
	IsOnline(userID uuid.UUID) bool
	EmitToUser(userID uuid.UUID, event string, data interface{}) (int, error)
}

type NotificationService struct {
	db     *gorm.DB
	pusher Pusher
}

func NewNotificationService(db *gorm.DB, pusher Pusher) *NotificationService {
	return &NotificationService{db: db, pusher: pusher}
}

type DispatchInput struct {
	UserID     uuid.UUID
	Type       models.NotificationType
	TitleKey   string
	MessageKey string
	Params     map[string]interface{}
	Load       *models.Load
}

// Dispatch persists the notification and then pushes it to the recipient if
// they have a live connection. The stored row is the source of truth; push
// failures are logged and never returned.
func (s *NotificationService) Dispatch(in DispatchInput) (*models.Notification, error) {
	n := &models.Notification{
		UserID:     in.UserID,
		Type:       in.Type,
		Title:      i18n.T(i18n.DefaultLang, in.TitleKey, in.Params),
		Message:    i18n.T(i18n.DefaultLang, in.MessageKey, in.Params),
		TitleKey:   in.TitleKey,
		MessageKey: in.MessageKey,
		Params:     in.Params,
	}
	if in.Load != nil {
		id := in.Load.ID
		n.LoadID = &id
		n.LoadNumber = in.Load.LoadNumber
	}

	if err := s.db.Create(n).Error; err != nil {
		return nil, err
	}

	if s.pusher == nil || !s.pusher.IsOnline(in.UserID) {
		return n, nil
	}
	if _, err := s.pusher.EmitToUser(in.UserID, EventNotification, n); err != nil {
		slog.Warn("notification push failed",
			"user_id", in.UserID.String(),
			"notification_id", n.ID.String(),
			"error", err,
		)
	}
	return n, nil
}

func (s *NotificationService) List(userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	var out []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkRead(id, userID uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationGone
		}
		return nil, err
	}
	if n.Read {
		return &n, nil
	}
	if err := s.db.Model(&n).Update("read", true).Error; err != nil {
		return nil, err
	}
	n.Read = true
	return &n, nil
}

func (s *NotificationService) MarkAllRead(userID uuid.UUID) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (s *NotificationService) Delete(id, userID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationGone
	}
	return nil
}

func loadParams(load *models.Load, extra map[string]interface{}) map[string]interface{} {
	p := map[string]interface{}{
		"loadNumber": load.LoadNumber,
		"pickup":     load.PickupLocation,
		"dropoff":    load.DropoffLocation,
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func (s *NotificationService) NotifyLoadCreated(managerID uuid.UUID, load *models.Load) (*models.Notification, error) {
	return s.Dispatch(DispatchInput{
		UserID:     managerID,
		Type:       models.NotificationLoadCreated,
		TitleKey:   "notifications.newLoad",
		MessageKey: "notifications.newLoadCreated",
		Params:     loadParams(load, nil),
		Load:       load,
	})
}

func (s *NotificationService) NotifyLoadAssigned(driverID uuid.UUID, load *models.Load) (*models.Notification, error) {
	return s.Dispatch(DispatchInput{
		UserID:     driverID,
		Type:       models.NotificationLoadAssigned,
		TitleKey:   "notifications.loadAssigned",
		MessageKey: "notifications.loadAssignedToYou",
		Params:     loadParams(load, nil),
		Load:       load,
	})
}

func (s *NotificationService) NotifyLoadAccepted(managerID uuid.UUID, load *models.Load, driverName string) (*models.Notification, error) {
	return s.Dispatch(DispatchInput{
		UserID:     managerID,
		Type:       models.NotificationLoadAccepted,
		TitleKey:   "notifications.loadAccepted",
		MessageKey: "notifications.driverAcceptedLoadDetails",
		Params:     loadParams(load, map[string]interface{}{"driverName": driverName}),
		Load:       load,
	})
}

func (s *NotificationService) NotifyLoadRejected(managerID uuid.UUID, load *models.Load, driverName string) (*models.Notification, error) {
	return s.Dispatch(DispatchInput{
		UserID:     managerID,
		Type:       models.NotificationLoadRejected,
		TitleKey:   "notifications.loadRejected",
		MessageKey: "notifications.driverRejectedLoadDetails",
		Params:     loadParams(load, map[string]interface{}{"driverName": driverName}),
		Load:       load,
	})
}

func (s *NotificationService) NotifyLoadCompleted(managerID uuid.UUID, load *models.Load, driverName string) (*models.Notification, error) {
	return s.Dispatch(DispatchInput{
		UserID:     managerID,
		Type:       models.NotificationLoadCompleted,
		TitleKey:   "notifications.loadCompleted",
		MessageKey: "notifications.driverCompletedLoadDetails",
		Params:     loadParams(load, map[string]interface{}{"driverName": driverName}),
		Load:       load,
	})
}

func (s *NotificationService) NotifyDocumentsUploaded(managerID uuid.UUID, load *models.Load, driverName string) (*models.Notification, error) {
	return s.Dispatch(DispatchInput{
		UserID:     managerID,
		Type:       models.NotificationDocumentsUploaded,
		TitleKey:   "notifications.documentsUploaded",
		MessageKey: "notifications.driverUploadedDocumentsDetails",
		Params:     loadParams(load, map[string]interface{}{"driverName": driverName}),
		Load:       load,
	})
}
