package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OTPPurpose string

const (
	OTPPasswordReset OTPPurpose = "password_reset"
	OTPDriverSetup   OTPPurpose = "driver_setup"
)

const OTPLifetime = 10 * time.Minute

type OTP struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"not null;size:255;index:idx_otps_lookup" json:"email"`
	Code      string     `gorm:"not null;size:6;index:idx_otps_lookup" json:"-"`
	Purpose   OTPPurpose `gorm:"not null;size:20" json:"purpose"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	Used      bool       `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = time.Now().Add(OTPLifetime)
	}
	return nil
}
