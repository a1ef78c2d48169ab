package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is either a manager (bootstrapped) or a driver (created by a manager).
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"not null;size:255" json:"name"`
	Email             string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password          string    `gorm:"not null" json:"-"`
	Phone             string    `gorm:"size:50" json:"phone"`
	Role              Role      `gorm:"size:20;not null;default:'driver';index:idx_users_role_active" json:"role"`
	IsActive          bool      `gorm:"not null;index:idx_users_role_active" json:"is_active"`
	PreferredLanguage string    `gorm:"size:5;default:'en'" json:"preferred_language"`
	Country           string    `gorm:"size:100;default:'Greece'" json:"country"`
	Avatar            string    `gorm:"type:text" json:"avatar"`
	// PasswordSetAt is nil until the owner chooses a password; an invitation
	// is only redeemable while it is nil.
	PasswordSetAt *time.Time `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps email comparisons case-insensitive.
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
