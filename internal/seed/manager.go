// Package seed bootstraps the first manager account.
package seed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrManagerExists = errors.New("a manager account already exists")

type Manager struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Language string
}

func (m Manager) validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(m.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(m.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// CreateManager inserts an active manager unless one exists already, in which
// case it returns ErrManagerExists.
func CreateManager(db *gorm.DB, m Manager) (*models.User, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	var user *models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("role = ?", models.RoleManager).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrManagerExists
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(m.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		lang := m.Language
		if lang == "" {
			lang = "en"
		}
		now := time.Now().UTC()
		user = &models.User{
			Name:              strings.TrimSpace(m.Name),
			Email:             m.Email,
			Password:          string(hash),
			Phone:             m.Phone,
			Role:              models.RoleManager,
			IsActive:          true,
			PreferredLanguage: lang,
			PasswordSetAt:     &now,
		}
		return tx.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
