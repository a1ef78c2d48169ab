package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/i18n"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/mail"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *TokenIssuer
	mailer mail.Sender
}

func NewUserService(db *gorm.DB, cfg *config.Config, tokens *TokenIssuer, mailer mail.Sender) *UserService {
	return &UserService{db: db, cfg: cfg, tokens: tokens, mailer: mailer}
}

// CreateDriver stores an inactive driver with an unusable random password
// and emails a setup link. A failed email does not undo the account.
func (s *UserService) CreateDriver(ctx context.Context, req *dto.CreateDriverRequest) (*dto.CreateDriverResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := models.NormalizeEmail(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || email == "" || phone == "" {
		return nil, validationError("Please provide name, email, and phone")
	}

	lang := req.PreferredLanguage
	if lang == "" {
		lang = i18n.DefaultLang
	}
	if !i18n.Supported(lang) {
		return nil, validationError("Unsupported language")
	}

	if taken, err := s.emailTaken(email, uuid.Nil); err != nil {
		return nil, err
	} else if taken {
		return nil, newError(ErrConflict, "User with this email already exists")
	}

	tempPassword, err := randomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	driver := models.User{
		Name:              name,
		Email:             email,
		Password:          string(hash),
		Phone:             phone,
		Role:              models.RoleDriver,
		IsActive:          false,
		PreferredLanguage: lang,
		Country:           req.Country,
	}
	if driver.Country == "" {
		driver.Country = "Greece"
	}
	if err := s.db.Create(&driver).Error; err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	token, err := s.tokens.SetupToken(&driver)
	if err != nil {
		return nil, err
	}

	resp := &dto.CreateDriverResponse{
		Success:   true,
		Message:   "Driver created successfully. Invitation email sent.",
		Driver:    dto.NewUserResponse(&driver),
		EmailSent: true,
	}
	if err := s.mailer.SendDriverInvitation(ctx, driver.Email, driver.Name, token); err != nil {
		slog.Error("driver invitation email failed",
			"driver_id", driver.ID.String(),
			"email", driver.Email,
			"smtp_host", s.cfg.SMTPHost,
			"error", err,
		)
		resp.Message = "Driver created successfully. Email sending failed - please send invitation manually."
		resp.EmailSent = false
		resp.EmailError = err.Error()
		resp.SetupLink = mail.SetupLink(s.cfg.FrontendURL, token)
	}
	return resp, nil
}

func (s *UserService) ListDrivers() ([]models.User, error) {
	var drivers []models.User
	err := s.db.Where("role = ?", models.RoleDriver).Order("created_at DESC").Find(&drivers).Error
	return drivers, err
}

func (s *UserService) GetDriver(id uuid.UUID) (*models.User, error) {
	var driver models.User
	if err := s.db.Where("id = ? AND role = ?", id, models.RoleDriver).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// ToggleStatus flips a driver between active and inactive.
func (s *UserService) ToggleStatus(id uuid.UUID) (*models.User, error) {
	driver, err := s.GetDriver(id)
	if err != nil {
		return nil, err
	}
	res := s.db.Model(&models.User{}).
		Where("id = ? AND is_active = ?", driver.ID, driver.IsActive).
		Update("is_active", !driver.IsActive)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, newError(ErrConflict, "Driver status changed concurrently, retry")
	}
	driver.IsActive = !driver.IsActive
	return driver, nil
}

// DeleteDriver removes the driver; loads assigned to them become unassigned.
func (s *UserService) DeleteDriver(id uuid.UUID) error {
	driver, err := s.GetDriver(id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Load{}).
			Where("assigned_driver_id = ?", driver.ID).
			Update("assigned_driver_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", driver.ID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(driver).Error
	})
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	cols := map[string]interface{}{}
	if req.Email != nil {
		email := models.NormalizeEmail(*req.Email)
		if email != "" && email != user.Email {
			taken, err := s.emailTaken(email, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, newError(ErrConflict, "Email already in use")
			}
			cols["email"] = email
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		cols["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		cols["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Country != nil && *req.Country != "" {
		cols["country"] = *req.Country
	}
	if req.Avatar != nil {
		cols["avatar"] = *req.Avatar
	}
	if req.PreferredLanguage != nil {
		if !i18n.Supported(*req.PreferredLanguage) {
			return nil, validationError("Unsupported language")
		}
		cols["preferred_language"] = *req.PreferredLanguage
	}
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < MinPasswordLength {
			return nil, validationError("Password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		cols["password"] = string(hash)
		cols["password_set_at"] = time.Now().UTC()
	}

	if len(cols) > 0 {
		if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(cols).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return s.reload(user.ID)
}

func (s *UserService) reload(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) emailTaken(email string, except uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).Where("email = ? AND id <> ?", email, except).Count(&count).Error
	return count > 0, err
}

func randomPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
