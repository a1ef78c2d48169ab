package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/mail"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	tokens   *TokenIssuer
	mailer   mail.Sender
	cooldown *ResetCooldown
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, tokens *TokenIssuer, mailer mail.Sender, cooldown *ResetCooldown) *AuthService {
	return &AuthService{
		db:       db,
		cfg:      cfg,
		tokens:   tokens,
		mailer:   mailer,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Login never reveals whether the email or the password was wrong.
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, validationError("Please provide email and password")
	}

	var user models.User
	if err := s.db.Where("email = ?", models.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	// Deactivated and not-yet-invited accounts are told so before the password
	// is checked; the driver's next step is to contact the manager either way.
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.RefreshResponse, error) {
	if req.RefreshToken == "" {
		return nil, validationError("Refresh token is required")
	}
	claims, err := s.tokens.ParseRefresh(req.RefreshToken)
	if err != nil {
		return nil, newError(ErrUnauthorized, "Invalid or expired refresh token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", claims.UserID).Error; err != nil || !user.IsActive {
		return nil, newError(ErrUnauthorized, "User not found or inactive")
	}

	access, err := s.tokens.AccessToken(&user)
	if err != nil {
		return nil, err
	}
	return &dto.RefreshResponse{Success: true, AccessToken: access}, nil
}

func (s *AuthService) Me(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset stores a fresh six-digit code and emails it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	email := models.NormalizeEmail(req.Email)
	if email == "" {
		return validationError("Please provide email")
	}

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("No account found with this email")
		}
		return err
	}

	if err := s.cooldown.Acquire(ctx, email); err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	otp := models.OTP{
		Email:     email,
		Code:      code,
		Purpose:   models.OTPPasswordReset,
		ExpiresAt: s.now().Add(models.OTPLifetime),
	}
	if err := s.db.Create(&otp).Error; err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if err := s.mailer.SendPasswordResetOTP(ctx, email, user.Name, code); err != nil {
		slog.Error("password reset email failed", "email", email, "error", err)
		s.db.Delete(&otp)
		s.cooldown.Release(ctx, email)
		return wrapError(ErrDelivery, "Failed to send OTP. Please try again.", err)
	}
	return nil
}

// ResetPassword consumes a valid code and replaces the password. A code can
// be used once.
func (s *AuthService) ResetPassword(req *dto.ResetPasswordRequest) error {
	email := models.NormalizeEmail(req.Email)
	if email == "" || req.OTP == "" || req.NewPassword == "" {
		return validationError("Please provide email, OTP, and new password")
	}
	if len(req.NewPassword) < MinPasswordLength {
		return validationError("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	invalid := newError(ErrInvalidToken, "Invalid or expired OTP")
	return s.db.Transaction(func(tx *gorm.DB) error {
		var otp models.OTP
		err := tx.Where("email = ? AND code = ? AND purpose = ? AND used = ? AND expires_at > ?",
			email, strings.TrimSpace(req.OTP), models.OTPPasswordReset, false, s.now()).
			Order("created_at DESC").
			First(&otp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid
			}
			return err
		}

		res := tx.Model(&models.OTP{}).Where("id = ? AND used = ?", otp.ID, false).Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalid
		}

		res = tx.Model(&models.User{}).Where("email = ?", email).Updates(map[string]interface{}{
			"password":        string(hash),
			"password_set_at": s.now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// SetupPassword completes a driver invitation: the setup token proves the
// invite, the password is stored and the account is activated. An invitation
// is redeemable once; any earlier password choice (setup or reset) spends it.
func (s *AuthService) SetupPassword(req *dto.SetupPasswordRequest) (*dto.AuthResponse, error) {
	if req.Token == "" || req.Password == "" {
		return nil, validationError("Please provide token and password")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, validationError("Password must be at least 8 characters")
	}

	claims, err := s.tokens.ParseSetup(req.Token)
	if err != nil {
		return nil, newError(ErrInvalidToken, "Invalid or expired token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	used := newError(ErrInvalidToken, "This invitation has already been used")
	if user.PasswordSetAt != nil {
		return nil, used
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.now().UTC()
	res := s.db.Model(&models.User{}).
		Where("id = ? AND password_set_at IS NULL", user.ID).
		Updates(map[string]interface{}{
			"password":        string(hash),
			"is_active":       true,
			"password_set_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to activate account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, used
	}
	user.IsActive = true
	user.PasswordSetAt = &now

	return s.generateTokenPair(&user)
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.tokens.AccessToken(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.RefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserResponse(user),
	}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
