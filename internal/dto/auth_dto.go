package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type SetupPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success      bool         `json:"success"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type RefreshResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
}

type UserResponse struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone"`
	Role              models.Role `json:"role"`
	IsActive          bool        `json:"is_active"`
	PreferredLanguage string      `json:"preferred_language"`
	Country           string      `json:"country"`
	Avatar            string      `json:"avatar,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Phone:             u.Phone,
		Role:              u.Role,
		IsActive:          u.IsActive,
		PreferredLanguage: u.PreferredLanguage,
		Country:           u.Country,
		Avatar:            u.Avatar,
		CreatedAt:         u.CreatedAt,
	}
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(message string) MessageResponse {
	return MessageResponse{Success: true, Message: message}
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Fail(message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message}
}

type HealthResponse struct {
	Success     bool   `json:"success"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	DB          string `json:"db"`
	OnlineUsers int    `json:"online_users"`
}
