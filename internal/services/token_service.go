package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind is carried in the "typ" claim and checked before a token is trusted.
type TokenKind string

const (
	TokenAccess      TokenKind = "access"
	TokenRefresh     TokenKind = "refresh"
	TokenDriverSetup TokenKind = "driver_setup"
)

// TokenClaims is the verified content of a signed token.
type TokenClaims struct {
	UserID uuid.UUID
	Role   models.Role
	Email  string
	Kind   TokenKind
}

type TokenIssuer struct {
	cfg *config.Config
	now func() time.Time
}

func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

func (t *TokenIssuer) AccessToken(user *models.User) (string, error) {
	return t.sign(jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"typ":  string(TokenAccess),
	}, t.cfg.JWTAccessExpiry, t.cfg.JWTSecret)
}

func (t *TokenIssuer) RefreshToken(user *models.User) (string, error) {
	return t.sign(jwt.MapClaims{
		"sub": user.ID.String(),
		"typ": string(TokenRefresh),
	}, t.cfg.JWTRefreshExpiry, t.cfg.JWTRefreshSecret)
}

func (t *TokenIssuer) SetupToken(user *models.User) (string, error) {
	return t.sign(jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"typ":   string(TokenDriverSetup),
	}, t.cfg.SetupTokenExpiry, t.cfg.JWTSecret)
}

// ParseAccess verifies an access token (used by the websocket handshake).
func (t *TokenIssuer) ParseAccess(raw string) (*TokenClaims, error) {
	return t.parse(raw, t.cfg.JWTSecret, TokenAccess)
}

func (t *TokenIssuer) ParseRefresh(raw string) (*TokenClaims, error) {
	return t.parse(raw, t.cfg.JWTRefreshSecret, TokenRefresh)
}

func (t *TokenIssuer) ParseSetup(raw string) (*TokenClaims, error) {
	return t.parse(raw, t.cfg.JWTSecret, TokenDriverSetup)
}

func (t *TokenIssuer) sign(claims jwt.MapClaims, ttl time.Duration, secret string) (string, error) {
	now := t.now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) parse(raw, secret string, want TokenKind) (*TokenClaims, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return ClaimsFromMap(mc, want)
}

// ClaimsFromMap validates the kind and subject of already-verified claims.
func ClaimsFromMap(mc jwt.MapClaims, want TokenKind) (*TokenClaims, error) {
	kind, _ := mc["typ"].(string)
	if TokenKind(kind) != want {
		return nil, errors.Join(ErrInvalidToken, fmt.Errorf("token kind %q, want %q", kind, want))
	}

	sub, _ := mc["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}

	role, _ := mc["role"].(string)
	email, _ := mc["email"].(string)
	return &TokenClaims{
		UserID: userID,
		Role:   models.Role(role),
		Email:  email,
		Kind:   TokenKind(kind),
	}, nil
}
