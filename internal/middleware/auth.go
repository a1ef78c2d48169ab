package middleware

import (
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/config"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/i18n"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// JWTProtected verifies the bearer token's signature and expiry.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(
				i18n.T(identity.Language(c), "auth.notAuthorized", nil),
			))
		},
	})
}

// CurrentUser resolves the token subject to an active user. It must run
// after JWTProtected.
func CurrentUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		unauthorized := func(msg string) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail(msg))
		}

		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(i18n.T(identity.Language(c), "auth.notAuthorized", nil))
		}
		mc, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(i18n.T(identity.Language(c), "auth.notAuthorized", nil))
		}
		claims, err := services.ClaimsFromMap(mc, services.TokenAccess)
		if err != nil {
			return unauthorized(i18n.T(identity.Language(c), "auth.notAuthorized", nil))
		}

		var user models.User
		if err := db.First(&user, "id = ?", claims.UserID).Error; err != nil {
			return unauthorized("User not found")
		}
		if !user.IsActive {
			return unauthorized(i18n.T(identity.Language(c), "auth.accountDeactivated", nil))
		}

		identity.SetUser(c, &user)
		if user.PreferredLanguage != "" && c.Get(fiber.HeaderAcceptLanguage) == "" {
			identity.SetLanguage(c, user.PreferredLanguage)
		}
		return c.Next()
	}
}
