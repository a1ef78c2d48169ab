// Package identity reads the authenticated caller out of the Fiber context.
package identity

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/i18n"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	userKey = "current_user"
	langKey = "lang"
)

var ErrNoUser = errors.New("no authenticated user in context")

func SetUser(c *fiber.Ctx, user *models.User) {
	c.Locals(userKey, user)
}

// User returns the caller resolved by middleware.CurrentUser.
func User(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}

func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	user, err := User(c)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

func SetLanguage(c *fiber.Ctx, lang string) {
	c.Locals(langKey, lang)
}

// Language is the negotiated response language, English by default.
func Language(c *fiber.Ctx) string {
	if lang, ok := c.Locals(langKey).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLang
}
