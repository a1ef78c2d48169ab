package middleware

import (
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/truckflow/internal/dto"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/models"
	"github.com/gofiber/fiber/v2"
)

// Authorize allows the request through only for the listed roles. It must
// run after CurrentUser.
func Authorize(roles ...models.Role) fiber.Handler {
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("middleware: unknown role %q", r))
		}
	}
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}

	return func(c *fiber.Ctx) error {
		user, err := identity.User(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("Unauthorized"))
		}
		if !contains(roles, user.Role) {
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail(
				fmt.Sprintf("User role '%s' is not authorized to access this route (requires %s)",
					user.Role, strings.Join(allowed, " or ")),
			))
		}
		return c.Next()
	}
}

func contains(list []models.Role, val models.Role) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
