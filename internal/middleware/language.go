package middleware

import (
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/i18n"
	"github.com/ahmetcoskunkizilkaya/truckflow/internal/identity"
	"github.com/gofiber/fiber/v2"
)

// Language negotiates en/el from Accept-Language (or ?lang=) and exposes it
// through identity.Language.
func Language() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := c.Query("lang")
		if !i18n.Supported(lang) {
			lang = i18n.Negotiate(c.Get(fiber.HeaderAcceptLanguage))
		}
		identity.SetLanguage(c, lang)
		c.Set(fiber.HeaderContentLanguage, lang)
		return c.Next()
	}
}
