// middleware/roles.go
package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin only lets admins through; everyone else is sent back to the
// influencer list.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			id := ""
			if user != nil {
				id = user.ID
			}
			log.Printf("❌ [ROLES] admin route %s refused for %q", c.Path(), id)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    "admin access required",
				"redirect": "/influencers",
			})
		}
		return c.Next()
	}
}
