// middleware/session.go
package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"influencer-battle/models"
	"influencer-battle/services"
)

const SessionCookie = "battle_sid"

const (
	localController = "session_controller"
	localUser       = "user"
	localState      = "session_state"
)

// SessionMiddleware attaches the browser's session controller, state and
// user to the request, issuing a session cookie when needed.
func SessionMiddleware(registry *services.SessionRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current := c.Cookies(SessionCookie)
		ctrl, sid := registry.Get(c.UserContext(), current)
		if sid != current {
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: "Lax",
				Expires:  time.Now().Add(30 * 24 * time.Hour),
			})
		}

		state, user := ctrl.Snapshot()
		c.Locals(localController, ctrl)
		c.Locals(localState, state)
		c.Locals(localUser, user)
		return c.Next()
	}
}

func Controller(c *fiber.Ctx) *services.SessionController {
	ctrl, _ := c.Locals(localController).(*services.SessionController)
	return ctrl
}

func CurrentUser(c *fiber.Ctx) *models.UserSession {
	user, _ := c.Locals(localUser).(*models.UserSession)
	return user
}

func CurrentState(c *fiber.Ctx) services.SessionState {
	state, _ := c.Locals(localState).(services.SessionState)
	return state
}

// sessionSettling answers requests that arrive while the session is
// switching users, so nothing runs as the previous identity.
func sessionSettling(c *fiber.Ctx) error {
	log.Printf("⏳ [SESSION] session still resolving for %s", c.Path())
	c.Set(fiber.HeaderRetryAfter, "1")
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":    "session loading",
		"decision": services.DecisionWait,
	})
}

// RequireAuth rejects requests without a settled, signed-in user.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentState(c) == services.StateLoading {
			return sessionSettling(c)
		}
		if CurrentUser(c) == nil {
			log.Printf("🚫 [SESSION] login required for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "login required",
				"redirect": "/login",
			})
		}
		return c.Next()
	}
}

// RequireProfile blocks influencers who have not finished onboarding.
func RequireProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentState(c) == services.StateLoading {
			return sessionSettling(c)
		}
		user := CurrentUser(c)
		if user != nil && !user.IsAdmin() && !user.HasProfile {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":    "onboarding required",
				"redirect": "/onboarding",
			})
		}
		return c.Next()
	}
}
