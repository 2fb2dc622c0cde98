package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"influencer-battle/middleware"
	"influencer-battle/models"
	"influencer-battle/services"
)

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	FullName string `json:"full_name" form:"full_name"`
}

type demoRequest struct {
	Role string `json:"role" form:"role"`
}

func setupAuthRoutes(r fiber.Router) {
	r.Post("/auth/signup", signUp)
	r.Post("/auth/login", signIn)
	r.Post("/auth/demo", demoLogin)
	r.Post("/auth/logout", signOut)
	r.Get("/session", currentSession)
	r.Get("/navigation", navigation)
	r.Get("/routes/check", checkRoute)
}

func parseCredentials(c *fiber.Ctx) (credentialsRequest, error) {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return req, services.InvalidInput("Invalid request body.")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return req, services.InvalidInput("Email and password are required.")
	}
	return req, nil
}

func loggedIn(c *fiber.Ctx, user models.UserSession) error {
	return c.JSON(fiber.Map{
		"user":     user,
		"redirect": services.HomePath(&user),
	})
}

func signUp(c *fiber.Ctx) error {
	req, err := parseCredentials(c)
	if err != nil {
		return respondError(c, err)
	}
	user, needsConfirmation, err := middleware.Controller(c).SignUp(c.UserContext(), req.Email, req.Password, req.FullName)
	if err != nil {
		return respondError(c, err)
	}
	if needsConfirmation || user == nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"status": "check_email",
			"email":  req.Email,
		})
	}
	return loggedIn(c, *user)
}

func signIn(c *fiber.Ctx) error {
	req, err := parseCredentials(c)
	if err != nil {
		return respondError(c, err)
	}
	user, err := middleware.Controller(c).SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return loggedIn(c, user)
}

func demoLogin(c *fiber.Ctx) error {
	var req demoRequest
	_ = c.BodyParser(&req)
	user := middleware.Controller(c).DemoLogin(c.UserContext(), models.UserRole(req.Role))
	return loggedIn(c, user)
}

func signOut(c *fiber.Ctx) error {
	middleware.Controller(c).SignOut(c.UserContext())
	return c.JSON(fiber.Map{"status": "signed_out", "redirect": "/login"})
}

func currentSession(c *fiber.Ctx) error {
	state, user := middleware.Controller(c).Snapshot()
	return c.JSON(fiber.Map{
		"state":      state,
		"user":       user,
		"navigation": services.NavigationFor(user),
	})
}

func navigation(c *fiber.Ctx) error {
	_, user := middleware.Controller(c).Snapshot()
	return c.JSON(services.NavigationFor(user))
}

func checkRoute(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	decision := services.Gate(middleware.CurrentState(c), user, c.Query("path", "/"))

	body := fiber.Map{"decision": decision}
	switch decision {
	case services.DecisionLogin:
		body["redirect"] = "/login"
	case services.DecisionOnboarding:
		body["redirect"] = "/onboarding"
	case services.DecisionForbidden:
		body["redirect"] = "/influencers"
	case services.DecisionHome:
		body["redirect"] = services.HomePath(user)
	}
	return c.JSON(body)
}
