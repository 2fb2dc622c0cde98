package handlers

import (
	"github.com/gofiber/fiber/v2"

	"influencer-battle/middleware"
	"influencer-battle/services"
	"influencer-battle/utils"
)

type onboardingRequest struct {
	Name            string `json:"name" form:"name"`
	Country         string `json:"country" form:"country"`
	HandleTikTok    string `json:"handle_tiktok" form:"handle_tiktok"`
	HandleInstagram string `json:"handle_instagram" form:"handle_instagram"`
	Followers       string `json:"followers" form:"followers"`
	AvatarURL       string `json:"avatar_url" form:"avatar_url"`
}

// CompleteOnboarding saves the caller's creator profile. The avatar may be
// sent as a multipart "avatar" file.
func (a *API) CompleteOnboarding(c *fiber.Ctx) error {
	var req onboardingRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, services.InvalidInput("Invalid request body."))
	}

	in := services.OnboardingInput{
		Name:            req.Name,
		Country:         req.Country,
		HandleTikTok:    req.HandleTikTok,
		HandleInstagram: req.HandleInstagram,
		Followers:       req.Followers,
		AvatarURL:       req.AvatarURL,
	}
	if fh, err := c.FormFile("avatar"); err == nil {
		if a.MaxUploadBytes > 0 && fh.Size > a.MaxUploadBytes {
			return respondError(c, services.ErrFileTooLarge)
		}
		f := utils.FileFromHeader(fh)
		in.Avatar = &f
	}

	ctrl := middleware.Controller(c)
	inf, err := a.Data.CompleteOnboarding(c.UserContext(), *middleware.CurrentUser(c), in)
	if err != nil {
		return respondError(c, err)
	}
	ctrl.MarkProfileComplete(c.UserContext())
	_, user := ctrl.Snapshot()

	return c.JSON(fiber.Map{
		"influencer": inf,
		"user":       user,
		"redirect":   services.HomePath(user),
	})
}
