package handlers

import (
	"github.com/gofiber/fiber/v2"

	"influencer-battle/middleware"
	"influencer-battle/services"
)

type contestRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	CoverURL    string `json:"cover_url" form:"cover_url"`
	SongURL     string `json:"song_url" form:"song_url"`
	EndDate     string `json:"end_date" form:"end_date"`
	PrizePool   string `json:"prize_pool" form:"prize_pool"`
}

type influencerRequest struct {
	Name            string `json:"name" form:"name"`
	HandleTikTok    string `json:"handle_tiktok" form:"handle_tiktok"`
	HandleInstagram string `json:"handle_instagram" form:"handle_instagram"`
	AvatarURL       string `json:"avatar_url" form:"avatar_url"`
	Country         string `json:"country" form:"country"`
}

func (a *API) CreateContest(c *fiber.Ctx) error {
	var req contestRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, services.InvalidInput("Invalid request body."))
	}
	contest, err := a.Data.CreateContest(c.UserContext(), *middleware.CurrentUser(c), services.ContestInput{
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		SongURL:     req.SongURL,
		EndDate:     req.EndDate,
		PrizePool:   req.PrizePool,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contest)
}

func (a *API) CreateInfluencer(c *fiber.Ctx) error {
	var req influencerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, services.InvalidInput("Invalid request body."))
	}
	inf, err := a.Data.CreateInfluencer(c.UserContext(), *middleware.CurrentUser(c), services.InfluencerInput{
		Name:            req.Name,
		HandleTikTok:    req.HandleTikTok,
		HandleInstagram: req.HandleInstagram,
		AvatarURL:       req.AvatarURL,
		Country:         req.Country,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inf)
}
