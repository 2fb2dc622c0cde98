package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"influencer-battle/models"
	"influencer-battle/services"
	"influencer-battle/utils"
)

func withDisplay(inf models.Influencer, now time.Time) models.Influencer {
	inf.Display = &models.InfluencerDisplay{
		Followers:   utils.FormatCount(inf.TotalFollowers),
		TikTok:      utils.FormatCount(inf.TikTokFollowers),
		Instagram:   utils.FormatCount(inf.InstagramFollowers),
		LastUpdated: utils.FormatTimeAgo(inf.LastUpdated, now),
	}
	return inf
}

// ListInfluencers returns the directory, optionally filtered by ?q=.
func (a *API) ListInfluencers(c *fiber.Ctx) error {
	list := a.Data.GetInfluencers(c.UserContext())
	list = services.FilterInfluencers(list, c.Query("q"))

	now := a.Data.Now()
	out := make([]models.Influencer, len(list))
	for i, inf := range list {
		out[i] = withDisplay(inf, now)
	}
	return c.JSON(out)
}

func (a *API) GetInfluencer(c *fiber.Ctx) error {
	inf, ok := a.Data.GetInfluencerByID(c.UserContext(), c.Params("id"))
	if !ok {
		return respondError(c, services.ErrNotFound)
	}
	return c.JSON(withDisplay(inf, a.Data.Now()))
}

func (a *API) GetInfluencerStats(c *fiber.Ctx) error {
	return c.JSON(a.Data.GetStatsHistory(c.UserContext(), c.Params("id")))
}
