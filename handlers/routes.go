package handlers

import (
	"github.com/gofiber/fiber/v2"

	"influencer-battle/middleware"
	"influencer-battle/services"
)

// API holds what the route handlers need.
type API struct {
	Data           *services.DataService
	Backend        *services.Backend
	MediaBucket    string
	MaxUploadBytes int64
}

func SetupRoutes(app *fiber.App, registry *services.SessionRegistry, api *API) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 🔓 Session-aware public routes
	public := app.Group("/", middleware.SessionMiddleware(registry))
	setupAuthRoutes(public)

	// 🔐 Signed in, onboarding not required yet
	signedIn := public.Group("/", middleware.RequireAuth())
	signedIn.Post("/onboarding", api.CompleteOnboarding)

	// 🔐 Signed in with a completed profile
	secured := signedIn.Group("/", middleware.RequireProfile())
	secured.Get("/influencers", api.ListInfluencers)
	secured.Get("/influencers/:id", api.GetInfluencer)
	secured.Get("/influencers/:id/stats", api.GetInfluencerStats)
	secured.Get("/contests", api.ListContests)
	secured.Get("/contests/:id", api.GetContest)
	secured.Get("/contests/:id/entries", api.ListContestEntries)
	secured.Get("/contests/:id/analytics", api.GetContestAnalytics)
	secured.Post("/contests/:id/entries", api.SubmitEntry)
	secured.Get("/feed", api.GetFeed)
	secured.Post("/uploads", api.Upload)

	// 👑 Admin only
	admin := secured.Group("/admin", middleware.RequireAdmin())
	admin.Post("/contests", api.CreateContest)
	admin.Post("/influencers", api.CreateInfluencer)
}
