package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"influencer-battle/middleware"
	"influencer-battle/services"
	"influencer-battle/utils"
)

func (a *API) ListContests(c *fiber.Ctx) error {
	return c.JSON(a.Data.GetContests(c.UserContext()))
}

// GetContest returns a contest with its dates formatted for display.
func (a *API) GetContest(c *fiber.Ctx) error {
	contest, ok := a.Data.GetContestByID(c.UserContext(), c.Params("id"))
	if !ok {
		return respondError(c, services.ErrNotFound)
	}
	return c.JSON(fiber.Map{
		"contest": contest,
		"display": fiber.Map{
			"start_date": utils.FormatDate(contest.StartDate),
			"end_date":   utils.FormatDate(contest.EndDate),
		},
	})
}

// ListContestEntries returns the leaderboard, highest score first.
func (a *API) ListContestEntries(c *fiber.Ctx) error {
	return c.JSON(a.Data.GetContestEntries(c.UserContext(), c.Params("id")))
}

func (a *API) GetContestAnalytics(c *fiber.Ctx) error {
	analytics, ok := a.Data.GetContestAnalytics(c.UserContext(), c.Params("id"))
	if !ok {
		return respondError(c, services.ErrNotFound)
	}
	return c.JSON(analytics)
}

func (a *API) GetFeed(c *fiber.Ctx) error {
	return c.JSON(a.Data.GetFeed(c.UserContext()))
}

// SubmitEntry accepts a TikTok link, a video file, or both.
func (a *API) SubmitEntry(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	contestID := c.Params("id")
	if _, ok := a.Data.GetContestByID(c.UserContext(), contestID); !ok {
		return respondError(c, services.ErrNotFound)
	}

	videoURL := strings.TrimSpace(c.FormValue("video_url"))
	fh, _ := c.FormFile("video")
	if videoURL == "" && fh == nil {
		return respondError(c, services.InvalidInput("Please provide a TikTok link or upload a video file."))
	}

	var fileURL string
	if fh != nil {
		if a.MaxUploadBytes > 0 && fh.Size > a.MaxUploadBytes {
			return respondError(c, services.ErrFileTooLarge)
		}
		uploaded, err := a.Backend.UploadMedia(c.UserContext(), utils.FileFromHeader(fh), a.MediaBucket)
		if err != nil {
			return respondError(c, err)
		}
		fileURL = uploaded
	}

	entry, err := a.Data.SubmitEntry(c.UserContext(), *user, services.SubmissionInput{
		ContestID:    contestID,
		VideoURL:     utils.CleanSocialURL(videoURL),
		VideoFileURL: fileURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// Upload stores an arbitrary file and returns its URL.
func (a *API) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return respondError(c, services.InvalidInput("Missing file."))
	}
	if a.MaxUploadBytes > 0 && fh.Size > a.MaxUploadBytes {
		return respondError(c, services.ErrFileTooLarge)
	}
	bucket := c.FormValue("bucket", a.MediaBucket)
	url, err := a.Backend.UploadMedia(c.UserContext(), utils.FileFromHeader(fh), bucket)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}
