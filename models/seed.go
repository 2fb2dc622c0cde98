package models

import (
	"time"

	"github.com/lib/pq"
)

// SeedInfluencers returns a fresh copy of the built-in influencer dataset.
func SeedInfluencers(now time.Time) []Influencer {
	seed := []Influencer{
		{
			ID:                 "1",
			Name:               "Sarah Jenkins",
			HandleTikTok:       "@sarahj_music",
			HandleInstagram:    "sarah.jenkins",
			AvatarURL:          "https://images.unsplash.com/photo-1494790108377-be9c29b29330?q=80&w=300&auto=format&fit=crop",
			Country:            "USA",
			Niches:             pq.StringArray{"Music", "Lifestyle"},
			TikTokFollowers:    1200000,
			InstagramFollowers: 450000,
			IsVerified:         true,
			CampaignStreak:     5,
		},
		{
			ID:                 "2",
			Name:               "Davide Rossi",
			HandleTikTok:       "@davide_vibes",
			HandleInstagram:    "davide.official",
			AvatarURL:          "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?q=80&w=300&auto=format&fit=crop",
			Country:            "Italy",
			Niches:             pq.StringArray{"Fashion", "Dance"},
			TikTokFollowers:    850000,
			InstagramFollowers: 900000,
			CampaignStreak:     2,
		},
		{
			ID:                 "3",
			Name:               "K-Pop Stans",
			HandleTikTok:       "@kpop_daily",
			HandleInstagram:    "kpop.updates",
			AvatarURL:          "https://images.unsplash.com/photo-1534528741775-53994a69daeb?q=80&w=300&auto=format&fit=crop",
			Country:            "South Korea",
			Niches:             pq.StringArray{"K-Pop", "Entertainment"},
			TikTokFollowers:    3200000,
			InstagramFollowers: 120000,
			IsVerified:         true,
			CampaignStreak:     12,
		},
		{
			ID:                 "4",
			Name:               "Elena Fisher",
			HandleTikTok:       "@elena_f",
			HandleInstagram:    "elena.f",
			AvatarURL:          "https://images.unsplash.com/photo-1531746020798-e6953c6e8e04?q=80&w=300&auto=format&fit=crop",
			Country:            "UK",
			Niches:             pq.StringArray{"Comedy", "Acting"},
			TikTokFollowers:    45000,
			InstagramFollowers: 12000,
		},
	}
	for i := range seed {
		seed[i].LastUpdated = now
		seed[i].Normalize()
	}
	return seed
}

// SeedContests returns a fresh copy of the built-in contest dataset.
func SeedContests() []Contest {
	return []Contest{
		{
			ID:          "101",
			Title:       "Midnight Sky - Viral Challenge",
			Description: "Create a transition video using the drop of Midnight Sky.",
			CoverURL:    "https://picsum.photos/800/400",
			Status:      ContestActive,
			StartDate:   "2023-10-01",
			EndDate:     "2023-11-01",
			PrizePool:   "$5,000",
			SongURL:     "#",
		},
		{
			ID:          "102",
			Title:       "Neon Lights Launch",
			Description: "Use the official sound in your GRWM videos.",
			CoverURL:    "https://picsum.photos/800/401",
			Status:      ContestInactive,
			StartDate:   "2023-08-15",
			EndDate:     "2023-09-15",
			PrizePool:   "$2,500",
			SongURL:     "#",
		},
	}
}

// SeedEntries returns a fresh copy of the built-in entries. The influencer
// join is left empty; stores attach it on read.
func SeedEntries() []ContestEntry {
	return []ContestEntry{
		{
			ID:           "e1",
			ContestID:    "101",
			InfluencerID: "1",
			VideoURL:     "https://tiktok.com/@sarahj/video/1",
			VideoFileURL: "https://videos.pexels.com/video-files/6981411/6981411-hd_1080_1920_25fps.mp4",
			Views:        450000,
			Likes:        89000,
			Comments:     1200,
			Shares:       4500,
			Score:        85.5,
			SubmittedAt:  mustTime("2023-10-05T10:00:00Z"),
			UpdatedAt:    timePtr(mustTime("2023-10-06T12:00:00Z")),
		},
		{
			ID:           "e2",
			ContestID:    "101",
			InfluencerID: "2",
			VideoURL:     "https://tiktok.com/@davide/video/1",
			VideoFileURL: "https://videos.pexels.com/video-files/4552467/4552467-uhd_2160_3840_30fps.mp4",
			Views:        1250000,
			Likes:        210000,
			Comments:     5600,
			Shares:       12000,
			Score:        94.2,
			SubmittedAt:  mustTime("2023-10-06T14:30:00Z"),
			UpdatedAt:    timePtr(mustTime("2023-10-07T09:00:00Z")),
		},
	}
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func timePtr(t time.Time) *time.Time { return &t }
