package models

import (
	"time"

	"github.com/lib/pq"
)

// VerificationStreak is the campaign streak at which an influencer becomes verified.
const VerificationStreak = 3

// Influencer is a creator profile. TotalFollowers is derived, never stored.
type Influencer struct {
	ID                 string         `json:"id" gorm:"primaryKey"`
	Name               string         `json:"name" gorm:"not null"`
	HandleTikTok       string         `json:"handle_tiktok,omitempty" gorm:"column:handle_tiktok;index"`
	HandleInstagram    string         `json:"handle_instagram,omitempty" gorm:"column:handle_instagram"`
	AvatarURL          string         `json:"avatar_url,omitempty"`
	Country            string         `json:"country"`
	Niches             pq.StringArray `json:"niches" gorm:"type:text[]"`
	TikTokFollowers    int64          `json:"tiktok_followers" gorm:"column:tiktok_followers;default:0"`
	InstagramFollowers int64          `json:"instagram_followers" gorm:"column:instagram_followers;default:0"`
	LastUpdated        time.Time      `json:"last_updated"`
	IsVerified         bool           `json:"is_verified" gorm:"default:false"`
	CampaignStreak     int            `json:"campaign_streak" gorm:"default:0"`

	// Calculated fields (not stored in DB)
	TotalFollowers int64              `json:"total_followers" gorm:"-"`
	Display        *InfluencerDisplay `json:"display,omitempty" gorm:"-"`
}

func (Influencer) TableName() string { return "influencers" }

// InfluencerDisplay carries preformatted values for list and profile views.
type InfluencerDisplay struct {
	Followers   string `json:"followers"`
	TikTok      string `json:"tiktok"`
	Instagram   string `json:"instagram"`
	LastUpdated string `json:"last_updated"`
}

// Normalize applies read defaults and recomputes the derived total.
func (i *Influencer) Normalize() {
	if i.Niches == nil {
		i.Niches = pq.StringArray{}
	}
	if i.CampaignStreak < 0 {
		i.CampaignStreak = 0
	}
	i.TotalFollowers = i.TikTokFollowers + i.InstagramFollowers
}

// RecordSubmission advances the streak for one successful contest entry.
func (i *Influencer) RecordSubmission() {
	i.CampaignStreak, i.IsVerified = AdvanceStreak(i.CampaignStreak, i.IsVerified)
}

// AdvanceStreak increments a streak and promotes to verified once the
// threshold is reached. Verified is never cleared here.
func AdvanceStreak(streak int, verified bool) (int, bool) {
	if streak < 0 {
		streak = 0
	}
	streak++
	if streak >= VerificationStreak {
		verified = true
	}
	return streak, verified
}
