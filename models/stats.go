package models

import "time"

// InfluencerStatsHistory is one stored follower snapshot.
type InfluencerStatsHistory struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	InfluencerID       string    `json:"influencer_id" gorm:"index"`
	RecordedAt         time.Time `json:"recorded_at"`
	TikTokFollowers    int64     `json:"tiktok_followers" gorm:"column:tiktok_followers"`
	InstagramFollowers int64     `json:"instagram_followers"`
	TotalFollowers     int64     `json:"total_followers"`
}

func (InfluencerStatsHistory) TableName() string { return "influencer_stats_history" }

// StatsPoint is a chart-ready history point.
type StatsPoint struct {
	Date      string `json:"date"`
	Followers int64  `json:"followers"`
	TikTok    int64  `json:"tiktok"`
	Instagram int64  `json:"instagram"`
}
