package models

import "time"

// ContestEntry is one influencer's submission to one contest. At most one
// entry exists per (ContestID, InfluencerID).
type ContestEntry struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	ContestID    string     `json:"contest_id" gorm:"not null;uniqueIndex:idx_entry_contest_influencer"`
	InfluencerID string     `json:"influencer_id" gorm:"not null;uniqueIndex:idx_entry_contest_influencer"`
	VideoURL     string     `json:"video_url"`
	VideoFileURL string     `json:"video_file_url,omitempty"`
	Views        int64      `json:"views" gorm:"default:0"`
	Likes        int64      `json:"likes" gorm:"default:0"`
	Comments     int64      `json:"comments" gorm:"default:0"`
	Shares       int64      `json:"shares" gorm:"default:0"`
	Score        float64    `json:"score" gorm:"default:0"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`

	// Relationship: denormalized join, populated on read
	Influencer *Influencer `json:"influencer,omitempty" gorm:"foreignKey:InfluencerID"`
}

func (ContestEntry) TableName() string { return "contest_entries" }

// EngagementTotal sums likes, comments and shares.
func (e ContestEntry) EngagementTotal() int64 {
	return e.Likes + e.Comments + e.Shares
}
