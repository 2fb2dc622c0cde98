package models

import "time"

type ContestStatus string

const (
	ContestActive   ContestStatus = "active"
	ContestInactive ContestStatus = "inactive"
	ContestDraft    ContestStatus = "draft"
)

// Contest is a time-boxed campaign. Dates are kept as the ISO strings they
// were entered with.
type Contest struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description"`
	CoverURL    string        `json:"cover_url"`
	SongURL     string        `json:"song_url"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Status      ContestStatus `json:"status" gorm:"default:'draft'"`
	PrizePool   string        `json:"prize_pool"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
}

func (Contest) TableName() string { return "contests" }

// Normalize fills the defaults applied to every read.
func (c *Contest) Normalize() {
	if c.Status == "" {
		c.Status = ContestDraft
	}
}
