package models

// ContestAnalytics summarises a contest's entries.
type ContestAnalytics struct {
	ContestID      string           `json:"contest_id"`
	TotalEntries   int              `json:"total_entries"`
	TotalViews     int64            `json:"total_views"`
	TotalLikes     int64            `json:"total_likes"`
	TotalComments  int64            `json:"total_comments"`
	TotalShares    int64            `json:"total_shares"`
	EngagementRate float64          `json:"engagement_rate"`
	Timeline       []TimelinePoint  `json:"timeline"`
	TopNiches      []NicheShare     `json:"top_niches"`
	TopPerformers  []Performer      `json:"top_performers"`
	Display        AnalyticsDisplay `json:"display"`
}

// TimelinePoint is the cumulative view count after one submission.
type TimelinePoint struct {
	Date      string `json:"date"`
	Views     int64  `json:"views"`
	EntryName string `json:"entry_name,omitempty"`
}

// NicheShare is the views attributed to one niche across entries.
type NicheShare struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type Performer struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Likes  int64   `json:"likes"`
	Shares int64   `json:"shares"`
}

type AnalyticsDisplay struct {
	Views          string `json:"views"`
	Likes          string `json:"likes"`
	EngagementRate string `json:"engagement_rate"`
}
