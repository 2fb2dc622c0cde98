package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"influencer-battle/models"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrBackendUnavailable  = errors.New("live backend not configured")
)

// LiveStore is the remote relational backend. Implementations report
// conflicts as ErrUniqueViolation / ErrForeignKeyViolation and missing rows
// as ErrRecordNotFound.
type LiveStore interface {
	ListInfluencers(ctx context.Context) ([]models.Influencer, error)
	GetInfluencer(ctx context.Context, id string) (*models.Influencer, error)
	FindInfluencerByHandle(ctx context.Context, handle, excludeID string) (*models.Influencer, error)
	InsertInfluencer(ctx context.Context, inf *models.Influencer) error
	UpsertInfluencer(ctx context.Context, inf *models.Influencer) error
	CountInfluencers(ctx context.Context, id string) (int64, error)

	ListContests(ctx context.Context) ([]models.Contest, error)
	GetContest(ctx context.Context, id string) (*models.Contest, error)
	InsertContest(ctx context.Context, c *models.Contest) error

	ListEntries(ctx context.Context, contestID string) ([]models.ContestEntry, error)
	// RecordEntry inserts the entry and advances the influencer's streak in
	// one transaction, returning the influencer as stored afterwards. A failed
	// insert leaves the streak untouched and verification is never cleared.
	RecordEntry(ctx context.Context, entry *models.ContestEntry) (*models.Influencer, error)

	ListStatsHistory(ctx context.Context, influencerID string) ([]models.InfluencerStatsHistory, error)

	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfileRole(ctx context.Context, id string, role models.UserRole) error
}

// GormStore is the Postgres-backed LiveStore.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// ConnectLive opens the database and verifies it answers within 5 seconds.
func ConnectLive(dsn string) (*GormStore, error) {
	if dsn == "" {
		return nil, ErrBackendUnavailable
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewGormStore(db), nil
}

func (g *GormStore) Close() error {
	sqlDB, err := g.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Read rows tolerate NULL columns; conversion applies the read defaults.

type influencerRow struct {
	ID                 string `gorm:"primaryKey"`
	Name               *string
	HandleTikTok       *string `gorm:"column:handle_tiktok"`
	HandleInstagram    *string `gorm:"column:handle_instagram"`
	AvatarURL          *string
	Country            *string
	Niches             pq.StringArray `gorm:"type:text[]"`
	TikTokFollowers    *int64         `gorm:"column:tiktok_followers"`
	InstagramFollowers *int64         `gorm:"column:instagram_followers"`
	LastUpdated        *time.Time
	IsVerified         *bool
	CampaignStreak     *int
}

func (influencerRow) TableName() string { return "influencers" }

func (r influencerRow) toModel() models.Influencer {
	inf := models.Influencer{
		ID:                 r.ID,
		Name:               str(r.Name),
		HandleTikTok:       str(r.HandleTikTok),
		HandleInstagram:    str(r.HandleInstagram),
		AvatarURL:          str(r.AvatarURL),
		Country:            str(r.Country),
		Niches:             r.Niches,
		TikTokFollowers:    i64(r.TikTokFollowers),
		InstagramFollowers: i64(r.InstagramFollowers),
	}
	if r.LastUpdated != nil {
		inf.LastUpdated = *r.LastUpdated
	}
	if r.IsVerified != nil {
		inf.IsVerified = *r.IsVerified
	}
	if r.CampaignStreak != nil {
		inf.CampaignStreak = *r.CampaignStreak
	}
	inf.Normalize()
	return inf
}

type contestRow struct {
	ID          string `gorm:"primaryKey"`
	Title       *string
	Description *string
	CoverURL    *string
	SongURL     *string
	StartDate   *string
	EndDate     *string
	Status      *string
	PrizePool   *string
	CreatedAt   *time.Time
}

func (contestRow) TableName() string { return "contests" }

func (r contestRow) toModel() models.Contest {
	c := models.Contest{
		ID:          r.ID,
		Title:       str(r.Title),
		Description: str(r.Description),
		CoverURL:    str(r.CoverURL),
		SongURL:     str(r.SongURL),
		StartDate:   str(r.StartDate),
		EndDate:     str(r.EndDate),
		Status:      models.ContestStatus(str(r.Status)),
		PrizePool:   str(r.PrizePool),
	}
	if r.CreatedAt != nil {
		c.CreatedAt = *r.CreatedAt
	}
	c.Normalize()
	return c
}

type entryRow struct {
	ID           string `gorm:"primaryKey"`
	ContestID    string
	InfluencerID string
	VideoURL     *string
	VideoFileURL *string
	Views        *int64
	Likes        *int64
	Comments     *int64
	Shares       *int64
	Score        *float64
	SubmittedAt  *time.Time
	UpdatedAt    *time.Time
	Influencer   *influencerRow `gorm:"foreignKey:InfluencerID;references:ID"`
}

func (entryRow) TableName() string { return "contest_entries" }

func (r entryRow) toModel() models.ContestEntry {
	e := models.ContestEntry{
		ID:           r.ID,
		ContestID:    r.ContestID,
		InfluencerID: r.InfluencerID,
		VideoURL:     str(r.VideoURL),
		VideoFileURL: str(r.VideoFileURL),
		Views:        i64(r.Views),
		Likes:        i64(r.Likes),
		Comments:     i64(r.Comments),
		Shares:       i64(r.Shares),
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Score != nil {
		e.Score = *r.Score
	}
	if r.SubmittedAt != nil {
		e.SubmittedAt = *r.SubmittedAt
	}
	if r.Influencer != nil {
		inf := r.Influencer.toModel()
		e.Influencer = &inf
	}
	return e
}

func (g *GormStore) ListInfluencers(ctx context.Context) ([]models.Influencer, error) {
	var rows []influencerRow
	if err := g.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]models.Influencer, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (g *GormStore) GetInfluencer(ctx context.Context, id string) (*models.Influencer, error) {
	var row influencerRow
	if err := g.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	inf := row.toModel()
	return &inf, nil
}

func (g *GormStore) FindInfluencerByHandle(ctx context.Context, handle, excludeID string) (*models.Influencer, error) {
	var rows []influencerRow
	err := g.DB.WithContext(ctx).
		Where("handle_tiktok = ? AND id <> ?", handle, excludeID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	inf := rows[0].toModel()
	return &inf, nil
}

func (g *GormStore) InsertInfluencer(ctx context.Context, inf *models.Influencer) error {
	return translateError(g.DB.WithContext(ctx).Create(inf).Error)
}

func (g *GormStore) UpsertInfluencer(ctx context.Context, inf *models.Influencer) error {
	err := g.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "handle_tiktok", "handle_instagram", "avatar_url", "country",
			"niches", "tiktok_followers", "last_updated",
		}),
	}).Create(inf).Error
	return translateError(err)
}

func (g *GormStore) CountInfluencers(ctx context.Context, id string) (int64, error) {
	var n int64
	err := g.DB.WithContext(ctx).Model(&models.Influencer{}).Where("id = ?", id).Count(&n).Error
	return n, translateError(err)
}

func (g *GormStore) ListContests(ctx context.Context) ([]models.Contest, error) {
	var rows []contestRow
	if err := g.DB.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]models.Contest, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (g *GormStore) GetContest(ctx context.Context, id string) (*models.Contest, error) {
	var row contestRow
	if err := g.DB.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	c := row.toModel()
	return &c, nil
}

func (g *GormStore) InsertContest(ctx context.Context, c *models.Contest) error {
	return translateError(g.DB.WithContext(ctx).Create(c).Error)
}

func (g *GormStore) ListEntries(ctx context.Context, contestID string) ([]models.ContestEntry, error) {
	var rows []entryRow
	err := g.DB.WithContext(ctx).
		Preload("Influencer").
		Where("contest_id = ?", contestID).
		Order("submitted_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err)
	}
	out := make([]models.ContestEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (g *GormStore) RecordEntry(ctx context.Context, entry *models.ContestEntry) (*models.Influencer, error) {
	var row influencerRow
	err := g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(entry).Error; err != nil {
			return err
		}
		// SET expressions see the pre-update streak.
		if err := tx.Model(&influencerRow{}).
			Where("id = ?", entry.InfluencerID).
			Updates(map[string]any{
				"campaign_streak": gorm.Expr("COALESCE(campaign_streak, 0) + 1"),
				"is_verified":     gorm.Expr("COALESCE(is_verified, false) OR COALESCE(campaign_streak, 0) + 1 >= ?", models.VerificationStreak),
			}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", entry.InfluencerID).First(&row).Error
	})
	if err != nil {
		return nil, translateError(err)
	}
	inf := row.toModel()
	return &inf, nil
}

func (g *GormStore) ListStatsHistory(ctx context.Context, influencerID string) ([]models.InfluencerStatsHistory, error) {
	var rows []models.InfluencerStatsHistory
	err := g.DB.WithContext(ctx).
		Where("influencer_id = ?", influencerID).
		Order("recorded_at asc").
		Find(&rows).Error
	return rows, translateError(err)
}

func (g *GormStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := g.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

func (g *GormStore) UpdateProfileRole(ctx context.Context, id string, role models.UserRole) error {
	err := g.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("role", role).Error
	return translateError(err)
}

// translateError maps driver errors onto the store's sentinel set.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.Message)
		case "23503":
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.Message)
		}
	}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrUniqueViolation, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrForeignKeyViolation, err)
	}
	return err
}

// OfflineStore stands in when no database is configured. Every call fails,
// so reads fall back and live writes surface a storage failure.
type OfflineStore struct{}

func (OfflineStore) ListInfluencers(context.Context) ([]models.Influencer, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) GetInfluencer(context.Context, string) (*models.Influencer, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) FindInfluencerByHandle(context.Context, string, string) (*models.Influencer, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) InsertInfluencer(context.Context, *models.Influencer) error {
	return ErrBackendUnavailable
}

func (OfflineStore) UpsertInfluencer(context.Context, *models.Influencer) error {
	return ErrBackendUnavailable
}

func (OfflineStore) CountInfluencers(context.Context, string) (int64, error) {
	return 0, ErrBackendUnavailable
}

func (OfflineStore) ListContests(context.Context) ([]models.Contest, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) GetContest(context.Context, string) (*models.Contest, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) InsertContest(context.Context, *models.Contest) error {
	return ErrBackendUnavailable
}

func (OfflineStore) ListEntries(context.Context, string) ([]models.ContestEntry, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) RecordEntry(context.Context, *models.ContestEntry) (*models.Influencer, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) ListStatsHistory(context.Context, string) ([]models.InfluencerStatsHistory, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) GetProfile(context.Context, string) (*models.Profile, error) {
	return nil, ErrBackendUnavailable
}

func (OfflineStore) UpdateProfileRole(context.Context, string, models.UserRole) error {
	return ErrBackendUnavailable
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func i64(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
