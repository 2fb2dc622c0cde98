package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"

	"influencer-battle/models"
	"influencer-battle/utils"
)

// DemoLatency simulates backend round trips on the fallback write path.
type DemoLatency struct {
	Submit  time.Duration
	Settle  time.Duration
	Create  time.Duration
	Onboard time.Duration
}

func DefaultDemoLatency() DemoLatency {
	return DemoLatency{
		Submit:  1500 * time.Millisecond,
		Settle:  500 * time.Millisecond,
		Create:  800 * time.Millisecond,
		Onboard: 1000 * time.Millisecond,
	}
}

// DataService is the single entry point for domain reads and writes. Reads
// prefer the live store and fall back to the in-process dataset; writes
// route on the caller's origin.
type DataService struct {
	Live        LiveStore
	Fallback    *FallbackStore
	Backend     *Backend
	ListTimeout time.Duration
	Latency     DemoLatency
	MediaBucket string
	Now         func() time.Time
	Shuffle     func(n int, swap func(i, j int))
}

func NewDataService(live LiveStore, fallback *FallbackStore, backend *Backend, listTimeout time.Duration, latency DemoLatency) *DataService {
	if listTimeout <= 0 {
		listTimeout = 10 * time.Second
	}
	return &DataService{
		Live:        live,
		Fallback:    fallback,
		Backend:     backend,
		ListTimeout: listTimeout,
		Latency:     latency,
		MediaBucket: "avatars",
		Now:         time.Now,
		Shuffle:     rand.Shuffle,
	}
}

// ---------- Reads ----------

func (s *DataService) GetInfluencers(ctx context.Context) []models.Influencer {
	ctx, cancel := context.WithTimeout(ctx, s.ListTimeout)
	defer cancel()

	rows, err := s.Live.ListInfluencers(ctx)
	if err != nil || len(rows) == 0 {
		logFallback("influencers", err)
		return s.Fallback.Influencers()
	}
	for i := range rows {
		if rows[i].AvatarURL == "" {
			rows[i].AvatarURL = placeholderAvatarURL
		}
		rows[i].Normalize()
	}
	return rows
}

// FilterInfluencers keeps influencers whose name or country contains query,
// ignoring case and accents. An empty query keeps everything.
func FilterInfluencers(list []models.Influencer, query string) []models.Influencer {
	q := foldText(query)
	if q == "" {
		return list
	}
	out := make([]models.Influencer, 0, len(list))
	for _, inf := range list {
		if strings.Contains(foldText(inf.Name), q) || strings.Contains(foldText(inf.Country), q) {
			out = append(out, inf)
		}
	}
	return out
}

func (s *DataService) GetInfluencerByID(ctx context.Context, id string) (models.Influencer, bool) {
	inf, err := s.Live.GetInfluencer(ctx, id)
	if err == nil && inf != nil {
		inf.Normalize()
		return *inf, true
	}
	logFallback("influencer "+id, err)
	return s.Fallback.Influencer(id)
}

func (s *DataService) GetContests(ctx context.Context) []models.Contest {
	ctx, cancel := context.WithTimeout(ctx, s.ListTimeout)
	defer cancel()

	rows, err := s.Live.ListContests(ctx)
	if err != nil || len(rows) == 0 {
		logFallback("contests", err)
		return s.Fallback.Contests()
	}
	for i := range rows {
		rows[i].Normalize()
	}
	return rows
}

func (s *DataService) GetContestByID(ctx context.Context, id string) (models.Contest, bool) {
	c, err := s.Live.GetContest(ctx, id)
	if err == nil && c != nil {
		c.Normalize()
		return *c, true
	}
	logFallback("contest "+id, err)
	return s.Fallback.Contest(id)
}

// GetContestEntries merges live entries with fallback entries for the same
// contest and orders the result by score, highest first. Fallback entries
// whose id or influencer already appears live are skipped.
func (s *DataService) GetContestEntries(ctx context.Context, contestID string) []models.ContestEntry {
	ctx, cancel := context.WithTimeout(ctx, s.ListTimeout)
	defer cancel()

	fallback := s.Fallback.Entries(contestID)
	live, err := s.Live.ListEntries(ctx, contestID)
	if err != nil {
		logFallback("entries for contest "+contestID, err)
		live = nil
	}

	merged := make([]models.ContestEntry, 0, len(live)+len(fallback))
	seenIDs := make(map[string]bool, len(live))
	seenPairs := make(map[string]bool, len(live))
	add := func(e models.ContestEntry) {
		pair := e.ContestID + "\x00" + e.InfluencerID
		if seenIDs[e.ID] || seenPairs[pair] {
			return
		}
		seenIDs[e.ID] = true
		seenPairs[pair] = true
		if e.Influencer != nil {
			e.Influencer.Normalize()
		}
		merged = append(merged, e)
	}
	for _, e := range live {
		add(e)
	}
	for _, e := range fallback {
		add(e)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// GetStatsHistory returns chart points for an influencer, or an empty
// series when no history is available.
func (s *DataService) GetStatsHistory(ctx context.Context, influencerID string) []models.StatsPoint {
	ctx, cancel := context.WithTimeout(ctx, s.ListTimeout)
	defer cancel()

	rows, err := s.Live.ListStatsHistory(ctx, influencerID)
	if err != nil {
		logFallback("stats history for "+influencerID, err)
	}
	points := make([]models.StatsPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, models.StatsPoint{
			Date:      r.RecordedAt.UTC().Format("Jan 2"),
			Followers: r.TotalFollowers,
			TikTok:    r.TikTokFollowers,
			Instagram: r.InstagramFollowers,
		})
	}
	return points
}

// GetFeed collects the entries of the first four contests in random order.
func (s *DataService) GetFeed(ctx context.Context) []models.ContestEntry {
	contests := s.GetContests(ctx)
	if len(contests) > 4 {
		contests = contests[:4]
	}
	var feed []models.ContestEntry
	for _, c := range contests {
		feed = append(feed, s.GetContestEntries(ctx, c.ID)...)
	}
	s.Shuffle(len(feed), func(i, j int) { feed[i], feed[j] = feed[j], feed[i] })
	return feed
}

// GetContestAnalytics summarises a contest's entries. It reports false when
// the contest has no entries.
func (s *DataService) GetContestAnalytics(ctx context.Context, contestID string) (models.ContestAnalytics, bool) {
	entries := s.GetContestEntries(ctx, contestID)
	if len(entries) == 0 {
		return models.ContestAnalytics{}, false
	}
	return BuildContestAnalytics(contestID, entries), true
}

// BuildContestAnalytics computes totals, the cumulative view timeline, the
// five niches with most views and the five highest scores.
func BuildContestAnalytics(contestID string, entries []models.ContestEntry) models.ContestAnalytics {
	a := models.ContestAnalytics{ContestID: contestID, TotalEntries: len(entries)}
	for _, e := range entries {
		a.TotalViews += e.Views
		a.TotalLikes += e.Likes
		a.TotalComments += e.Comments
		a.TotalShares += e.Shares
	}
	if a.TotalViews > 0 {
		a.EngagementRate = float64(a.TotalLikes+a.TotalComments+a.TotalShares) / float64(a.TotalViews) * 100
	}

	bySubmission := append([]models.ContestEntry(nil), entries...)
	sort.SliceStable(bySubmission, func(i, j int) bool {
		return bySubmission[i].SubmittedAt.Before(bySubmission[j].SubmittedAt)
	})
	var running int64
	a.Timeline = make([]models.TimelinePoint, 0, len(bySubmission))
	for _, e := range bySubmission {
		running += e.Views
		a.Timeline = append(a.Timeline, models.TimelinePoint{
			Date:      e.SubmittedAt.UTC().Format("Jan 2"),
			Views:     running,
			EntryName: influencerName(e),
		})
	}

	nicheViews := map[string]int64{}
	var nicheOrder []string
	for _, e := range entries {
		if e.Influencer == nil {
			continue
		}
		for _, n := range e.Influencer.Niches {
			if _, ok := nicheViews[n]; !ok {
				nicheOrder = append(nicheOrder, n)
			}
			nicheViews[n] += e.Views
		}
	}
	a.TopNiches = make([]models.NicheShare, 0, len(nicheOrder))
	for _, n := range nicheOrder {
		a.TopNiches = append(a.TopNiches, models.NicheShare{Name: n, Value: nicheViews[n]})
	}
	sort.SliceStable(a.TopNiches, func(i, j int) bool { return a.TopNiches[i].Value > a.TopNiches[j].Value })
	if len(a.TopNiches) > 5 {
		a.TopNiches = a.TopNiches[:5]
	}

	byScore := append([]models.ContestEntry(nil), entries...)
	sort.SliceStable(byScore, func(i, j int) bool { return byScore[i].Score > byScore[j].Score })
	if len(byScore) > 5 {
		byScore = byScore[:5]
	}
	a.TopPerformers = make([]models.Performer, 0, len(byScore))
	for _, e := range byScore {
		a.TopPerformers = append(a.TopPerformers, models.Performer{
			Name:   influencerName(e),
			Score:  e.Score,
			Likes:  e.Likes,
			Shares: e.Shares,
		})
	}

	a.Display = models.AnalyticsDisplay{
		Views:          utils.FormatCount(a.TotalViews),
		Likes:          utils.FormatCount(a.TotalLikes),
		EngagementRate: strconv.FormatFloat(a.EngagementRate, 'f', 2, 64) + "%",
	}
	return a
}

func influencerName(e models.ContestEntry) string {
	if e.Influencer == nil || e.Influencer.Name == "" {
		return "Unknown"
	}
	return e.Influencer.Name
}

// ---------- Writes ----------

// SubmissionInput is one contest submission. At least one of VideoURL and
// VideoFileURL is expected.
type SubmissionInput struct {
	ContestID    string
	VideoURL     string
	VideoFileURL string
}

// SubmitEntry records a contest entry for user and advances their campaign
// streak. Every rejection happens before any mutation.
func (s *DataService) SubmitEntry(ctx context.Context, user models.UserSession, in SubmissionInput) (*models.ContestEntry, error) {
	handle := s.resolveHandle(ctx, user)
	if strings.TrimSpace(handle) == "" {
		return nil, ErrProfileIncomplete
	}
	if in.VideoURL != "" && !utils.HandleMatchesURL(handle, in.VideoURL) {
		log.Printf("[Submit] ⚠️ video %s does not mention handle %s (not enforced)", in.VideoURL, handle)
	}

	if user.IsDemo() {
		return s.submitDemoEntry(ctx, user, handle, in)
	}
	return s.submitLiveEntry(ctx, user, handle, in)
}

func (s *DataService) resolveHandle(ctx context.Context, user models.UserSession) string {
	if inf, err := s.Live.GetInfluencer(ctx, user.ID); err == nil && inf != nil {
		return inf.HandleTikTok
	}
	if inf, ok := s.Fallback.Influencer(user.ID); ok {
		return inf.HandleTikTok
	}
	if user.IsDemo() {
		return demoHandle(user)
	}
	return ""
}

func (s *DataService) submitLiveEntry(ctx context.Context, user models.UserSession, handle string, in SubmissionInput) (*models.ContestEntry, error) {
	now := s.Now().UTC()
	entry := &models.ContestEntry{
		ID:           uuid.NewString(),
		ContestID:    in.ContestID,
		InfluencerID: user.ID,
		VideoURL:     in.VideoURL,
		VideoFileURL: in.VideoFileURL,
		SubmittedAt:  now,
		UpdatedAt:    &now,
	}
	inf, err := s.Live.RecordEntry(ctx, entry)
	if err != nil {
		return nil, submitError(err)
	}
	inf.Normalize()
	entry.Influencer = inf

	log.Printf("[Submit] ✅ entry %s for contest %s by %s (streak %d)", entry.ID, entry.ContestID, user.ID, inf.CampaignStreak)
	s.Backend.NotifyAutomation(AutomationPayload{
		"type":              "contest_entry",
		"entry_id":          entry.ID,
		"contest_id":        entry.ContestID,
		"influencer_id":     user.ID,
		"email":             user.Email,
		"video_url":         entry.VideoURL,
		"influencer_handle": handle,
	})
	return entry, nil
}

func submitError(err error) error {
	switch {
	case errors.Is(err, ErrUniqueViolation):
		return newError(KindAlreadyJoined, "", err)
	case errors.Is(err, ErrForeignKeyViolation):
		return newError(KindOnboardingRequired, "", err)
	default:
		return StorageFailure("Failed to save entry: ", err)
	}
}

func (s *DataService) submitDemoEntry(ctx context.Context, user models.UserSession, handle string, in SubmissionInput) (*models.ContestEntry, error) {
	if s.Fallback.HasEntry(in.ContestID, user.ID) {
		return nil, ErrAlreadyJoined
	}
	if !strings.Contains(strings.ToLower(in.VideoURL), "tiktok.com") && in.VideoFileURL == "" {
		return nil, ErrInvalidVideoSource
	}
	if err := sleepCtx(ctx, s.Latency.Submit); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	saved, inf, err := s.Fallback.AddDemoEntry(models.ContestEntry{
		ID:           "e-" + shortID(),
		ContestID:    in.ContestID,
		VideoURL:     in.VideoURL,
		VideoFileURL: in.VideoFileURL,
		SubmittedAt:  now,
		UpdatedAt:    &now,
	}, user)
	if err != nil {
		return nil, err
	}

	log.Printf("[Submit] ✅ demo entry %s for contest %s by %s (streak %d)", saved.ID, saved.ContestID, user.ID, inf.CampaignStreak)
	s.Backend.NotifyAutomation(AutomationPayload{
		"type":              "contest_entry",
		"entry_id":          saved.ID,
		"contest_id":        saved.ContestID,
		"influencer_id":     user.ID,
		"email":             user.Email,
		"video_url":         saved.VideoURL,
		"influencer_name":   inf.Name,
		"influencer_handle": firstNonEmpty(inf.HandleTikTok, handle),
	})
	_ = sleepCtx(ctx, s.Latency.Settle)
	return &saved, nil
}

// ContestInput is the admin contest form.
type ContestInput struct {
	Title       string
	Description string
	CoverURL    string
	SongURL     string
	EndDate     string
	PrizePool   string
}

// CreateContest opens a contest that starts now.
func (s *DataService) CreateContest(ctx context.Context, user models.UserSession, in ContestInput) (*models.Contest, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, InvalidInput("Title is required.")
	}
	now := s.Now().UTC()
	cover := in.CoverURL
	if cover == "" {
		cover = defaultCoverURL
	}
	c := models.Contest{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		CoverURL:    cover,
		SongURL:     in.SongURL,
		StartDate:   now.Format(time.RFC3339),
		EndDate:     in.EndDate,
		Status:      models.ContestActive,
		PrizePool:   in.PrizePool,
		CreatedAt:   now,
	}

	if user.IsDemo() {
		if err := sleepCtx(ctx, s.Latency.Create); err != nil {
			return nil, err
		}
		c.ID = fmt.Sprintf("demo-c-%s-%d", slug.Make(c.Title), s.Fallback.NextSeq())
		s.Fallback.PrependContest(c)
		log.Printf("[Contest] ✅ demo contest %s created", c.ID)
		return &c, nil
	}

	c.ID = uuid.NewString()
	if err := s.Live.InsertContest(ctx, &c); err != nil {
		return nil, StorageFailure("", err)
	}
	log.Printf("[Contest] ✅ contest %s created", c.ID)
	return &c, nil
}

// InfluencerInput is the admin influencer form.
type InfluencerInput struct {
	Name            string
	HandleTikTok    string
	HandleInstagram string
	AvatarURL       string
	Country         string
}

// CreateInfluencer adds an influencer on behalf of an admin and asks the
// automation to scrape their stats.
func (s *DataService) CreateInfluencer(ctx context.Context, user models.UserSession, in InfluencerInput) (*models.Influencer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, InvalidInput("Name is required.")
	}
	avatar := in.AvatarURL
	if avatar == "" {
		avatar = defaultAvatarURL(in.Name)
	}
	inf := models.Influencer{
		Name:            strings.TrimSpace(in.Name),
		HandleTikTok:    in.HandleTikTok,
		HandleInstagram: in.HandleInstagram,
		AvatarURL:       avatar,
		Country:         in.Country,
		Niches:          pq.StringArray{"New"},
		LastUpdated:     s.Now().UTC(),
	}

	if user.IsDemo() {
		if err := sleepCtx(ctx, s.Latency.Create); err != nil {
			return nil, err
		}
		inf.ID = fmt.Sprintf("demo-i-%s-%d", slug.Make(inf.Name), s.Fallback.NextSeq())
		s.Fallback.PrependInfluencer(inf)
	} else {
		inf.ID = uuid.NewString()
		if err := s.Live.InsertInfluencer(ctx, &inf); err != nil {
			if errors.Is(err, ErrUniqueViolation) {
				return nil, newError(KindDuplicateHandle, "", err)
			}
			return nil, StorageFailure("", err)
		}
	}
	inf.Normalize()

	log.Printf("[Influencer] ✅ influencer %s created", inf.ID)
	s.Backend.NotifyAutomation(AutomationPayload{
		"id":               inf.ID,
		"name":             inf.Name,
		"handle_tiktok":    inf.HandleTikTok,
		"handle_instagram": inf.HandleInstagram,
		"country":          inf.Country,
		"avatar_url":       inf.AvatarURL,
	})
	return &inf, nil
}

// OnboardingInput is the "Join as Creator" form.
type OnboardingInput struct {
	Name            string
	Country         string
	HandleTikTok    string
	HandleInstagram string
	Followers       string
	AvatarURL       string
	Avatar          *utils.File
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// CompleteOnboarding creates or updates the caller's own influencer record.
func (s *DataService) CompleteOnboarding(ctx context.Context, user models.UserSession, in OnboardingInput) (*models.Influencer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, InvalidInput("Name is required.")
	}

	avatarURL := in.AvatarURL
	if in.Avatar != nil && !user.IsDemo() {
		compressed, err := utils.CompressImage(*in.Avatar, utils.AvatarMaxWidth, utils.AvatarQuality)
		if err == nil {
			avatarURL, err = s.Backend.UploadMedia(ctx, compressed, s.MediaBucket)
		}
		if err != nil {
			log.Printf("[Onboarding] ❌ avatar processing failed for %s: %v", user.ID, err)
			return nil, InvalidInput("Failed to process image. Please try a different one.")
		}
	}
	if avatarURL == "" {
		avatarURL = defaultAvatarURL(in.Name)
	}

	var followers int64
	if digits := nonDigits.ReplaceAllString(in.Followers, ""); digits != "" {
		followers, _ = strconv.ParseInt(digits, 10, 64)
	}

	inf := models.Influencer{
		ID:              user.ID,
		Name:            strings.TrimSpace(in.Name),
		Country:         in.Country,
		HandleTikTok:    utils.CleanSocialURL(in.HandleTikTok),
		HandleInstagram: utils.CleanSocialURL(in.HandleInstagram),
		AvatarURL:       avatarURL,
		TikTokFollowers: followers,
		Niches:          pq.StringArray{"Creator"},
		LastUpdated:     s.Now().UTC(),
	}

	if user.IsDemo() {
		if s.Fallback.HandleTaken(inf.HandleTikTok, user.ID) {
			return nil, ErrDuplicateHandle
		}
		if err := sleepCtx(ctx, s.Latency.Onboard); err != nil {
			return nil, err
		}
		if existing, ok := s.Fallback.Influencer(user.ID); ok {
			inf.CampaignStreak, inf.IsVerified = existing.CampaignStreak, existing.IsVerified
		}
		s.Fallback.UpsertInfluencer(inf)
	} else {
		if err := s.saveLiveOnboarding(ctx, user, &inf); err != nil {
			return nil, err
		}
	}
	inf.Normalize()

	log.Printf("[Onboarding] ✅ profile saved for %s", user.ID)
	s.Backend.NotifyAutomation(AutomationPayload{
		"id":               inf.ID,
		"name":             inf.Name,
		"handle_tiktok":    inf.HandleTikTok,
		"handle_instagram": inf.HandleInstagram,
		"followers":        followers,
	})
	return &inf, nil
}

func (s *DataService) saveLiveOnboarding(ctx context.Context, user models.UserSession, inf *models.Influencer) error {
	if inf.HandleTikTok != "" {
		existing, err := s.Live.FindInfluencerByHandle(ctx, inf.HandleTikTok, user.ID)
		if err != nil {
			return StorageFailure("", err)
		}
		if existing != nil {
			return ErrDuplicateHandle
		}
	}

	if err := s.Live.UpsertInfluencer(ctx, inf); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return newError(KindDuplicateHandle, "", err)
		}
		return StorageFailure("", err)
	}

	profile, err := s.Live.GetProfile(ctx, user.ID)
	if err == nil && profile != nil && profile.Role != models.RoleAdmin {
		if err := s.Live.UpdateProfileRole(ctx, user.ID, models.RoleInfluencer); err != nil {
			log.Printf("[Onboarding] ⚠️ role update for %s failed: %v", user.ID, err)
		}
	}
	return nil
}

// ---------- helpers ----------

const (
	defaultCoverURL      = "https://picsum.photos/800/400"
	placeholderAvatarURL = "https://picsum.photos/200"
)

func defaultAvatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(strings.TrimSpace(name)) + "&background=random"
}

func logFallback(what string, err error) {
	switch {
	case err == nil:
		log.Printf("[Data] ℹ️ no live %s, serving fallback data", what)
	case errors.Is(err, ErrBackendUnavailable), errors.Is(err, ErrRecordNotFound):
	default:
		log.Printf("[Data] ⚠️ live %s unavailable, serving fallback data: %v", what, err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// shortID returns nine random lowercase hex characters.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

func foldText(s string) string {
	return strings.ToLower(strings.TrimSpace(utils.Fold(s)))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
