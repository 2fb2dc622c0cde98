package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencer-battle/models"
	"influencer-battle/utils"
)

func newTestService(live LiveStore) (*DataService, *recordingSink) {
	sink := &recordingSink{}
	backend := NewBackend(live, nil, sink, time.Second, "influencer_battle")
	svc := NewDataService(live, NewFallbackStore(), backend, time.Second, DemoLatency{})
	svc.Shuffle = func(int, func(i, j int)) {}
	return svc, sink
}

func entryIDs(entries []models.ContestEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	return ids
}

func TestReadsFallBackWhenOffline(t *testing.T) {
	svc, _ := newTestService(OfflineStore{})
	ctx := context.Background()

	assert.Len(t, svc.GetInfluencers(ctx), 4)
	assert.Len(t, svc.GetContests(ctx), 2)

	inf, ok := svc.GetInfluencerByID(ctx, "3")
	require.True(t, ok)
	assert.Equal(t, "K-Pop Stans", inf.Name)
	assert.Equal(t, int64(3320000), inf.TotalFollowers)

	_, ok = svc.GetContestByID(ctx, "999")
	assert.False(t, ok)

	entries := svc.GetContestEntries(ctx, "101")
	assert.Equal(t, []string{"e2", "e1"}, entryIDs(entries))
	require.NotNil(t, entries[0].Influencer)
	assert.Equal(t, "Davide Rossi", entries[0].Influencer.Name)
}

func TestReadsFallBackWhenLiveIsEmpty(t *testing.T) {
	svc, _ := newTestService(newMemLive())
	assert.Len(t, svc.GetInfluencers(context.Background()), 4)
	assert.Len(t, svc.GetContests(context.Background()), 2)
}

func TestReadsPreferLiveRows(t *testing.T) {
	live := newMemLive()
	live.influencers["u1"] = models.Influencer{ID: "u1", Name: "Live One", TikTokFollowers: 10, InstagramFollowers: 5}
	live.contests = []models.Contest{{ID: "c1", Title: "Live Contest"}}
	svc, _ := newTestService(live)

	list := svc.GetInfluencers(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, "Live One", list[0].Name)
	assert.NotNil(t, list[0].Niches)
	assert.Equal(t, int64(15), list[0].TotalFollowers)

	contests := svc.GetContests(context.Background())
	require.Len(t, contests, 1)
	assert.Equal(t, models.ContestDraft, contests[0].Status)
}

func TestFilterInfluencers(t *testing.T) {
	list := models.SeedInfluencers(time.Now())
	list = append(list, models.Influencer{ID: "9", Name: "José Álvarez", Country: "México"})

	names := func(in []models.Influencer) []string {
		var out []string
		for _, inf := range in {
			out = append(out, inf.Name)
		}
		return out
	}

	assert.Len(t, FilterInfluencers(list, ""), 5)
	assert.Equal(t, []string{"Davide Rossi"}, names(FilterInfluencers(list, "ITAL")))
	assert.Equal(t, []string{"Sarah Jenkins"}, names(FilterInfluencers(list, "sarah")))
	assert.Equal(t, []string{"José Álvarez"}, names(FilterInfluencers(list, "jose")))
	assert.Equal(t, []string{"José Álvarez"}, names(FilterInfluencers(list, "mexico")))
	assert.Empty(t, FilterInfluencers(list, "nobody"))
}

func TestContestEntriesMergeLiveAndFallback(t *testing.T) {
	live := newMemLive()
	live.influencers["1"] = models.Influencer{ID: "1", Name: "Sarah Live"}
	live.influencers["9"] = models.Influencer{ID: "9", Name: "Newcomer"}
	live.entries = []models.ContestEntry{
		{ID: "live-1", ContestID: "101", InfluencerID: "1", Score: 50},
		{ID: "live-9", ContestID: "101", InfluencerID: "9", Score: 99},
		{ID: "other", ContestID: "102", InfluencerID: "9", Score: 10},
	}
	svc, _ := newTestService(live)

	entries := svc.GetContestEntries(context.Background(), "101")

	// e1 is the same contest/influencer pair as live-1, so only e2 is added.
	assert.Equal(t, []string{"live-9", "e2", "live-1"}, entryIDs(entries))
	assert.Equal(t, "Sarah Live", entries[2].Influencer.Name)
}

func TestContestEntriesTiesKeepEncounterOrder(t *testing.T) {
	live := newMemLive()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	live.entries = []models.ContestEntry{
		{ID: "live-a", ContestID: "101", InfluencerID: "7", Score: 94.2, SubmittedAt: base},
		{ID: "live-b", ContestID: "101", InfluencerID: "8", Score: 94.2, SubmittedAt: base.Add(time.Hour)},
	}
	svc, _ := newTestService(live)

	entries := svc.GetContestEntries(context.Background(), "101")

	// Seed entry e2 also scores 94.2; live rows come first, then fallback.
	assert.Equal(t, []string{"live-a", "live-b", "e2", "e1"}, entryIDs(entries))
}

func TestOfflineReadsAreRepeatable(t *testing.T) {
	svc, _ := newTestService(OfflineStore{})
	ctx := context.Background()

	assert.Equal(t, svc.GetInfluencers(ctx), svc.GetInfluencers(ctx))
	assert.Equal(t, svc.GetContests(ctx), svc.GetContests(ctx))
	assert.Equal(t, svc.GetContestEntries(ctx, "101"), svc.GetContestEntries(ctx, "101"))
}

func TestLiveInfluencersGetPlaceholderAvatar(t *testing.T) {
	live := newMemLive()
	live.influencers["u1"] = models.Influencer{ID: "u1", Name: "Una"}
	svc, _ := newTestService(live)

	list := svc.GetInfluencers(context.Background())
	require.Len(t, list, 1)
	assert.Equal(t, "https://picsum.photos/200", list[0].AvatarURL)
}

func TestContestEntriesSkipDuplicateIDs(t *testing.T) {
	live := newMemLive()
	live.entries = []models.ContestEntry{{ID: "e2", ContestID: "101", InfluencerID: "2", Score: 1}}
	svc, _ := newTestService(live)

	entries := svc.GetContestEntries(context.Background(), "101")
	assert.Equal(t, []string{"e1", "e2"}, entryIDs(entries))
	assert.Equal(t, 1.0, entries[1].Score)
}

func TestStatsHistory(t *testing.T) {
	offline, _ := newTestService(OfflineStore{})
	points := offline.GetStatsHistory(context.Background(), "1")
	assert.NotNil(t, points)
	assert.Empty(t, points)

	live := newMemLive()
	live.stats = []models.InfluencerStatsHistory{
		{ID: "s1", InfluencerID: "1", RecordedAt: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC), TikTokFollowers: 10, InstagramFollowers: 5, TotalFollowers: 15},
		{ID: "s2", InfluencerID: "2", RecordedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)},
	}
	svc, _ := newTestService(live)
	points = svc.GetStatsHistory(context.Background(), "1")
	assert.Equal(t, []models.StatsPoint{{Date: "Mar 4", Followers: 15, TikTok: 10, Instagram: 5}}, points)
}

func TestContestAnalyticsFromSeed(t *testing.T) {
	svc, _ := newTestService(OfflineStore{})

	a, ok := svc.GetContestAnalytics(context.Background(), "101")
	require.True(t, ok)

	assert.Equal(t, 2, a.TotalEntries)
	assert.Equal(t, int64(1700000), a.TotalViews)
	assert.Equal(t, int64(299000), a.TotalLikes)
	assert.Equal(t, int64(6800), a.TotalComments)
	assert.Equal(t, int64(16500), a.TotalShares)
	assert.InDelta(t, 18.9588, a.EngagementRate, 0.0001)
	assert.Equal(t, "18.96%", a.Display.EngagementRate)
	assert.Equal(t, "1.7M", a.Display.Views)

	require.Len(t, a.Timeline, 2)
	assert.Equal(t, models.TimelinePoint{Date: "Oct 5", Views: 450000, EntryName: "Sarah Jenkins"}, a.Timeline[0])
	assert.Equal(t, models.TimelinePoint{Date: "Oct 6", Views: 1700000, EntryName: "Davide Rossi"}, a.Timeline[1])

	require.Len(t, a.TopNiches, 4)
	assert.Equal(t, models.NicheShare{Name: "Fashion", Value: 1250000}, a.TopNiches[0])
	assert.Equal(t, models.NicheShare{Name: "Music", Value: 450000}, a.TopNiches[2])

	require.Len(t, a.TopPerformers, 2)
	assert.Equal(t, "Davide Rossi", a.TopPerformers[0].Name)
	assert.Equal(t, 94.2, a.TopPerformers[0].Score)

	_, ok = svc.GetContestAnalytics(context.Background(), "102")
	assert.False(t, ok)
}

func TestBuildContestAnalyticsCapsAndZeroViews(t *testing.T) {
	var entries []models.ContestEntry
	for i := 0; i < 7; i++ {
		entries = append(entries, models.ContestEntry{
			ID:    string(rune('a' + i)),
			Score: float64(i),
			Influencer: &models.Influencer{
				Name:   string(rune('A' + i)),
				Niches: []string{string(rune('n' + i))},
			},
		})
	}
	a := BuildContestAnalytics("c", entries)
	assert.Len(t, a.TopNiches, 5)
	assert.Len(t, a.TopPerformers, 5)
	assert.Equal(t, "G", a.TopPerformers[0].Name)
	assert.Zero(t, a.EngagementRate)
	assert.Equal(t, "0.00%", a.Display.EngagementRate)

	a = BuildContestAnalytics("c", []models.ContestEntry{{ID: "x", Views: 10}})
	assert.Equal(t, "Unknown", a.Timeline[0].EntryName)
}

func TestGetFeedUsesFirstFourContests(t *testing.T) {
	svc, _ := newTestService(OfflineStore{})
	for i := 0; i < 4; i++ {
		svc.Fallback.PrependContest(models.Contest{ID: "empty-" + string(rune('a'+i))})
	}

	// 101 is now fifth, so its entries are left out.
	assert.Empty(t, svc.GetFeed(context.Background()))

	svc.Fallback.Reset()
	shuffled := false
	svc.Shuffle = func(n int, swap func(i, j int)) {
		shuffled = true
		if n > 1 {
			swap(0, n-1)
		}
	}
	feed := svc.GetFeed(context.Background())
	assert.True(t, shuffled)
	assert.Equal(t, []string{"e1", "e2"}, entryIDs(feed))
}

func TestSubmitEntryDemoAdvancesStreak(t *testing.T) {
	svc, sink := newTestService(OfflineStore{})
	user := demoUser(models.RoleInfluencer)
	ctx := context.Background()

	entry, err := svc.SubmitEntry(ctx, user, SubmissionInput{ContestID: "101", VideoURL: "https://www.tiktok.com/@demo.influencer/video/1"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(entry.ID, "e-"))
	assert.Equal(t, user.ID, entry.InfluencerID)
	require.NotNil(t, entry.Influencer)
	assert.Equal(t, "DEMO.INFLUENCER", entry.Influencer.Name)
	assert.Equal(t, "@demo.influencer", entry.Influencer.HandleTikTok)
	assert.Equal(t, 1, entry.Influencer.CampaignStreak)
	assert.False(t, entry.Influencer.IsVerified)

	assert.Len(t, svc.GetContestEntries(ctx, "101"), 3)

	notes := sink.all()
	require.Len(t, notes, 1)
	assert.Equal(t, "contest_entries", notes[0].Get("target_table"))
	assert.Equal(t, entry.ID, notes[0].Get("record_id"))
	assert.Equal(t, "DEMO.INFLUENCER", notes[0].Get("influencer_name"))
	assert.Equal(t, user.Email, notes[0].Get("email"))

	for _, contestID := range []string{"102", "103"} {
		_, err := svc.SubmitEntry(ctx, user, SubmissionInput{ContestID: contestID, VideoFileURL: "data:video/mp4;base64,AAAA"})
		require.NoError(t, err)
	}
	inf, ok := svc.Fallback.Influencer(user.ID)
	require.True(t, ok)
	assert.Equal(t, 3, inf.CampaignStreak)
	assert.True(t, inf.IsVerified)
}

func TestSubmitEntryDemoRejectsDuplicate(t *testing.T) {
	svc, sink := newTestService(OfflineStore{})
	user := demoUser(models.RoleInfluencer)
	in := SubmissionInput{ContestID: "101", VideoURL: "https://tiktok.com/@x/video/1"}

	_, err := svc.SubmitEntry(context.Background(), user, in)
	require.NoError(t, err)

	_, err = svc.SubmitEntry(context.Background(), user, in)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Equal(t, "You have already joined this contest.", err.Error())

	inf, _ := svc.Fallback.Influencer(user.ID)
	assert.Equal(t, 1, inf.CampaignStreak)
	assert.Len(t, svc.Fallback.Entries("101"), 3)
	assert.Len(t, sink.all(), 1)
}

func TestSubmitEntryDemoRejectsNonTikTokLink(t *testing.T) {
	svc, _ := newTestService(OfflineStore{})
	user := demoUser(models.RoleInfluencer)

	_, err := svc.SubmitEntry(context.Background(), user, SubmissionInput{ContestID: "101", VideoURL: "https://youtube.com/watch?v=1"})
	assert.ErrorIs(t, err, ErrInvalidVideoSource)

	_, ok := svc.Fallback.Influencer(user.ID)
	assert.False(t, ok)
	assert.Len(t, svc.Fallback.Entries("101"), 2)
}

func TestSubmitEntryWithoutHandle(t *testing.T) {
	svc, _ := newTestService(OfflineStore{})

	demo := demoUser(models.RoleInfluencer)
	demo.Email = ""
	_, err := svc.SubmitEntry(context.Background(), demo, SubmissionInput{ContestID: "101", VideoURL: "https://tiktok.com/v"})
	assert.ErrorIs(t, err, ErrProfileIncomplete)

	_, err = svc.SubmitEntry(context.Background(), liveUser("nobody"), SubmissionInput{ContestID: "101", VideoURL: "https://tiktok.com/v"})
	assert.ErrorIs(t, err, ErrProfileIncomplete)
}

func TestSubmitEntryDemoHonoursCancellation(t *testing.T) {
	svc, _ := newTestService(OfflineStore{})
	svc.Latency.Submit = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SubmitEntry(ctx, demoUser(models.RoleInfluencer), SubmissionInput{ContestID: "101", VideoURL: "https://tiktok.com/v"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, svc.Fallback.Entries("101"), 2)
}

func TestSubmitEntryLive(t *testing.T) {
	live := newMemLive()
	live.influencers["u1"] = models.Influencer{ID: "u1", Name: "Una", HandleTikTok: "@una", CampaignStreak: 2}
	svc, sink := newTestService(live)
	ctx := context.Background()
	in := SubmissionInput{ContestID: "101", VideoURL: "https://www.tiktok.com/@una/video/7"}

	entry, err := svc.SubmitEntry(ctx, liveUser("u1"), in)
	require.NoError(t, err)
	assert.Len(t, entry.ID, 36)
	require.NotNil(t, entry.Influencer)
	assert.Equal(t, 3, entry.Influencer.CampaignStreak)
	assert.True(t, entry.Influencer.IsVerified)
	assert.True(t, live.influencers["u1"].IsVerified)

	notes := sink.all()
	require.Len(t, notes, 1)
	assert.Equal(t, "https://www.tiktok.com/@una/video/7", notes[0].Get("tiktok_url"))
	assert.Equal(t, "u1@example.com", notes[0].Get("email"))

	_, err = svc.SubmitEntry(ctx, liveUser("u1"), in)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Equal(t, 3, live.influencers["u1"].CampaignStreak)
	assert.Len(t, live.entries, 1)
}

func TestSubmitEntryLiveNeverDemotesWhenReadsFail(t *testing.T) {
	live := newMemLive()
	live.influencers["u1"] = models.Influencer{ID: "u1", HandleTikTok: "@una", CampaignStreak: 7, IsVerified: true}
	svc, _ := newTestService(&flakyReads{memLive: live, left: 1})

	entry, err := svc.SubmitEntry(context.Background(), liveUser("u1"), SubmissionInput{ContestID: "101", VideoURL: "https://www.tiktok.com/@una/video/8"})
	require.NoError(t, err)

	stored := live.influencers["u1"]
	assert.Equal(t, 8, stored.CampaignStreak)
	assert.True(t, stored.IsVerified)
	require.NotNil(t, entry.Influencer)
	assert.Equal(t, 8, entry.Influencer.CampaignStreak)
	assert.True(t, entry.Influencer.IsVerified)
}

func TestSubmitEntryLiveWithoutInfluencerRow(t *testing.T) {
	// Seed influencer "1" has a handle locally but no live row.
	svc, _ := newTestService(newMemLive())

	_, err := svc.SubmitEntry(context.Background(), liveUser("1"), SubmissionInput{ContestID: "101", VideoURL: "https://tiktok.com/@sarahj_music/video/1"})
	assert.ErrorIs(t, err, ErrOnboardingRequired)
}

func TestSubmitEntryLiveStorageFailure(t *testing.T) {
	live := newMemLive()
	live.influencers["u1"] = models.Influencer{ID: "u1", HandleTikTok: "@una"}
	live.entryErr = errors.New("connection reset")
	svc, _ := newTestService(live)

	_, err := svc.SubmitEntry(context.Background(), liveUser("u1"), SubmissionInput{ContestID: "101", VideoURL: "https://tiktok.com/v"})
	require.Error(t, err)
	assert.Equal(t, KindStorageFailure, KindOf(err))
	assert.Equal(t, "Failed to save entry: connection reset", err.Error())
	assert.Equal(t, 0, live.influencers["u1"].CampaignStreak)
}

func TestCreateContestDemo(t *testing.T) {
	svc, _ := newTestService(OfflineStore{})
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return fixed }

	c, err := svc.CreateContest(context.Background(), demoUser(models.RoleAdmin), ContestInput{Title: "Summer Bash!", EndDate: "2024-07-01"})
	require.NoError(t, err)
	assert.Equal(t, "demo-c-summer-bash-1", c.ID)
	assert.Equal(t, models.ContestActive, c.Status)
	assert.Equal(t, "2024-06-01T12:00:00Z", c.StartDate)
	assert.Equal(t, defaultCoverURL, c.CoverURL)

	contests := svc.GetContests(context.Background())
	require.Len(t, contests, 3)
	assert.Equal(t, c.ID, contests[0].ID)

	_, err = svc.CreateContest(context.Background(), demoUser(models.RoleAdmin), ContestInput{Title: "  "})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestCreateContestLive(t *testing.T) {
	live := newMemLive()
	svc, _ := newTestService(live)

	c, err := svc.CreateContest(context.Background(), liveUser("admin"), ContestInput{Title: "Live Launch", CoverURL: "https://img/c.png"})
	require.NoError(t, err)
	require.Len(t, live.contests, 1)
	assert.Equal(t, c.ID, live.contests[0].ID)
	assert.Equal(t, "https://img/c.png", live.contests[0].CoverURL)

	offline, _ := newTestService(OfflineStore{})
	_, err = offline.CreateContest(context.Background(), liveUser("admin"), ContestInput{Title: "x"})
	assert.Equal(t, KindStorageFailure, KindOf(err))
}

func TestCreateInfluencer(t *testing.T) {
	svc, sink := newTestService(OfflineStore{})

	inf, err := svc.CreateInfluencer(context.Background(), demoUser(models.RoleAdmin), InfluencerInput{Name: "Nova Star", HandleTikTok: "@nova"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(inf.ID, "demo-i-nova-star-"))
	assert.Equal(t, []string{"New"}, []string(inf.Niches))
	assert.Equal(t, "https://ui-avatars.com/api/?name=Nova+Star&background=random", inf.AvatarURL)
	assert.Equal(t, "Nova Star", svc.GetInfluencers(context.Background())[0].Name)

	notes := sink.all()
	require.Len(t, notes, 1)
	assert.Equal(t, "influencers", notes[0].Get("target_table"))
	assert.Equal(t, inf.ID, notes[0].Get("record_id"))
	assert.Equal(t, "https://www.tiktok.com/@nova", notes[0].Get("tiktok_url"))

	_, err = svc.CreateInfluencer(context.Background(), demoUser(models.RoleAdmin), InfluencerInput{})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestCreateInfluencerLiveDuplicateHandle(t *testing.T) {
	live := newMemLive()
	live.influencers["x"] = models.Influencer{ID: "x", HandleTikTok: "@taken"}
	svc, sink := newTestService(live)

	_, err := svc.CreateInfluencer(context.Background(), liveUser("admin"), InfluencerInput{Name: "Copy", HandleTikTok: "@taken"})
	assert.ErrorIs(t, err, ErrDuplicateHandle)
	assert.Empty(t, sink.all())
}

func TestCompleteOnboardingDemo(t *testing.T) {
	svc, sink := newTestService(OfflineStore{})
	user := demoUser(models.RoleInfluencer)
	ctx := context.Background()

	_, err := svc.CompleteOnboarding(ctx, user, OnboardingInput{Name: "Copycat", HandleTikTok: "@sarahj_music"})
	assert.ErrorIs(t, err, ErrDuplicateHandle)

	inf, err := svc.CompleteOnboarding(ctx, user, OnboardingInput{
		Name:         "Newbie",
		Country:      "Spain",
		HandleTikTok: "@newbie",
		Followers:    "12,500",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, inf.ID)
	assert.Equal(t, "https://www.tiktok.com/@newbie", inf.HandleTikTok)
	assert.Equal(t, int64(12500), inf.TikTokFollowers)
	assert.Equal(t, []string{"Creator"}, []string(inf.Niches))

	stored, ok := svc.Fallback.Influencer(user.ID)
	require.True(t, ok)
	assert.Equal(t, "Newbie", stored.Name)

	notes := sink.all()
	require.Len(t, notes, 1)
	assert.Equal(t, "12500", notes[0].Get("followers"))

	// Submitting afterwards uses the onboarded handle.
	entry, err := svc.SubmitEntry(ctx, user, SubmissionInput{ContestID: "101", VideoURL: "https://tiktok.com/@newbie/video/1"})
	require.NoError(t, err)
	assert.Equal(t, "Newbie", entry.Influencer.Name)

	// Re-onboarding keeps the earned streak.
	inf, err = svc.CompleteOnboarding(ctx, user, OnboardingInput{Name: "Newbie Renamed", HandleTikTok: "@newbie"})
	require.NoError(t, err)
	assert.Equal(t, 1, inf.CampaignStreak)
}

func pngFile(t *testing.T, w, h int) utils.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return utils.FileFromBytes("avatar.png", "image/png", buf.Bytes())
}

func TestCompleteOnboardingLive(t *testing.T) {
	live := newMemLive()
	live.profiles["u1"] = models.Profile{ID: "u1", Role: "viewer"}
	live.influencers["other"] = models.Influencer{ID: "other", HandleTikTok: "@taken"}
	svc, _ := newTestService(live)
	storage := &fakeStorage{}
	svc.Backend.Storage = storage

	_, err := svc.CompleteOnboarding(context.Background(), liveUser("u1"), OnboardingInput{Name: "Una", HandleTikTok: "@taken"})
	assert.ErrorIs(t, err, ErrDuplicateHandle)

	avatar := pngFile(t, 1200, 600)
	inf, err := svc.CompleteOnboarding(context.Background(), liveUser("u1"), OnboardingInput{Name: "Una", HandleTikTok: "@una", Avatar: &avatar})
	require.NoError(t, err)
	require.Len(t, storage.keys, 1)
	assert.True(t, strings.HasSuffix(storage.keys[0], ".jpg"))
	assert.Equal(t, "https://cdn.test/avatars/"+storage.keys[0], inf.AvatarURL)

	assert.Equal(t, "Una", live.influencers["u1"].Name)
	assert.Equal(t, models.RoleInfluencer, live.profiles["u1"].Role)
}

func TestCompleteOnboardingLiveKeepsAdminRole(t *testing.T) {
	live := newMemLive()
	live.profiles["boss"] = models.Profile{ID: "boss", Role: models.RoleAdmin}
	svc, _ := newTestService(live)

	_, err := svc.CompleteOnboarding(context.Background(), liveUser("boss"), OnboardingInput{Name: "Boss"})
	require.NoError(t, err)
	assert.Empty(t, live.roleUpdates)
	assert.Equal(t, models.RoleAdmin, live.profiles["boss"].Role)
}

func TestCompleteOnboardingRejectsBadAvatar(t *testing.T) {
	svc, _ := newTestService(newMemLive())
	avatar := utils.FileFromBytes("notes.txt", "text/plain", []byte("not an image"))

	_, err := svc.CompleteOnboarding(context.Background(), liveUser("u1"), OnboardingInput{Name: "Una", Avatar: &avatar})
	assert.Equal(t, KindInvalidInput, KindOf(err))
	assert.Equal(t, "Failed to process image. Please try a different one.", err.Error())
}
