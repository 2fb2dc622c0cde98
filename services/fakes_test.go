package services

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"influencer-battle/models"
	"influencer-battle/utils"
)

// memLive is an in-memory LiveStore. A non-nil fail makes every call return it.
type memLive struct {
	mu          sync.Mutex
	fail        error
	influencers map[string]models.Influencer
	contests    []models.Contest
	entries     []models.ContestEntry
	profiles    map[string]models.Profile
	stats       []models.InfluencerStatsHistory
	roleUpdates []string
	// entryErr is returned by RecordEntry before anything is written.
	entryErr error
}

func newMemLive() *memLive {
	return &memLive{
		influencers: map[string]models.Influencer{},
		profiles:    map[string]models.Profile{},
	}
}

func (m *memLive) ListInfluencers(context.Context) ([]models.Influencer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := make([]models.Influencer, 0, len(m.influencers))
	for _, inf := range m.influencers {
		out = append(out, inf)
	}
	return out, nil
}

func (m *memLive) GetInfluencer(_ context.Context, id string) (*models.Influencer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	inf, ok := m.influencers[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &inf, nil
}

func (m *memLive) FindInfluencerByHandle(_ context.Context, handle, excludeID string) (*models.Influencer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, inf := range m.influencers {
		if inf.ID != excludeID && utils.NormalizeHandle(inf.HandleTikTok) == utils.NormalizeHandle(handle) {
			return &inf, nil
		}
	}
	return nil, nil
}

func (m *memLive) InsertInfluencer(_ context.Context, inf *models.Influencer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, existing := range m.influencers {
		if inf.HandleTikTok != "" && existing.HandleTikTok == inf.HandleTikTok {
			return ErrUniqueViolation
		}
	}
	m.influencers[inf.ID] = *inf
	return nil
}

func (m *memLive) UpsertInfluencer(_ context.Context, inf *models.Influencer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.influencers[inf.ID] = *inf
	return nil
}

func (m *memLive) CountInfluencers(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return 0, m.fail
	}
	if _, ok := m.influencers[id]; ok {
		return 1, nil
	}
	return 0, nil
}

func (m *memLive) ListContests(context.Context) ([]models.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]models.Contest(nil), m.contests...), nil
}

func (m *memLive) GetContest(_ context.Context, id string) (*models.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, c := range m.contests {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (m *memLive) InsertContest(_ context.Context, c *models.Contest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.contests = append([]models.Contest{*c}, m.contests...)
	return nil
}

func (m *memLive) ListEntries(_ context.Context, contestID string) ([]models.ContestEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var out []models.ContestEntry
	for _, e := range m.entries {
		if e.ContestID != contestID {
			continue
		}
		if inf, ok := m.influencers[e.InfluencerID]; ok {
			e.Influencer = &inf
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memLive) RecordEntry(_ context.Context, entry *models.ContestEntry) (*models.Influencer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	if m.entryErr != nil {
		return nil, m.entryErr
	}
	inf, ok := m.influencers[entry.InfluencerID]
	if !ok {
		return nil, ErrForeignKeyViolation
	}
	for _, e := range m.entries {
		if e.ContestID == entry.ContestID && e.InfluencerID == entry.InfluencerID {
			return nil, ErrUniqueViolation
		}
	}
	inf.RecordSubmission()
	m.influencers[inf.ID] = inf
	m.entries = append(m.entries, *entry)
	return &inf, nil
}

// flakyReads lets the next left GetInfluencer calls through and fails the rest.
type flakyReads struct {
	*memLive
	mu   sync.Mutex
	left int
}

func (f *flakyReads) GetInfluencer(ctx context.Context, id string) (*models.Influencer, error) {
	f.mu.Lock()
	ok := f.left > 0
	f.left--
	f.mu.Unlock()
	if !ok {
		return nil, errors.New("read timed out")
	}
	return f.memLive.GetInfluencer(ctx, id)
}

func (m *memLive) ListStatsHistory(_ context.Context, influencerID string) ([]models.InfluencerStatsHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	var out []models.InfluencerStatsHistory
	for _, s := range m.stats {
		if s.InfluencerID == influencerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memLive) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &p, nil
}

func (m *memLive) UpdateProfileRole(_ context.Context, id string, role models.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	p := m.profiles[id]
	p.ID, p.Role = id, role
	m.profiles[id] = p
	m.roleUpdates = append(m.roleUpdates, id)
	return nil
}

// recordingSink captures automation notifications.
type recordingSink struct {
	mu     sync.Mutex
	params []url.Values
}

func (r *recordingSink) Enqueue(params url.Values) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.params = append(r.params, params)
	return true
}

func (r *recordingSink) all() []url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]url.Values(nil), r.params...)
}

// fakeStorage records uploads and optionally fails them.
type fakeStorage struct {
	err  error
	keys []string
}

func (f *fakeStorage) Upload(_ context.Context, bucket, key, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + bucket + "/" + key, nil
}

func demoUser(role models.UserRole) models.UserSession {
	return models.UserSession{
		ID:         "demo-" + string(role) + "-abc123",
		Email:      "demo." + string(role) + "@lpp.com",
		Role:       role,
		HasProfile: true,
		Origin:     models.OriginDemo,
	}
}

func liveUser(id string) models.UserSession {
	return models.UserSession{
		ID:         id,
		Email:      id + "@example.com",
		Role:       models.RoleInfluencer,
		HasProfile: true,
		Origin:     models.OriginLive,
	}
}
