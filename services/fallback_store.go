package services

import (
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"influencer-battle/models"
	"influencer-battle/utils"
)

// FallbackStore is the in-process dataset served when the live backend is
// unreachable or empty, and written by demo identities. It starts from the
// built-in seed and lives for the process lifetime.
type FallbackStore struct {
	mu          sync.RWMutex
	influencers []models.Influencer
	contests    []models.Contest
	entries     []models.ContestEntry
	seq         uint64
	now         func() time.Time
}

func NewFallbackStore() *FallbackStore {
	s := &FallbackStore{now: time.Now}
	s.Reset()
	return s
}

// Reset restores the seed dataset.
func (s *FallbackStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.influencers = models.SeedInfluencers(s.now())
	s.contests = models.SeedContests()
	s.entries = models.SeedEntries()
}

// NextSeq returns a process-unique increasing number for generated ids.
func (s *FallbackStore) NextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *FallbackStore) Influencers() []models.Influencer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Influencer, len(s.influencers))
	for i, inf := range s.influencers {
		out[i] = copyInfluencer(inf)
	}
	return out
}

func (s *FallbackStore) Influencer(id string) (models.Influencer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.influencerIndex(id); i >= 0 {
		return copyInfluencer(s.influencers[i]), true
	}
	return models.Influencer{}, false
}

func (s *FallbackStore) Contests() []models.Contest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Contest, len(s.contests))
	copy(out, s.contests)
	return out
}

func (s *FallbackStore) Contest(id string) (models.Contest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contests {
		if c.ID == id {
			return c, true
		}
	}
	return models.Contest{}, false
}

// Entries returns a contest's entries in insertion order with the current
// influencer record attached.
func (s *FallbackStore) Entries(contestID string) []models.ContestEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ContestEntry
	for _, e := range s.entries {
		if e.ContestID != contestID {
			continue
		}
		if i := s.influencerIndex(e.InfluencerID); i >= 0 {
			inf := copyInfluencer(s.influencers[i])
			e.Influencer = &inf
		}
		out = append(out, e)
	}
	return out
}

func (s *FallbackStore) HasEntry(contestID, influencerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasEntry(contestID, influencerID)
}

// AddDemoEntry records a demo submission in one critical section: the
// duplicate check, influencer materialisation, streak advance and append.
func (s *FallbackStore) AddDemoEntry(entry models.ContestEntry, user models.UserSession) (models.ContestEntry, models.Influencer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasEntry(entry.ContestID, user.ID) {
		return models.ContestEntry{}, models.Influencer{}, ErrAlreadyJoined
	}

	i := s.influencerIndex(user.ID)
	if i < 0 {
		s.influencers = append(s.influencers, demoInfluencer(user, s.now()))
		i = len(s.influencers) - 1
	}
	s.influencers[i].RecordSubmission()
	s.influencers[i].Normalize()

	entry.InfluencerID = user.ID
	s.entries = append(s.entries, entry)

	inf := copyInfluencer(s.influencers[i])
	entry.Influencer = &inf
	return entry, inf, nil
}

// PrependContest inserts c at the head of the contest list.
func (s *FallbackStore) PrependContest(c models.Contest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests = append([]models.Contest{c}, s.contests...)
}

// PrependInfluencer inserts inf at the head of the influencer list.
func (s *FallbackStore) PrependInfluencer(inf models.Influencer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inf.Normalize()
	s.influencers = append([]models.Influencer{copyInfluencer(inf)}, s.influencers...)
}

func (s *FallbackStore) influencerIndex(id string) int {
	for i := range s.influencers {
		if s.influencers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *FallbackStore) hasEntry(contestID, influencerID string) bool {
	for _, e := range s.entries {
		if e.ContestID == contestID && e.InfluencerID == influencerID {
			return true
		}
	}
	return false
}

// demoInfluencer seeds a record for a demo identity from its email.
func demoInfluencer(user models.UserSession, now time.Time) models.Influencer {
	local := utils.EmailLocalPart(user.Email)
	inf := models.Influencer{
		ID:           user.ID,
		Name:         strings.ToUpper(local),
		HandleTikTok: demoHandle(user),
		AvatarURL:    "https://ui-avatars.com/api/?name=" + user.Email + "&background=random",
		Country:      "Unknown",
		Niches:       pq.StringArray{"Creator"},
		LastUpdated:  now,
	}
	inf.Normalize()
	return inf
}

func demoHandle(user models.UserSession) string {
	local := utils.EmailLocalPart(user.Email)
	if local == "" {
		return ""
	}
	return "@" + local
}

func copyInfluencer(inf models.Influencer) models.Influencer {
	if inf.Niches != nil {
		inf.Niches = append(pq.StringArray{}, inf.Niches...)
	}
	inf.Display = nil
	return inf
}

// UpsertInfluencer replaces the record with the same id, or prepends it.
func (s *FallbackStore) UpsertInfluencer(inf models.Influencer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inf.Normalize()
	if i := s.influencerIndex(inf.ID); i >= 0 {
		s.influencers[i] = copyInfluencer(inf)
		return
	}
	s.influencers = append([]models.Influencer{copyInfluencer(inf)}, s.influencers...)
}

// HandleTaken reports whether another influencer already uses handle.
func (s *FallbackStore) HandleTaken(handle, excludeID string) bool {
	want := utils.NormalizeHandle(handle)
	if want == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inf := range s.influencers {
		if inf.ID != excludeID && utils.NormalizeHandle(inf.HandleTikTok) == want {
			return true
		}
	}
	return false
}
