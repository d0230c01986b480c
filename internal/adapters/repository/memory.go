package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/fika/internal/domain/model"
)

// streakScanLimit caps how many recent pairings the streak scan inspects.
const streakScanLimit = 10

// MemoryStore implements Store with in-process maps. It backs tests and the
// databaseless dev mode; iteration order is made deterministic by sorting.
type MemoryStore struct {
	mu sync.RWMutex

	members  map[int64]model.Member
	pairings map[int64]model.Pairing
	history  map[int64]model.HistoryEntry

	nextMemberID  int64
	nextPairingID int64
	nextHistoryID int64

	now func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		members:  make(map[int64]model.Member),
		pairings: make(map[int64]model.Pairing),
		history:  make(map[int64]model.HistoryEntry),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetActiveMembers returns active members ordered by id ascending.
func (s *MemoryStore) GetActiveMembers(_ context.Context) ([]model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Member
	for _, m := range s.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetMember(_ context.Context, id int64) (model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return model.Member{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) GetMemberByTelegramID(_ context.Context, telegramID int64) (model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.members {
		if m.TelegramID == telegramID {
			return m, nil
		}
	}
	return model.Member{}, ErrNotFound
}

func (s *MemoryStore) CreateMember(_ context.Context, m model.Member) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMemberID++
	m.ID = s.nextMemberID
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	s.members[m.ID] = m
	return m.ID, nil
}

func (s *MemoryStore) UpdateMember(_ context.Context, id int64, u model.MemberUpdate) error {
	if u.Empty() {
		return ErrNothingToUpdate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.members[id]
	if !ok {
		return ErrNotFound
	}

	if u.Username != nil {
		m.Username = *u.Username
	}
	if u.FullName != nil {
		m.FullName = *u.FullName
	}
	if u.Bio != nil {
		m.Bio = *u.Bio
	}
	if u.Interests != nil {
		m.Interests = append([]string(nil), (*u.Interests)...)
	}
	if u.LocationLat != nil {
		m.LocationLat = u.LocationLat
	}
	if u.LocationLon != nil {
		m.LocationLon = u.LocationLon
	}
	if u.RadiusKm != nil {
		m.RadiusKm = *u.RadiusKm
	}
	if u.PreferredLanguage != nil {
		m.PreferredLanguage = *u.PreferredLanguage
	}
	if u.PhotoURL != nil {
		m.PhotoURL = *u.PhotoURL
	}
	if u.PreferredDays != nil {
		m.PreferredDays = append([]string(nil), (*u.PreferredDays)...)
	}
	if u.PreferredTimeStart != nil {
		m.PreferredTimeStart = u.PreferredTimeStart
	}
	if u.PreferredTimeEnd != nil {
		m.PreferredTimeEnd = u.PreferredTimeEnd
	}
	if u.Timezone != nil {
		m.Timezone = *u.Timezone
	}
	if u.IsActive != nil {
		m.IsActive = *u.IsActive
	}

	m.UpdatedAt = s.now()
	s.members[id] = m
	return nil
}

func (s *MemoryStore) DeactivateMember(ctx context.Context, id int64) error {
	inactive := false
	return s.UpdateMember(ctx, id, model.MemberUpdate{IsActive: &inactive})
}

func (s *MemoryStore) CreatePairing(_ context.Context, user1, user2 int64, status model.Status) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPairingID++
	p := model.Pairing{
		ID:        s.nextPairingID,
		User1ID:   user1,
		User2ID:   user2,
		Status:    status,
		CreatedAt: s.now(),
	}
	s.pairings[p.ID] = p
	return p.ID, nil
}

func (s *MemoryStore) GetPairing(_ context.Context, id int64) (model.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pairings[id]
	if !ok {
		return model.Pairing{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) UpdatePairing(_ context.Context, id int64, u model.PairingUpdate) error {
	if u.Empty() {
		return ErrNothingToUpdate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pairings[id]
	if !ok {
		return ErrNotFound
	}

	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.MeetingDate != nil {
		p.MeetingDate = u.MeetingDate
	}
	if u.FeedbackUser1 != nil {
		p.FeedbackUser1 = u.FeedbackUser1
	}
	if u.FeedbackUser2 != nil {
		p.FeedbackUser2 = u.FeedbackUser2
	}

	s.pairings[id] = p
	return nil
}

// ListPairingsForMember returns the member's pairings newest first.
func (s *MemoryStore) ListPairingsForMember(_ context.Context, memberID int64, status model.Status) ([]model.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Pairing
	for _, p := range s.pairings {
		if !p.Involves(memberID) {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	sortPairingsNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) ListPairingsByStatus(_ context.Context, status model.Status) ([]model.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Pairing
	for _, p := range s.pairings {
		if p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListHistoryForMember(_ context.Context, memberID int64) ([]model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.HistoryEntry
	for _, h := range s.history {
		if h.User1ID == memberID || h.User2ID == memberID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MatchDate.Equal(out[j].MatchDate) {
			return out[i].MatchDate.After(out[j].MatchDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) AppendHistory(_ context.Context, user1, user2 int64, status model.Status, feedback *string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextHistoryID++
	h := model.HistoryEntry{
		ID:        s.nextHistoryID,
		User1ID:   user1,
		User2ID:   user2,
		Status:    status,
		Feedback:  feedback,
		MatchDate: s.now(),
	}
	s.history[h.ID] = h
	return h.ID, nil
}

// CountRecentMissedStreak scans the member's pairings newest first and counts
// leading missed/cancelled entries, stopping at the first other status. Only
// the most recent pairings are inspected.
func (s *MemoryStore) CountRecentMissedStreak(ctx context.Context, memberID int64) (int, error) {
	recent, err := s.ListPairingsForMember(ctx, memberID, "")
	if err != nil {
		return 0, err
	}
	if len(recent) > streakScanLimit {
		recent = recent[:streakScanLimit]
	}

	streak := 0
	for _, p := range recent {
		if !p.Status.CountsAsMissed() {
			break
		}
		streak++
	}
	return streak, nil
}

func (s *MemoryStore) ListPriorPartners(_ context.Context, memberID int64) (map[int64]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	partners := make(map[int64]struct{})
	for _, p := range s.pairings {
		if other, ok := p.PartnerOf(memberID); ok {
			partners[other] = struct{}{}
		}
	}
	for _, h := range s.history {
		switch memberID {
		case h.User1ID:
			partners[h.User2ID] = struct{}{}
		case h.User2ID:
			partners[h.User1ID] = struct{}{}
		}
	}
	return partners, nil
}

func (s *MemoryStore) MemberStats(_ context.Context, memberID int64) (model.MemberStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats model.MemberStats
	for _, p := range s.pairings {
		if !p.Involves(memberID) {
			continue
		}
		stats.Total++
		switch {
		case p.Status == model.StatusCompleted:
			stats.Completed++
		case p.Status.CountsAsMissed():
			stats.Missed++
		case p.Status == model.StatusPending:
			stats.Pending++
		}
	}
	return stats, nil
}

// sortPairingsNewestFirst orders by creation time descending, id descending
// as the tie break so same-instant rows keep insertion order reversed.
func sortPairingsNewestFirst(ps []model.Pairing) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID > ps[j].ID
	})
}
