package model

import "time"

// Pairing is one matching outcome between two distinct members.
// A leftover trio is stored as three pairwise Pairing rows.
type Pairing struct {
	ID            int64
	User1ID       int64
	User2ID       int64
	Status        Status
	CreatedAt     time.Time
	MeetingDate   *time.Time
	FeedbackUser1 *string
	FeedbackUser2 *string
}

// Involves reports whether the member is one of the pairing's two sides.
func (p Pairing) Involves(memberID int64) bool {
	return p.User1ID == memberID || p.User2ID == memberID
}

// PartnerOf returns the other member's id. The second return is false when
// the given member is not part of the pairing.
func (p Pairing) PartnerOf(memberID int64) (int64, bool) {
	switch memberID {
	case p.User1ID:
		return p.User2ID, true
	case p.User2ID:
		return p.User1ID, true
	default:
		return 0, false
	}
}

// HistoryEntry is the append-only record of a completed pairing. It exists
// independently of the live Pairing row and blocks future re-pairing.
type HistoryEntry struct {
	ID        int64
	User1ID   int64
	User2ID   int64
	Status    Status
	Feedback  *string
	MatchDate time.Time
}
