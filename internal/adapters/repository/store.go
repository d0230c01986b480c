// Package repository defines the durable store interface behind members,
// pairings, and the append-only pairing history, plus its errors.
package repository

import (
	"context"

	"github.com/okian/fika/internal/domain/model"
)

// Store provides read/write access to member and pairing state.
type Store interface {
	// GetActiveMembers returns every member with the active flag set,
	// ordered by id ascending for deterministic cycles.
	GetActiveMembers(ctx context.Context) ([]model.Member, error)

	// GetMember returns a member by internal id.
	// Returns ErrNotFound if the member is unknown.
	GetMember(ctx context.Context, id int64) (model.Member, error)

	// GetMemberByTelegramID returns a member by external identity.
	GetMemberByTelegramID(ctx context.Context, telegramID int64) (model.Member, error)

	// CreateMember inserts a new member and returns its id.
	CreateMember(ctx context.Context, m model.Member) (int64, error)

	// UpdateMember applies only the fields set on the update.
	// Returns ErrNothingToUpdate when the update is empty.
	UpdateMember(ctx context.Context, id int64, u model.MemberUpdate) error

	// DeactivateMember soft-deactivates a member; members are never deleted.
	DeactivateMember(ctx context.Context, id int64) error

	// CreatePairing inserts a new pairing row and returns its id.
	CreatePairing(ctx context.Context, user1, user2 int64, status model.Status) (int64, error)

	// GetPairing returns a pairing by id.
	// Returns ErrNotFound if the pairing is unknown.
	GetPairing(ctx context.Context, id int64) (model.Pairing, error)

	// UpdatePairing applies only the fields set on the update.
	UpdatePairing(ctx context.Context, id int64, u model.PairingUpdate) error

	// ListPairingsForMember returns a member's pairings ordered by creation
	// time descending. An empty status lists all statuses.
	ListPairingsForMember(ctx context.Context, memberID int64, status model.Status) ([]model.Pairing, error)

	// ListPairingsByStatus returns every pairing currently in the status.
	ListPairingsByStatus(ctx context.Context, status model.Status) ([]model.Pairing, error)

	// ListHistoryForMember returns a member's history entries, newest first.
	ListHistoryForMember(ctx context.Context, memberID int64) ([]model.HistoryEntry, error)

	// AppendHistory writes one immutable history entry and returns its id.
	AppendHistory(ctx context.Context, user1, user2 int64, status model.Status, feedback *string) (int64, error)

	// CountRecentMissedStreak counts the member's consecutive most-recent
	// pairings in missed/cancelled status, scanning creation-descending and
	// stopping at the first pairing in any other status.
	CountRecentMissedStreak(ctx context.Context, memberID int64) (int, error)

	// ListPriorPartners returns the ids of every member this member was ever
	// paired with: live pairing rows and history entries, unioned.
	ListPriorPartners(ctx context.Context, memberID int64) (map[int64]struct{}, error)

	// MemberStats returns aggregate pairing counts for a member.
	MemberStats(ctx context.Context, memberID int64) (model.MemberStats, error)
}
