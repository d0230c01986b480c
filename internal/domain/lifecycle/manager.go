// Package lifecycle drives a pairing through its state machine: a pending
// proposal is accepted or declined by a participant, an accepted meeting is
// completed and archived to history, and decided pairings collect feedback.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/pkg/logger"
	"github.com/okian/fika/pkg/metrics"
)

// Store is the slice of the repository the lifecycle reads and writes.
type Store interface {
	GetPairing(ctx context.Context, id int64) (model.Pairing, error)
	UpdatePairing(ctx context.Context, id int64, u model.PairingUpdate) error
	AppendHistory(ctx context.Context, user1, user2 int64, status model.Status, feedback *string) (int64, error)
	MemberStats(ctx context.Context, memberID int64) (model.MemberStats, error)
}

// Announcer notifies participants after a transition. Satisfied by
// notifier.Dispatcher.
type Announcer interface {
	AnnounceStatusChange(ctx context.Context, pairingID, actorID int64, status model.Status) error
}

// Manager applies member actions to pairings.
type Manager struct {
	store     Store
	announcer Announcer
	log       logger.Logger
}

type Option func(*Manager)

// WithAnnouncer enables status change notifications after transitions.
// Announcement failures are logged, never surfaced to the acting member.
func WithAnnouncer(a Announcer) Option {
	return func(m *Manager) { m.announcer = a }
}

func New(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		log:   logger.Named("lifecycle"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Accept moves a pending pairing to accepted on behalf of memberID.
func (m *Manager) Accept(ctx context.Context, pairingID, memberID int64) error {
	_, err := m.transition(ctx, pairingID, memberID, model.StatusAccepted)
	return err
}

// Decline moves a pending pairing to declined on behalf of memberID.
func (m *Manager) Decline(ctx context.Context, pairingID, memberID int64) error {
	_, err := m.transition(ctx, pairingID, memberID, model.StatusDeclined)
	return err
}

// Complete moves an accepted pairing to completed and archives exactly one
// history row for it. The status change sticks even when archival fails;
// the archival error is surfaced so the caller can retry it.
func (m *Manager) Complete(ctx context.Context, pairingID, memberID int64) error {
	p, err := m.transition(ctx, pairingID, memberID, model.StatusCompleted)
	if err != nil {
		return err
	}
	if _, err := m.store.AppendHistory(ctx, p.User1ID, p.User2ID, model.StatusCompleted, nil); err != nil {
		m.log.Error(ctx, "history append failed",
			logger.Int64("pairing_id", pairingID),
			logger.Error(err))
		return fmt.Errorf("pairing %d completed, history append failed: %w", pairingID, err)
	}
	return nil
}

// AttachFeedback stores text in the acting member's feedback slot. The
// pairing must be past pending; repeated calls overwrite the slot.
func (m *Manager) AttachFeedback(ctx context.Context, pairingID, memberID int64, text string) error {
	p, err := m.store.GetPairing(ctx, pairingID)
	if err != nil {
		return err
	}
	if !p.Involves(memberID) {
		return fmt.Errorf("%w: member %d, pairing %d", ErrNotParticipant, memberID, pairingID)
	}
	if p.Status == model.StatusPending {
		return fmt.Errorf("%w: pairing %d", ErrFeedbackOnPending, pairingID)
	}

	var u model.PairingUpdate
	if memberID == p.User1ID {
		u.FeedbackUser1 = &text
	} else {
		u.FeedbackUser2 = &text
	}
	return m.store.UpdatePairing(ctx, pairingID, u)
}

// Stats reports a member's pairing totals.
func (m *Manager) Stats(ctx context.Context, memberID int64) (model.MemberStats, error) {
	return m.store.MemberStats(ctx, memberID)
}

func (m *Manager) transition(ctx context.Context, pairingID, memberID int64, to model.Status) (model.Pairing, error) {
	p, err := m.store.GetPairing(ctx, pairingID)
	if err != nil {
		return model.Pairing{}, err
	}
	if !p.Involves(memberID) {
		return model.Pairing{}, fmt.Errorf("%w: member %d, pairing %d", ErrNotParticipant, memberID, pairingID)
	}
	if !model.CanTransition(p.Status, to) {
		return model.Pairing{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
	}

	if err := m.store.UpdatePairing(ctx, pairingID, model.PairingUpdate{Status: &to}); err != nil {
		return model.Pairing{}, fmt.Errorf("update pairing %d: %w", pairingID, err)
	}
	metrics.RecordTransition(to.String())
	m.log.Info(ctx, "pairing transitioned",
		logger.Int64("pairing_id", pairingID),
		logger.Int64("member_id", memberID),
		logger.String("from", p.Status.String()),
		logger.String("to", to.String()))

	if m.announcer != nil {
		if err := m.announcer.AnnounceStatusChange(ctx, pairingID, memberID, to); err != nil {
			m.log.Error(ctx, "status announcement failed",
				logger.Int64("pairing_id", pairingID),
				logger.Error(err))
		}
	}
	return p, nil
}
