// Package notifier delivers pairing announcements, status updates and
// reminders to members, and fans single pairing events out to both
// participants.
package notifier

import (
	"context"

	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/pkg/logger"
)

// Notifier sends a single message to a single member. The counterpart is the
// other participant of the pairing the message is about.
type Notifier interface {
	// AnnounceNewPairing tells member they have been paired with counterpart.
	AnnounceNewPairing(ctx context.Context, member, counterpart model.Member, pairingID int64) error
	// AnnounceStatusChange tells member the pairing moved to status. The
	// counterpart is the participant who triggered the change when the
	// status has an initiator, the other member otherwise.
	AnnounceStatusChange(ctx context.Context, member, counterpart model.Member, pairingID int64, status model.Status) error
	// SendReminder nudges member about a still pending pairing.
	SendReminder(ctx context.Context, member, counterpart model.Member, pairingID int64) error
}

// LogNotifier writes every notification to the log instead of an external
// channel. Used when no bot credentials are configured, and in tests.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Named("notifier")}
}

func (n *LogNotifier) AnnounceNewPairing(ctx context.Context, member, counterpart model.Member, pairingID int64) error {
	n.log.Info(ctx, "new pairing announcement",
		logger.Int64("member_id", member.ID),
		logger.Int64("counterpart_id", counterpart.ID),
		logger.Int64("pairing_id", pairingID))
	return nil
}

func (n *LogNotifier) AnnounceStatusChange(ctx context.Context, member, counterpart model.Member, pairingID int64, status model.Status) error {
	n.log.Info(ctx, "pairing status announcement",
		logger.Int64("member_id", member.ID),
		logger.Int64("counterpart_id", counterpart.ID),
		logger.Int64("pairing_id", pairingID),
		logger.String("status", status.String()))
	return nil
}

func (n *LogNotifier) SendReminder(ctx context.Context, member, counterpart model.Member, pairingID int64) error {
	n.log.Info(ctx, "pairing reminder",
		logger.Int64("member_id", member.ID),
		logger.Int64("counterpart_id", counterpart.ID),
		logger.Int64("pairing_id", pairingID))
	return nil
}
