package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/pkg/logger"
	"github.com/okian/fika/pkg/metrics"
)

// Directory resolves pairing participants. Satisfied by repository.Store.
type Directory interface {
	GetPairing(ctx context.Context, id int64) (model.Pairing, error)
	GetMember(ctx context.Context, id int64) (model.Member, error)
}

// Dispatcher fans one pairing event out to both participants through a
// Notifier. Delivery failures are logged and counted but one participant's
// failure never blocks the other's message.
type Dispatcher struct {
	dir      Directory
	notifier Notifier
	log      logger.Logger
}

func NewDispatcher(dir Directory, n Notifier) *Dispatcher {
	return &Dispatcher{
		dir:      dir,
		notifier: n,
		log:      logger.Named("dispatcher"),
	}
}

// AnnouncePairing tells both participants of a freshly created pairing.
func (d *Dispatcher) AnnouncePairing(ctx context.Context, pairingID int64) error {
	p, first, second, err := d.resolve(ctx, pairingID)
	if err != nil {
		return err
	}

	var errs []error
	for _, pair := range [2][2]model.Member{{first, second}, {second, first}} {
		if err := d.notifier.AnnounceNewPairing(ctx, pair[0], pair[1], p.ID); err != nil {
			metrics.RecordNotificationFailure("pairing")
			d.log.Error(ctx, "pairing announcement failed",
				logger.Int64("pairing_id", p.ID),
				logger.Int64("member_id", pair[0].ID),
				logger.Error(err))
			errs = append(errs, err)
			continue
		}
		metrics.RecordNotificationSent("pairing")
	}
	return errors.Join(errs...)
}

// AnnounceStatusChange notifies participants after a transition. For accepted
// and declined the message goes to the participant who did not act, naming
// the actor; for completed both participants are told.
func (d *Dispatcher) AnnounceStatusChange(ctx context.Context, pairingID, actorID int64, status model.Status) error {
	p, first, second, err := d.resolve(ctx, pairingID)
	if err != nil {
		return err
	}

	type delivery struct{ to, about model.Member }
	var deliveries []delivery
	switch status {
	case model.StatusAccepted, model.StatusDeclined:
		actor, other := first, second
		if actorID == second.ID {
			actor, other = second, first
		}
		deliveries = []delivery{{to: other, about: actor}}
	case model.StatusCompleted:
		deliveries = []delivery{{to: first, about: second}, {to: second, about: first}}
	default:
		return nil
	}

	var errs []error
	for _, dl := range deliveries {
		if err := d.notifier.AnnounceStatusChange(ctx, dl.to, dl.about, p.ID, status); err != nil {
			metrics.RecordNotificationFailure("status")
			d.log.Error(ctx, "status announcement failed",
				logger.Int64("pairing_id", p.ID),
				logger.Int64("member_id", dl.to.ID),
				logger.String("status", status.String()),
				logger.Error(err))
			errs = append(errs, err)
			continue
		}
		metrics.RecordNotificationSent("status")
	}
	return errors.Join(errs...)
}

// RemindPairing nudges both participants of a pairing that is still pending.
// Pairings that moved on since listing are skipped silently.
func (d *Dispatcher) RemindPairing(ctx context.Context, pairingID int64) error {
	p, first, second, err := d.resolve(ctx, pairingID)
	if err != nil {
		return err
	}
	if p.Status != model.StatusPending {
		return nil
	}

	var errs []error
	for _, pair := range [2][2]model.Member{{first, second}, {second, first}} {
		if err := d.notifier.SendReminder(ctx, pair[0], pair[1], p.ID); err != nil {
			metrics.RecordNotificationFailure("reminder")
			d.log.Error(ctx, "reminder failed",
				logger.Int64("pairing_id", p.ID),
				logger.Int64("member_id", pair[0].ID),
				logger.Error(err))
			errs = append(errs, err)
			continue
		}
		metrics.RecordNotificationSent("reminder")
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) resolve(ctx context.Context, pairingID int64) (model.Pairing, model.Member, model.Member, error) {
	p, err := d.dir.GetPairing(ctx, pairingID)
	if err != nil {
		return model.Pairing{}, model.Member{}, model.Member{}, fmt.Errorf("resolve pairing %d: %w", pairingID, err)
	}
	first, err := d.dir.GetMember(ctx, p.User1ID)
	if err != nil {
		return model.Pairing{}, model.Member{}, model.Member{}, fmt.Errorf("resolve member %d: %w", p.User1ID, err)
	}
	second, err := d.dir.GetMember(ctx, p.User2ID)
	if err != nil {
		return model.Pairing{}, model.Member{}, model.Member{}, fmt.Errorf("resolve member %d: %w", p.User2ID, err)
	}
	return p, first, second, nil
}
