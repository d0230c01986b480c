// Package scheduler fires the weekly matching and reminder ticks. Each
// cadence runs at most one tick per scheduled instant; a tick that fails is
// logged and retried on the next instant, never immediately.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/fika/internal/domain/matching"
	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/pkg/logger"
	"github.com/okian/fika/pkg/metrics"
)

// Engine produces and persists matching cycles. Satisfied by
// matching.Engine.
type Engine interface {
	RunCycle(ctx context.Context) ([]matching.Pair, error)
	PersistPairs(ctx context.Context, pairs []matching.Pair) ([]int64, error)
}

// Dispatcher fans pairing events out to participants. Satisfied by
// notifier.Dispatcher.
type Dispatcher interface {
	AnnouncePairing(ctx context.Context, pairingID int64) error
	RemindPairing(ctx context.Context, pairingID int64) error
}

// Store is the slice of the repository the reminder tick reads.
type Store interface {
	ListPairingsByStatus(ctx context.Context, status model.Status) ([]model.Pairing, error)
}

type Scheduler struct {
	engine     Engine
	dispatcher Dispatcher
	store      Store
	log        logger.Logger

	matchDay     time.Weekday
	matchHour    int
	reminderHour int
	loc          *time.Location
	pacing       time.Duration
	now          func() time.Time
}

func New(engine Engine, dispatcher Dispatcher, store Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		engine:       engine,
		dispatcher:   dispatcher,
		store:        store,
		log:          logger.Named("scheduler"),
		matchDay:     defaultMatchDay,
		matchHour:    defaultMatchHour,
		reminderHour: defaultReminderHour,
		loc:          time.UTC,
		pacing:       defaultPacing,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextWeekly returns the first instant strictly after `after` that falls on
// the given weekday at the given hour, in after's location.
func NextWeekly(after time.Time, day time.Weekday, hour int) time.Time {
	next := time.Date(after.Year(), after.Month(), after.Day(), hour, 0, 0, 0, after.Location())
	next = next.AddDate(0, 0, (int(day)-int(after.Weekday())+7)%7)
	if !next.After(after) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Run drives both cadences until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info(ctx, "scheduler started",
		logger.String("match_day", s.matchDay.String()),
		logger.Int("match_hour", s.matchHour),
		logger.Int("reminder_hour", s.reminderHour),
		logger.String("timezone", s.loc.String()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.loop(ctx, "matching", s.matchHour, s.MatchingTick)
	}()
	go func() {
		defer wg.Done()
		s.loop(ctx, "reminder", s.reminderHour, s.ReminderTick)
	}()
	wg.Wait()

	s.log.Info(ctx, "scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, name string, hour int, tick func(context.Context) error) {
	for {
		next := NextWeekly(s.now().In(s.loc), s.matchDay, hour)
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if err := tick(ctx); err != nil {
			metrics.RecordTickError(name)
			s.log.Error(ctx, "tick failed",
				logger.String("tick", name),
				logger.Error(err))
		}
	}
}

// MatchingTick runs one matching cycle, persists its pairs, announces every
// stored pairing and then chains straight into a reminder pass so fresh
// pairings are nudged without waiting for the reminder cadence.
func (s *Scheduler) MatchingTick(ctx context.Context) error {
	s.log.Info(ctx, "matching tick")

	pairs, err := s.engine.RunCycle(ctx)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		s.log.Info(ctx, "no pairs this cycle")
		return nil
	}

	// Announce whatever was stored even when some inserts failed.
	ids, persistErr := s.engine.PersistPairs(ctx, pairs)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.dispatcher.AnnouncePairing(ctx, id); err != nil {
			s.log.Error(ctx, "announcement failed",
				logger.Int64("pairing_id", id),
				logger.Error(err))
		}
		s.pause(ctx)
	}
	s.log.Info(ctx, "matching tick finished", logger.Int("created", len(ids)))

	return errors.Join(persistErr, s.ReminderTick(ctx))
}

// ReminderTick re-nudges every pairing still pending. Safe to re-run: it
// mutates nothing.
func (s *Scheduler) ReminderTick(ctx context.Context) error {
	pending, err := s.store.ListPairingsByStatus(ctx, model.StatusPending)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		s.log.Info(ctx, "no pending pairings to remind")
		return nil
	}

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.dispatcher.RemindPairing(ctx, p.ID); err != nil {
			s.log.Error(ctx, "reminder failed",
				logger.Int64("pairing_id", p.ID),
				logger.Error(err))
		}
		s.pause(ctx)
	}
	metrics.RecordReminderPass()
	s.log.Info(ctx, "reminder pass finished", logger.Int("pending", len(pending)))
	return nil
}

func (s *Scheduler) pause(ctx context.Context) {
	if s.pacing <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.pacing):
	}
}
