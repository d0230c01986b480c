// Package service wires the matching engine, pairing lifecycle, notifier
// fan-out and scheduler together behind one facade.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/fika/internal/adapters/notifier"
	"github.com/okian/fika/internal/adapters/repository"
	"github.com/okian/fika/internal/domain/lifecycle"
	"github.com/okian/fika/internal/domain/matching"
	"github.com/okian/fika/internal/domain/model"
	"github.com/okian/fika/internal/scheduler"
	"github.com/okian/fika/pkg/logger"
)

// Service implements the member facing operations of the pairing system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	notifier   notifier.Notifier
	dispatcher *notifier.Dispatcher
	engine     *matching.Engine
	lifecycle  *lifecycle.Manager
	scheduler  *scheduler.Scheduler

	// Configuration
	missedThreshold int
	matchDay        time.Weekday
	matchHour       int
	reminderHour    int
	location        *time.Location
	pacing          time.Duration

	// State
	started bool
	cancel  context.CancelFunc
	doneCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing repository. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithNotifier sets the outbound notification channel. Defaults to the
// log-only notifier.
func WithNotifier(n notifier.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMissedThreshold sets how many consecutive missed or cancelled
// pairings bench a member.
func WithMissedThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.missedThreshold = n
		}
	}
}

// WithSchedule sets the weekly matching and reminder cadence.
func WithSchedule(day time.Weekday, matchHour, reminderHour int, loc *time.Location) Option {
	return func(s *Service) {
		s.matchDay = day
		s.matchHour = matchHour
		s.reminderHour = reminderHour
		if loc != nil {
			s.location = loc
		}
	}
}

// WithNotifyPacing sets the delay between consecutive outbound
// notifications.
func WithNotifyPacing(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.pacing = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		missedThreshold: 3,
		matchDay:        time.Monday,
		matchHour:       10,
		reminderHour:    9,
		location:        time.UTC,
		pacing:          500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start wires the components together and launches the scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.logger.Info(ctx, "starting pairing service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.notifier == nil {
		s.notifier = notifier.NewLogNotifier()
		s.logger.Info(ctx, "using log-only notifier")
	}

	s.dispatcher = notifier.NewDispatcher(s.store, s.notifier)
	s.engine = matching.New(s.store,
		matching.WithMissedThreshold(s.missedThreshold),
	)
	s.lifecycle = lifecycle.New(s.store,
		lifecycle.WithAnnouncer(s.dispatcher),
	)
	s.scheduler = scheduler.New(s.engine, s.dispatcher, s.store,
		scheduler.WithMatchingSchedule(s.matchDay, s.matchHour),
		scheduler.WithReminderHour(s.reminderHour),
		scheduler.WithLocation(s.location),
		scheduler.WithPacing(s.pacing),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.doneCh = make(chan struct{})
	go func() {
		defer close(s.doneCh)
		s.scheduler.Run(runCtx)
	}()

	s.started = true
	s.logger.Info(ctx, "pairing service started",
		logger.String("match_day", s.matchDay.String()),
		logger.Int("match_hour", s.matchHour),
		logger.Int("reminder_hour", s.reminderHour),
		logger.Int("missed_threshold", s.missedThreshold),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping pairing service...")
	s.cancel()
	<-s.doneCh
	s.started = false
	s.logger.Info(context.Background(), "pairing service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// RegisterMember creates a member record on first contact. Registering an
// already known external identity returns the existing member id.
func (s *Service) RegisterMember(ctx context.Context, m model.Member) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	existing, err := s.store.GetMemberByTelegramID(ctx, m.TelegramID)
	switch {
	case err == nil:
		return existing.ID, nil
	case errors.Is(err, repository.ErrNotFound):
	default:
		return 0, fmt.Errorf("lookup member: %w", err)
	}

	id, err := s.store.CreateMember(ctx, m)
	if err != nil {
		return 0, fmt.Errorf("create member: %w", err)
	}
	s.logger.Info(ctx, "member registered",
		logger.Int64("member_id", id),
		logger.Int64("telegram_id", m.TelegramID))
	return id, nil
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, memberID int64, u model.MemberUpdate) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.UpdateMember(ctx, memberID, u)
}

// DeactivateMember soft-deletes a member; they stop being a matching
// candidate but their record and history remain.
func (s *Service) DeactivateMember(ctx context.Context, memberID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.DeactivateMember(ctx, memberID)
}

// Member resolves a member by external identity.
func (s *Service) Member(ctx context.Context, telegramID int64) (model.Member, error) {
	if err := s.ready(); err != nil {
		return model.Member{}, err
	}
	return s.store.GetMemberByTelegramID(ctx, telegramID)
}

// Accept moves a pending pairing to accepted on behalf of memberID.
func (s *Service) Accept(ctx context.Context, pairingID, memberID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.lifecycle.Accept(ctx, pairingID, memberID)
}

// Decline moves a pending pairing to declined on behalf of memberID.
func (s *Service) Decline(ctx context.Context, pairingID, memberID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.lifecycle.Decline(ctx, pairingID, memberID)
}

// Complete marks an accepted pairing as completed and archives it.
func (s *Service) Complete(ctx context.Context, pairingID, memberID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.lifecycle.Complete(ctx, pairingID, memberID)
}

// AttachFeedback stores a member's feedback on a decided pairing.
func (s *Service) AttachFeedback(ctx context.Context, pairingID, memberID int64, text string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.lifecycle.AttachFeedback(ctx, pairingID, memberID, text)
}

// Stats reports a member's pairing totals.
func (s *Service) Stats(ctx context.Context, memberID int64) (model.MemberStats, error) {
	if err := s.ready(); err != nil {
		return model.MemberStats{}, err
	}
	return s.lifecycle.Stats(ctx, memberID)
}

// Pairings lists a member's pairings, optionally filtered by status.
func (s *Service) Pairings(ctx context.Context, memberID int64, status model.Status) ([]model.Pairing, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListPairingsForMember(ctx, memberID, status)
}

// RunMatchingNow fires one matching tick outside the weekly cadence.
func (s *Service) RunMatchingNow(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.scheduler.MatchingTick(ctx)
}
