package scheduler

import "time"

const (
	defaultMatchDay     = time.Monday
	defaultMatchHour    = 10
	defaultReminderHour = 9
	// Spacing between outbound messages, kept well under Telegram's flood
	// limits.
	defaultPacing = 500 * time.Millisecond
)

type Option func(*Scheduler)

// WithMatchingSchedule sets the weekly day and hour of the matching tick.
func WithMatchingSchedule(day time.Weekday, hour int) Option {
	return func(s *Scheduler) {
		s.matchDay = day
		if hour >= 0 && hour < 24 {
			s.matchHour = hour
		}
	}
}

// WithReminderHour sets the hour of the weekly reminder tick. It runs on the
// matching day.
func WithReminderHour(hour int) Option {
	return func(s *Scheduler) {
		if hour >= 0 && hour < 24 {
			s.reminderHour = hour
		}
	}
}

// WithLocation sets the timezone both cadences are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPacing sets the delay between consecutive outbound notifications.
// Zero disables pacing.
func WithPacing(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.pacing = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}
