// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address for health and metrics,
	// e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatabaseURL is the Postgres DSN. Empty selects the in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// MigrationsDir holds the schema migration files.
	MigrationsDir string `koanf:"migrations_dir"`

	// BotToken authenticates against the Telegram Bot API. Empty selects
	// the log-only notifier.
	BotToken string `koanf:"bot_token"`

	// WebappURL is the base of the profile web app linked from
	// notifications. Optional.
	WebappURL string `koanf:"webapp_url"`

	// MatchDay names the weekday of the matching tick, e.g. "Monday".
	MatchDay string `koanf:"match_day"`

	// MatchHour is the hour of the matching tick, 0-23.
	MatchHour int `koanf:"match_hour"`

	// ReminderHour is the hour of the weekly reminder tick, 0-23.
	ReminderHour int `koanf:"reminder_hour"`

	// Timezone is the IANA zone both cadences are evaluated in.
	Timezone string `koanf:"timezone"`

	// MissedMatchThreshold benches a member after this many consecutive
	// missed or cancelled pairings.
	MissedMatchThreshold int `koanf:"missed_match_threshold"`

	// NotifyPacingMS spaces consecutive outbound notifications.
	NotifyPacingMS int `koanf:"notify_pacing_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		MigrationsDir:        "migrations",
		MatchDay:             "Monday",
		MatchHour:            10,
		ReminderHour:         9,
		Timezone:             "UTC",
		MissedMatchThreshold: 3,
		NotifyPacingMS:       500,
	}
}

// MatchWeekday parses MatchDay into a time.Weekday.
func (c *Config) MatchWeekday() (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(c.MatchDay, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown match day %q", ErrInvalidConfig, c.MatchDay)
}

// Location parses Timezone into a *time.Location.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// NotifyPacing returns the pacing as a duration.
func (c *Config) NotifyPacing() time.Duration {
	return time.Duration(c.NotifyPacingMS) * time.Millisecond
}
