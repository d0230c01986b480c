package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if FIKA_CONFIG is set
//  3. env (prefix FIKA_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("FIKA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: FIKA_ADDR, FIKA_MATCH_HOUR, ...
	// Map env keys like FIKA_MATCH_HOUR -> match_hour (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("FIKA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "fika_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MatchHour < 0 || c.MatchHour > 23 {
		return fmt.Errorf("%w: match_hour %d out of range", ErrInvalidConfig, c.MatchHour)
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("%w: reminder_hour %d out of range", ErrInvalidConfig, c.ReminderHour)
	}
	if c.MissedMatchThreshold <= 0 {
		return fmt.Errorf("%w: missed_match_threshold must be positive", ErrInvalidConfig)
	}
	if c.NotifyPacingMS < 0 {
		return fmt.Errorf("%w: notify_pacing_ms must not be negative", ErrInvalidConfig)
	}
	if _, err := c.MatchWeekday(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
