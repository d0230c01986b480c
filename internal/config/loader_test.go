package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/fika/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MatchDay, convey.ShouldEqual, "Monday")
				convey.So(cfg.MatchHour, convey.ShouldEqual, 10)
				convey.So(cfg.MissedMatchThreshold, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FIKA_ADDR", ":8080")
			_ = os.Setenv("FIKA_MATCH_DAY", "Friday")
			_ = os.Setenv("FIKA_MATCH_HOUR", "14")
			_ = os.Setenv("FIKA_REMINDER_HOUR", "12")
			_ = os.Setenv("FIKA_MISSED_MATCH_THRESHOLD", "5")
			_ = os.Setenv("FIKA_DATABASE_URL", "postgres://localhost/fika")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MatchDay, convey.ShouldEqual, "Friday")
				convey.So(cfg.MatchHour, convey.ShouldEqual, 14)
				convey.So(cfg.ReminderHour, convey.ShouldEqual, 12)
				convey.So(cfg.MissedMatchThreshold, convey.ShouldEqual, 5)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://localhost/fika")
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()
			path := filepath.Join(t.TempDir(), "config.yaml")
			yaml := "addr: \":7070\"\nmatch_day: Wednesday\nnotify_pacing_ms: 100\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("FIKA_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MatchDay, convey.ShouldEqual, "Wednesday")
				convey.So(cfg.NotifyPacingMS, convey.ShouldEqual, 100)
			})

			convey.Convey("And env vars override the file", func() {
				_ = os.Setenv("FIKA_ADDR", ":6060")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
				convey.So(cfg.MatchDay, convey.ShouldEqual, "Wednesday")
			})
		})

		convey.Convey("When the config is invalid", func() {
			clearConfigEnvVars()

			convey.Convey("Then an out of range hour is rejected", func() {
				_ = os.Setenv("FIKA_MATCH_HOUR", "25")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("Then an unknown match day is rejected", func() {
				_ = os.Setenv("FIKA_MATCH_DAY", "Caturday")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("Then a non-positive threshold is rejected", func() {
				_ = os.Setenv("FIKA_MISSED_MATCH_THRESHOLD", "0")
				defer clearConfigEnvVars()

				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"FIKA_CONFIG",
		"FIKA_ADDR",
		"FIKA_LOG_LEVEL",
		"FIKA_DATABASE_URL",
		"FIKA_BOT_TOKEN",
		"FIKA_WEBAPP_URL",
		"FIKA_MATCH_DAY",
		"FIKA_MATCH_HOUR",
		"FIKA_REMINDER_HOUR",
		"FIKA_TIMEZONE",
		"FIKA_MISSED_MATCH_THRESHOLD",
		"FIKA_NOTIFY_PACING_MS",
	} {
		_ = os.Unsetenv(key)
	}
}
