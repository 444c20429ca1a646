package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/pzwatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Source, convey.ShouldEqual, config.SourceFTP)
			convey.So(cfg.FTPPort, convey.ShouldEqual, 34231)
			convey.So(cfg.LogPath, convey.ShouldEqual, "/Lua/discord_events.log")
			convey.So(cfg.PollInterval(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.FTPTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.WebhookInterval(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.SkillNotifications, convey.ShouldEqual, "milestones")
			convey.So(cfg.SkillMilestones, convey.ShouldResemble, []int{5, 10})
			convey.So(cfg.SaveEveryCycles, convey.ShouldEqual, 20)
			convey.So(cfg.MaxConsecutiveErrors, convey.ShouldEqual, 5)
			convey.So(cfg.BackoffMultiplier, convey.ShouldEqual, 3)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 1000)
			convey.So(cfg.NotifyQueueSize, convey.ShouldEqual, 256)
			convey.So(cfg.WeeklySkills, convey.ShouldHaveLength, 5)
		})

		convey.Convey("Then the default timezone should resolve to local time", func() {
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.Local)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.Convey("When no connection settings are provided", func() {
			err := config.Validate(cfg)

			convey.Convey("Then every missing setting should be listed at once", func() {
				var missing *config.MissingError
				convey.So(errors.As(err, &missing), convey.ShouldBeTrue)
				convey.So(errors.Is(err, config.ErrMissingConfig), convey.ShouldBeTrue)
				convey.So(missing.Keys, convey.ShouldResemble, []string{
					"PZWATCH_FTP_HOST",
					"PZWATCH_FTP_USER",
					"PZWATCH_FTP_PASS",
					"PZWATCH_WEBHOOK_URL",
				})
				convey.So(err.Error(), convey.ShouldContainSubstring, "PZWATCH_FTP_HOST, PZWATCH_FTP_USER")
			})
		})

		convey.Convey("When reading a local file in dry-run mode", func() {
			cfg.Source = config.SourceFile
			cfg.DryRun = true

			convey.Convey("Then no credentials or webhook are required", func() {
				convey.So(config.Validate(cfg), convey.ShouldBeNil)
			})
		})

		convey.Convey("When a value is out of range", func() {
			cfg.Source = config.SourceFile
			cfg.DryRun = true
			cfg.SkillNotifications = "sometimes"

			err := config.Validate(cfg)

			convey.Convey("Then an invalid config error should name the key", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "PZWATCH_SKILL_NOTIFICATIONS")
			})
		})

		convey.Convey("When the webhook URL is malformed", func() {
			cfg.Source = config.SourceFile
			cfg.WebhookURL = "not a url"

			err := config.Validate(cfg)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
