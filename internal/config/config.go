// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env vars on top.
// - Required connection settings are validated once at startup.
package config

import "time"

// Transport kinds for the remote event log.
const (
	SourceFTP  = "ftp"
	SourceFile = "file"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Source selects the log transport: ftp or file.
	Source string `koanf:"source" validate:"oneof=ftp file"`

	// FTP connection target and credentials.
	FTPHost       string `koanf:"ftp_host" validate:"required_if=Source ftp"`
	FTPPort       int    `koanf:"ftp_port" validate:"min=1,max=65535"`
	FTPUser       string `koanf:"ftp_user" validate:"required_if=Source ftp"`
	FTPPass       string `koanf:"ftp_pass" validate:"required_if=Source ftp"`
	FTPTimeoutSec int    `koanf:"ftp_timeout_sec" validate:"min=1"`

	// LogPath is the remote (or local, for source=file) event log path.
	LogPath string `koanf:"log_path" validate:"required"`

	// Webhook delivery settings. WebhookURL may be empty only in dry-run mode.
	WebhookURL        string `koanf:"webhook_url" validate:"required_unless=DryRun true,omitempty,url"`
	WebhookUsername   string `koanf:"webhook_username"`
	WebhookIntervalMS int    `koanf:"webhook_interval_ms" validate:"min=0"`
	WebhookBurst      int    `koanf:"webhook_burst" validate:"min=1"`
	DryRun            bool   `koanf:"dry_run"`
	// NotifyQueueSize bounds notifications waiting for delivery.
	NotifyQueueSize int `koanf:"notify_queue_size" validate:"min=1"`

	// PollIntervalSec is the sleep between poll cycles.
	PollIntervalSec int `koanf:"poll_interval_sec" validate:"min=1"`

	// SkillNotifications is the level-up policy: none, milestones or all.
	SkillNotifications string `koanf:"skill_notifications" validate:"oneof=none milestones all"`
	SkillMilestones    []int  `koanf:"skill_milestones"`

	// StateFile holds the persisted player stats and cursors.
	StateFile       string `koanf:"state_file" validate:"required"`
	SaveEveryCycles int    `koanf:"save_every_cycles" validate:"min=1"`

	// MaxConsecutiveErrors failed cycles trigger a sleep of
	// PollIntervalSec*BackoffMultiplier.
	MaxConsecutiveErrors int `koanf:"max_consecutive_errors" validate:"min=1"`
	BackoffMultiplier    int `koanf:"backoff_multiplier" validate:"min=1"`

	// DedupeSize bounds the recently-seen event window.
	DedupeSize int `koanf:"dedupe_size" validate:"min=1"`

	// WeeklySkills are the skills covered by the Sunday skill boards.
	WeeklySkills []string `koanf:"weekly_skills"`

	// Timezone names the location used for report triggers ("Local" by default).
	Timezone string `koanf:"timezone"`

	// StatusAddr enables the status HTTP server when non-empty, e.g. ":9080".
	StatusAddr          string `koanf:"status_addr"`
	MaxLeaderboardLimit int    `koanf:"max_leaderboard_limit" validate:"min=1"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Source:               SourceFTP,
		FTPPort:              34231,
		FTPTimeoutSec:        30,
		LogPath:              "/Lua/discord_events.log",
		WebhookUsername:      "Zomboid Stats Tracker",
		WebhookIntervalMS:    2000,
		WebhookBurst:         5,
		NotifyQueueSize:      256,
		PollIntervalSec:      10,
		SkillNotifications:   "milestones",
		SkillMilestones:      []int{5, 10},
		StateFile:            "player_stats.json",
		SaveEveryCycles:      20,
		MaxConsecutiveErrors: 5,
		BackoffMultiplier:    3,
		DedupeSize:           1000,
		WeeklySkills:         []string{"Aiming", "Fitness", "Strength", "Cooking", "Mechanics"},
		Timezone:             "Local",
		MaxLeaderboardLimit:  100,
	}
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// FTPTimeout returns the FTP connect/read timeout as a duration.
func (c *Config) FTPTimeout() time.Duration {
	return time.Duration(c.FTPTimeoutSec) * time.Second
}

// WebhookInterval returns the minimum spacing between webhook posts.
func (c *Config) WebhookInterval() time.Duration {
	return time.Duration(c.WebhookIntervalMS) * time.Millisecond
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
