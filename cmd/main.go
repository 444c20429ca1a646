package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pzwatch/internal/adapters/http/api"
	"github.com/okian/pzwatch/internal/adapters/http/swagger"
	"github.com/okian/pzwatch/internal/adapters/mq/queue"
	"github.com/okian/pzwatch/internal/adapters/mq/worker"
	"github.com/okian/pzwatch/internal/adapters/notify"
	"github.com/okian/pzwatch/internal/adapters/remote"
	"github.com/okian/pzwatch/internal/adapters/repository"
	app "github.com/okian/pzwatch/internal/app"
	"github.com/okian/pzwatch/internal/config"
	"github.com/okian/pzwatch/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	webhookTimeout    = 10 * time.Second
	drainTimeout      = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "tracker stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the tracker from cfg and blocks until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	// Notifications are delivered off the poll loop, in order.
	pending := queue.NewInMemoryQueue(queue.WithCapacity(cfg.NotifyQueueSize))
	notifier := worker.New(pending, newSink(cfg, log), worker.WithLogger(log.Named("notifier")))
	go notifier.Run(context.WithoutCancel(ctx))
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
		defer cancel()
		if err := notifier.Shutdown(drainCtx); err != nil {
			log.Warn(ctx, "undelivered notifications dropped", logger.Error(err))
		}
	}()

	tracker, err := newTracker(cfg, log, pending)
	if err != nil {
		return err
	}
	if err := tracker.Start(ctx); err != nil {
		return err
	}

	if cfg.StatusAddr != "" {
		srv := newStatusServer(cfg, tracker)
		go func() {
			log.Info(ctx, "starting status server", logger.String("addr", cfg.StatusAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(ctx, "status server failed", logger.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error(ctx, "status server shutdown failed", logger.Error(err))
			}
		}()
	}

	log.Info(ctx, "watching event log",
		logger.String("source", cfg.Source),
		logger.String("path", cfg.LogPath),
		logger.Bool("dryRun", cfg.DryRun))
	return tracker.Run(ctx)
}

// newTracker builds the tracker and its adapters from cfg.
func newTracker(cfg *config.Config, log logger.Logger, sink notify.Sink) (*app.Tracker, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%w: timezone: %w", config.ErrInvalidConfig, err)
	}

	reader := remote.NewTailReader(newDialer(cfg),
		remote.WithTimeout(cfg.FTPTimeout()),
		remote.WithLogger(log.Named("tail")))
	store := repository.NewFileStore(cfg.StateFile,
		repository.WithLogger(log.Named("repository")))

	return app.New(reader, store, sink,
		app.WithLogger(log.Named("tracker")),
		app.WithLogID(cfg.LogPath),
		app.WithPollInterval(cfg.PollInterval()),
		app.WithBackoff(cfg.MaxConsecutiveErrors, cfg.BackoffMultiplier),
		app.WithSaveEvery(cfg.SaveEveryCycles),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithSkillPolicy(app.SkillPolicy(cfg.SkillNotifications), cfg.SkillMilestones),
		app.WithWeeklySkills(cfg.WeeklySkills),
		app.WithLocation(loc),
	), nil
}

func newDialer(cfg *config.Config) remote.Dialer {
	if cfg.Source == config.SourceFile {
		return remote.FileDialer{}
	}
	return remote.FTPDialer{
		Host:     cfg.FTPHost,
		Port:     cfg.FTPPort,
		User:     cfg.FTPUser,
		Password: cfg.FTPPass,
		Timeout:  cfg.FTPTimeout(),
	}
}

func newSink(cfg *config.Config, log logger.Logger) notify.Sink {
	if cfg.DryRun {
		return notify.NewLogSink(log.Named("notify"))
	}
	return notify.NewDiscordSink(cfg.WebhookURL,
		notify.WithHTTPClient(&http.Client{Timeout: webhookTimeout}),
		notify.WithUsername(cfg.WebhookUsername),
		notify.WithRateLimit(cfg.WebhookInterval(), cfg.WebhookBurst),
		notify.WithDiscordLogger(log.Named("discord")))
}

func newStatusServer(cfg *config.Config, tracker *app.Tracker) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(tracker, cfg.MaxLeaderboardLimit).Register(mux)
	swagger.Register(mux)
	return &http.Server{
		Addr:              cfg.StatusAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
