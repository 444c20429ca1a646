package testevents

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/pzwatch/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	logFilePermission   = 0o644
)

// Run appends simulated events to the log and optionally verifies the
// tracker's view through its status API.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Players < 1 || cfg.NumEvents < 1 {
		return errors.New("players and events must be positive")
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("simulate")
	log.Info(ctx, "starting simulation",
		logger.String("log", cfg.LogPath),
		logger.Int("players", cfg.Players),
		logger.Int("events", cfg.NumEvents),
		logger.Float64("duplicates", cfg.Duplicates),
		logger.Bool("partial", cfg.Partial),
		logger.Uint64("seed", seed))

	gen := newGenerator(cfg.Players, seed, time.Now().Unix())
	if err := appendEvents(ctx, cfg, gen, stats); err != nil {
		return fmt.Errorf("append events: %w", err)
	}

	if cfg.StatusURL != "" {
		log.Info(ctx, "waiting for the tracker to catch up", logger.Duration("settle", cfg.Settle))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Settle):
		}
		if err := verify(ctx, cfg, gen, stats); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return nil
}

// appendEvents writes the generated stream in batches. Duplicated lines are
// repeated verbatim; partial writes leave a line unterminated until the
// next batch.
func appendEvents(ctx context.Context, cfg *Config, gen *generator, stats *Stats) error {
	if dir := filepath.Dir(cfg.LogPath); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close log", logger.Error(err))
		}
	}()

	var (
		batch []byte
		carry []byte
	)
	for i := 0; i < cfg.NumEvents; i++ {
		line, err := json.Marshal(gen.next())
		if err != nil {
			return fmt.Errorf("marshal event %d: %w", i, err)
		}
		line = append(line, '\n')
		stats.EventsGenerated++

		batch = append(batch, line...)
		stats.LinesWritten++
		if cfg.Duplicates > 0 && gen.rng.Float64() < cfg.Duplicates {
			batch = append(batch, line...)
			stats.LinesWritten++
			stats.Duplicates++
		}

		if (i+1)%cfg.BatchSize != 0 && i != cfg.NumEvents-1 {
			continue
		}

		out := append(carry, batch...)
		carry, batch = nil, nil
		if cfg.Partial && i != cfg.NumEvents-1 && len(out) > 1 && gen.rng.IntN(2) == 0 {
			cut := len(out) - 1 - gen.rng.IntN(min(len(line)-1, len(out)-1))
			carry = append([]byte(nil), out[cut:]...)
			out = out[:cut]
			stats.PartialWrites++
		}
		if _, err := f.Write(out); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}

		if cfg.Verbose {
			logger.Get().Debug(ctx, "batch written", logger.Int("events", i+1), logger.Int("bytes", len(out)))
		}
		if cfg.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Interval):
			}
		}
	}
	if len(carry) > 0 {
		if _, err := f.Write(carry); err != nil {
			return fmt.Errorf("write tail: %w", err)
		}
	}

	for _, n := range gen.deaths {
		stats.Deaths += n
	}
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var linesPerSecond float64
	if stats.Duration > 0 {
		linesPerSecond = float64(stats.LinesWritten) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("linesWritten", stats.LinesWritten),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("partialWrites", stats.PartialWrites),
		logger.Int("deaths", stats.Deaths),
		logger.Duration("duration", stats.Duration),
		logger.Float64("linesPerSecond", linesPerSecond))
}
