package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pzwatch/internal/testevents"
)

// Default configuration constants.
const (
	defaultPlayers    = 8
	defaultEvents     = 500
	defaultDuplicates = 0.1
	defaultBatch      = 20
	defaultSettle     = 30 * time.Second
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 30 * time.Minute
)

func main() {
	var (
		logPath    = flag.String("log-path", "discord_events.log", "Event log to append to")
		players    = flag.Int("players", defaultPlayers, "Number of simulated survivors")
		numEvents  = flag.Int("events", defaultEvents, "Number of events to generate")
		duplicates = flag.Float64("duplicates", defaultDuplicates, "Fraction of lines written twice")
		partial    = flag.Bool("partial", true, "Split some lines across writes")
		batch      = flag.Int("batch", defaultBatch, "Lines per write")
		interval   = flag.Duration("interval", 0, "Pause between writes")
		statusURL  = flag.String("status", "", "Tracker status URL; enables verification")
		settle     = flag.Duration("settle", defaultSettle, "Wait before verifying")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Uint64("seed", 0, "Random seed (0 = time based)")
		outputFile = flag.String("output", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return
	}

	if err := testevents.SetupLogging(*outputFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &testevents.Config{
		LogPath:    *logPath,
		Players:    *players,
		NumEvents:  *numEvents,
		Duplicates: *duplicates,
		Partial:    *partial,
		Interval:   *interval,
		BatchSize:  *batch,
		StatusURL:  *statusURL,
		Settle:     *settle,
		Timeout:    *timeout,
		Seed:       *seed,
		Verbose:    *verbose,
	}
	if err := testevents.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
