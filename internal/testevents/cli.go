package testevents

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/pzwatch/pkg/logger"
)

// SetupLogging initialises the logger, writing to stdout and, when logFile
// is set, to that file as well.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
	}
	if err := logger.InitWriter(w); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`pzwatch event simulator
=======================

Appends synthetic game events to a local event log so a tracker running with
source=file can be exercised end to end.

Usage:
  go run ./cmd/test-events [options]

Options:
  -log-path string    event log to append to (default "discord_events.log")
  -players int        simulated survivors (default 8)
  -events int         events to generate (default 500)
  -duplicates float   fraction of lines written twice (default 0.1)
  -partial            split some lines across writes (default true)
  -batch int          lines per write (default 20)
  -interval duration  pause between writes (default 0)
  -status string      tracker status URL; enables verification
  -settle duration    wait before verifying (default 30s)
  -timeout duration   HTTP request timeout (default 10s)
  -seed uint          random seed (default: time based)
  -output string      also write logs to this file
  -verbose            debug logging
  -help               show this help

Example:
  PZWATCH_SOURCE=file PZWATCH_LOG_PATH=/tmp/pz/events.log PZWATCH_DRY_RUN=true \
  PZWATCH_STATUS_ADDR=:9080 PZWATCH_POLL_INTERVAL_SEC=1 go run ./cmd &
  go run ./cmd/test-events -log-path /tmp/pz/events.log -status http://localhost:9080 -settle 5s
`)
}
