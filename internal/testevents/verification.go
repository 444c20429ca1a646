package testevents

import (
	"context"
	"fmt"

	"github.com/okian/pzwatch/pkg/logger"
)

// verify compares the tracker's state with what was written. It assumes the
// tracker started from an empty state and log.
func verify(ctx context.Context, cfg *Config, gen *generator, stats *Stats) error {
	log := logger.Get().Named("verify")
	client := newStatusClient(cfg.StatusURL, cfg.Timeout)

	st, err := client.stats(ctx)
	if err != nil {
		return err
	}
	log.Info(ctx, "tracker stats",
		logger.Uint64("processed", st.EventsProcessed),
		logger.Uint64("duplicates", st.EventsDuplicate),
		logger.Uint64("decodeErrors", st.DecodeErrors),
		logger.Uint64("handlerErrors", st.HandlerErrors),
		logger.Int("players", st.TrackedPlayers))

	if st.DecodeErrors > 0 {
		return fmt.Errorf("tracker reported %d decode errors", st.DecodeErrors)
	}
	if st.EventsProcessed != uint64(stats.EventsGenerated) {
		return fmt.Errorf("processed %d events, wrote %d", st.EventsProcessed, stats.EventsGenerated)
	}
	if st.EventsDuplicate < uint64(stats.Duplicates) {
		return fmt.Errorf("suppressed %d duplicates, wrote %d", st.EventsDuplicate, stats.Duplicates)
	}

	lb, err := client.leaderboard(ctx, "death", len(gen.survivors))
	if err != nil {
		return err
	}
	return verifyDeaths(lb.Rows, gen.deaths)
}

// verifyDeaths checks that the death board matches the expected counts and
// is sorted.
func verifyDeaths(rows []leaderboardRow, want map[string]int) error {
	expected := 0
	for _, n := range want {
		if n > 0 {
			expected++
		}
	}
	if len(rows) != expected {
		return fmt.Errorf("death board has %d rows, want %d", len(rows), expected)
	}
	for i, row := range rows {
		if got := int(row.Value); got != want[row.Player] {
			return fmt.Errorf("%s has %d deaths, want %d", row.Player, got, want[row.Player])
		}
		if i > 0 && row.Value > rows[i-1].Value {
			return fmt.Errorf("death board not sorted at rank %d", row.Rank)
		}
	}
	return nil
}
