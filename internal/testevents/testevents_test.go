package testevents

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/pzwatch/internal/adapters/http/api"
	"github.com/okian/pzwatch/internal/adapters/notify"
	"github.com/okian/pzwatch/internal/adapters/remote"
	"github.com/okian/pzwatch/internal/adapters/repository"
	service "github.com/okian/pzwatch/internal/app"
	"github.com/okian/pzwatch/internal/domain/decoder"
	"github.com/okian/pzwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		gen := newGenerator(3, 42, 1700000000)

		Convey("When producing events", func() {
			var last int64
			first := map[string]string{}
			for i := 0; i < 200; i++ {
				ev := gen.next()
				So(ev.Timestamp, ShouldBeGreaterThan, last)
				last = ev.Timestamp
				if data, ok := ev.Data.(map[string]any); ok {
					if name, ok := data["username"].(string); ok {
						if _, seen := first[name]; !seen {
							first[name] = ev.Type
						}
					}
				}
			}

			Convey("Then every survivor should appear first as a new character", func() {
				for _, kind := range first {
					So(kind, ShouldEqual, "character_created")
				}
			})
		})
	})
}

func TestAppendEvents(t *testing.T) {
	Convey("Given a simulation without a status API", t, func() {
		_ = logger.InitWriter(io.Discard)
		cfg := &Config{
			LogPath:    filepath.Join(t.TempDir(), "logs", "events.log"),
			Players:    4,
			NumEvents:  300,
			Duplicates: 0.3,
			Partial:    true,
			BatchSize:  7,
			Seed:       7,
		}

		Convey("When it runs", func() {
			So(Run(context.Background(), cfg), ShouldBeNil)

			Convey("Then every line in the log should decode", func() {
				b, err := os.ReadFile(cfg.LogPath)
				So(err, ShouldBeNil)
				So(strings.HasSuffix(string(b), "\n"), ShouldBeTrue)
				lines := decoder.Lines(string(b))
				So(len(lines), ShouldBeGreaterThan, 300)
				for _, l := range lines {
					_, err := decoder.Decode(l)
					So(err, ShouldBeNil)
				}
			})
		})

		Convey("When the configuration is empty", func() {
			cfg.Players = 0

			Convey("Then it should be rejected", func() {
				So(Run(context.Background(), cfg), ShouldNotBeNil)
			})
		})
	})
}

func TestVerifyDeaths(t *testing.T) {
	Convey("Given expected death counts", t, func() {
		want := map[string]int{"Rick": 3, "Ann": 1, "Kate": 0}

		Convey("When the board matches", func() {
			rows := []leaderboardRow{{Rank: 1, Player: "Rick", Value: 3}, {Rank: 2, Player: "Ann", Value: 1}}
			So(verifyDeaths(rows, want), ShouldBeNil)
		})

		Convey("When a count differs", func() {
			rows := []leaderboardRow{{Rank: 1, Player: "Rick", Value: 2}, {Rank: 2, Player: "Ann", Value: 1}}
			So(verifyDeaths(rows, want), ShouldNotBeNil)
		})

		Convey("When a player is missing", func() {
			rows := []leaderboardRow{{Rank: 1, Player: "Rick", Value: 3}}
			So(verifyDeaths(rows, want), ShouldNotBeNil)
		})
	})
}

func TestSimulationAgainstTracker(t *testing.T) {
	Convey("Given a tracker tailing a local log with a status API", t, func() {
		_ = logger.InitWriter(io.Discard)
		ctx := context.Background()
		dir := t.TempDir()
		logPath := filepath.Join(dir, "events.log")

		tracker := service.New(
			remote.NewTailReader(remote.FileDialer{}),
			repository.NewFileStore(filepath.Join(dir, "state.json")),
			notify.NewLogSink(nil),
			service.WithLogID(logPath),
		)
		So(tracker.Start(ctx), ShouldBeNil)

		mux := http.NewServeMux()
		api.NewServer(tracker, 100).Register(mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When events with duplicates and split lines are appended and tailed", func() {
			cfg := &Config{
				LogPath:    logPath,
				Players:    6,
				NumEvents:  400,
				Duplicates: 0.2,
				Partial:    true,
				BatchSize:  9,
				Seed:       2024,
				StatusURL:  srv.URL,
				Timeout:    5 * time.Second,
			}
			stats := &Stats{}
			gen := newGenerator(cfg.Players, cfg.Seed, 1700000000)
			So(appendEvents(ctx, cfg, gen, stats), ShouldBeNil)
			So(tracker.RunCycle(ctx), ShouldBeNil)

			Convey("Then the tracker should agree with the generator", func() {
				So(stats.Duplicates, ShouldBeGreaterThan, 0)
				So(verify(ctx, cfg, gen, stats), ShouldBeNil)
			})
		})
	})
}
