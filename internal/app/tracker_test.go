package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/pzwatch/internal/adapters/repository"
	"github.com/okian/pzwatch/internal/domain/players"
	. "github.com/smartystreets/goconvey/convey"
)

const deathLine = `{"type":"death","timestamp":"1700000000","data":{"username":"Rick","hours_survived":10,"skills":"Aiming:3"}}`

// sleepSteps returns a sleep that records waits and cancels after n calls.
func sleepSteps(n int, cancel context.CancelFunc, waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		if len(*waits) >= n {
			cancel()
			return ctx.Err()
		}
		return nil
	}
}

func TestTrackerCycle(t *testing.T) {
	Convey("Given a started tracker", t, func() {
		ctx := context.Background()
		log := &fakeLog{}
		repo := &memRepo{snap: repository.Empty()}
		sink := &recordingSink{}
		tr := New(log, repo, sink, WithLogID("events.log"), WithClock(fixedClock(time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC))))
		So(tr.Start(ctx), ShouldBeNil)

		Convey("When the same death line is read in two cycles", func() {
			log.append(deathLine)
			So(tr.RunCycle(ctx), ShouldBeNil)
			log.append(deathLine)
			So(tr.RunCycle(ctx), ShouldBeNil)

			Convey("Then the player should be mutated and notified once", func() {
				rec, ok := tr.Store().Get("Rick")
				So(ok, ShouldBeTrue)
				So(rec.TotalDeaths, ShouldEqual, 1)
				So(sink.count(), ShouldEqual, 1)
				So(tr.GetStats().EventsProcessed, ShouldEqual, 1)
				So(tr.GetStats().EventsDuplicate, ShouldEqual, 1)
			})

			Convey("Then the cursor should sit at the end of the log", func() {
				So(tr.View().Cursors["events.log"], ShouldEqual, uint64(len(log.content)))
			})
		})

		Convey("When a cycle mixes bad and good lines", func() {
			log.append(
				`not json`,
				`{"type":"earthquake","timestamp":"1"}`,
				`{"type":"death","timestamp":"2","data":{}}`,
				`{"type":"sunrise","timestamp":"3","data":{"game_day":1}}`,
			)
			err := tr.RunCycle(ctx)

			Convey("Then the bad lines should be counted and skipped", func() {
				So(err, ShouldBeNil)
				stats := tr.GetStats()
				So(stats.DecodeErrors, ShouldEqual, 2)
				So(stats.HandlerErrors, ShouldEqual, 1)
				So(stats.EventsProcessed, ShouldEqual, 1)
				So(sink.count(), ShouldEqual, 1)
			})

			Convey("Then a corrected retry of the rejected event should still be accepted", func() {
				log.append(`{"type":"death","timestamp":"2","data":{"username":"Rick"}}`)
				So(tr.RunCycle(ctx), ShouldBeNil)
				So(tr.Store().Len(), ShouldEqual, 1)
			})
		})

		Convey("When the log does not exist yet", func() {
			log.missing = true
			err := tr.RunCycle(ctx)

			Convey("Then the cycle should succeed without moving the cursor", func() {
				So(err, ShouldBeNil)
				So(tr.Dirty(), ShouldBeFalse)
			})
		})

		Convey("When the transport fails", func() {
			log.err = errTransport

			Convey("Then the error should be returned", func() {
				So(errors.Is(tr.RunCycle(ctx), errTransport), ShouldBeTrue)
			})
		})

		Convey("When the log is rotated", func() {
			log.append(deathLine)
			So(tr.RunCycle(ctx), ShouldBeNil)
			log.content = `{"type":"sunset","timestamp":"9","data":{"game_day":0}}` + "\n"
			So(tr.RunCycle(ctx), ShouldBeNil)

			Convey("Then reading should restart from the beginning", func() {
				So(tr.GetStats().Rotations, ShouldEqual, 1)
				So(tr.View().Cursors["events.log"], ShouldEqual, uint64(len(log.content)))
				So(sink.count(), ShouldEqual, 2)
			})
		})
	})
}

func TestTrackerStart(t *testing.T) {
	Convey("Given a saved snapshot", t, func() {
		ctx := context.Background()
		repo := &memRepo{snap: repository.Snapshot{
			Players: []players.Entry{{Subject: "Ann", Record: players.Record{TotalDeaths: 2}}},
			Cursors: map[string]uint64{"events.log": 42},
		}}
		log := &fakeLog{}
		tr := New(log, repo, &recordingSink{}, WithLogID("events.log"))

		Convey("When the tracker starts", func() {
			So(tr.Start(ctx), ShouldBeNil)

			Convey("Then players and cursor should be restored", func() {
				rec, ok := tr.Store().Get("Ann")
				So(ok, ShouldBeTrue)
				So(rec.TotalDeaths, ShouldEqual, 2)
				So(tr.View().Cursors["events.log"], ShouldEqual, 42)
				So(tr.Dirty(), ShouldBeFalse)
			})
		})

		Convey("When the snapshot is corrupt", func() {
			repo.loadErr = repository.ErrCorruptSnapshot

			Convey("Then start should fail", func() {
				So(errors.Is(tr.Start(ctx), repository.ErrCorruptSnapshot), ShouldBeTrue)
			})
		})
	})
}

func TestTrackerRun(t *testing.T) {
	Convey("Given a tracker with a failing transport", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var waits []time.Duration
		log := &fakeLog{err: errTransport}
		repo := &memRepo{snap: repository.Empty()}
		tr := New(log, repo, &recordingSink{},
			WithPollInterval(time.Second),
			WithBackoff(3, 4),
			WithSleep(sleepSteps(4, cancel, &waits)))
		So(tr.Start(ctx), ShouldBeNil)

		Convey("When the loop runs", func() {
			So(tr.Run(ctx), ShouldBeNil)

			Convey("Then the third consecutive failure should trigger the long wait", func() {
				So(waits, ShouldResemble, []time.Duration{time.Second, time.Second, 4 * time.Second, time.Second})
				So(tr.GetStats().FailedCycles, ShouldEqual, 4)
				So(tr.GetStats().ConsecutiveFailures, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a tracker with new events", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		var waits []time.Duration
		log := &fakeLog{}
		log.append(deathLine)
		repo := &memRepo{snap: repository.Empty()}
		tr := New(log, repo, &recordingSink{},
			WithLogID("events.log"),
			WithSaveEvery(2),
			WithClock(fixedClock(time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC))),
			WithSleep(sleepSteps(5, cancel, &waits)))
		So(tr.Start(ctx), ShouldBeNil)

		Convey("When the loop runs and is cancelled", func() {
			So(tr.Run(ctx), ShouldBeNil)

			Convey("Then state should be saved once and nothing left unsaved", func() {
				So(repo.saves, ShouldEqual, 1)
				So(repo.snap.Cursors["events.log"], ShouldEqual, uint64(len(log.content)))
				So(repo.snap.Players, ShouldHaveLength, 1)
				So(tr.Dirty(), ShouldBeFalse)
			})
		})
	})

	Convey("Given a tracker with a failing repository", t, func() {
		ctx := context.Background()
		log := &fakeLog{}
		log.append(deathLine)
		repo := &memRepo{snap: repository.Empty()}
		tr := New(log, repo, &recordingSink{})
		So(tr.Start(ctx), ShouldBeNil)
		So(tr.RunCycle(ctx), ShouldBeNil)
		repo.saveErr = errors.New("disk full")

		Convey("When flushing", func() {
			err := tr.Flush(ctx)

			Convey("Then the state should stay dirty", func() {
				So(err, ShouldNotBeNil)
				So(tr.Dirty(), ShouldBeTrue)
			})
		})
	})
}

func TestTrackerCalendar(t *testing.T) {
	Convey("Given a tracker with players at midnight on a Sunday", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 3, 2, 0, 0, 15, 0, time.UTC)
		log := &fakeLog{}
		log.append(
			`{"type":"death","timestamp":"1","data":{"username":"Rick","hours_survived":10,"skills":"Aiming:3,Cooking:2"}}`,
		)
		repo := &memRepo{snap: repository.Empty()}
		sink := &recordingSink{}
		tr := New(log, repo, sink,
			WithLocation(time.UTC),
			WithWeeklySkills([]string{"Aiming", "Cooking", "Fishing"}),
			WithClock(func() time.Time { return now }))
		So(tr.Start(ctx), ShouldBeNil)
		So(tr.RunCycle(ctx), ShouldBeNil)
		sink.msgs = nil

		Convey("When the calendar is checked twice in the same minute", func() {
			tr.checkCalendar(ctx)
			first := sink.count()
			tr.checkCalendar(ctx)

			Convey("Then reports should fire once", func() {
				// daily: death, survival, hours; weekly: Aiming, Cooking
				So(first, ShouldEqual, 5)
				So(sink.count(), ShouldEqual, 5)
				So(tr.stats.ReportsSent, ShouldEqual, 2)
			})

			Convey("Then the markers should be saved straight away", func() {
				So(repo.saves, ShouldEqual, 1)
				So(repo.snap.Markers, ShouldResemble, map[string]string{
					"daily":  "daily:2025-03-02:00",
					"weekly": "weekly:2025-03-02",
				})
			})
		})

		Convey("When a restarted tracker checks the same minute", func() {
			tr.checkCalendar(ctx)
			sink.msgs = nil
			again := New(log, repo, sink, WithLocation(time.UTC), WithClock(func() time.Time { return now }))
			So(again.Start(ctx), ShouldBeNil)
			again.checkCalendar(ctx)

			Convey("Then nothing should be sent again", func() {
				So(sink.count(), ShouldEqual, 0)
			})
		})

		Convey("When it is not a trigger minute", func() {
			now = now.Add(time.Minute)
			tr.checkCalendar(ctx)

			Convey("Then nothing should be sent", func() {
				So(sink.count(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a tracker with no players", t, func() {
		ctx := context.Background()
		sink := &recordingSink{}
		tr := New(&fakeLog{}, &memRepo{snap: repository.Empty()}, sink,
			WithLocation(time.UTC),
			WithClock(fixedClock(time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC))))
		So(tr.Start(ctx), ShouldBeNil)

		Convey("When a report is due", func() {
			tr.checkCalendar(ctx)

			Convey("Then nothing should be sent", func() {
				So(sink.count(), ShouldEqual, 0)
			})
		})
	})
}

func TestDueReports(t *testing.T) {
	Convey("Given trigger times", t, func() {
		Convey("When it is noon on a weekday", func() {
			due := dueReports(time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC), DefaultWeeklySkills)

			Convey("Then only the daily report should be due", func() {
				So(due, ShouldHaveLength, 1)
				So(due[0].schedule, ShouldEqual, scheduleDaily)
				So(due[0].boards, ShouldHaveLength, 3)
			})
		})

		Convey("When it is Sunday midnight", func() {
			due := dueReports(time.Date(2025, 3, 2, 0, 0, 59, 0, time.UTC), DefaultWeeklySkills)

			Convey("Then daily and weekly reports should be due", func() {
				So(due, ShouldHaveLength, 2)
				So(due[1].schedule, ShouldEqual, scheduleWeekly)
				So(due[1].boards, ShouldHaveLength, len(DefaultWeeklySkills))
			})
		})

		Convey("When it is Sunday noon", func() {
			due := dueReports(time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC), DefaultWeeklySkills)

			Convey("Then only the daily report should be due", func() {
				So(due, ShouldHaveLength, 1)
			})
		})

		Convey("When the minute is not zero", func() {
			So(dueReports(time.Date(2025, 3, 2, 0, 1, 0, 0, time.UTC), DefaultWeeklySkills), ShouldBeEmpty)
		})
	})
}
