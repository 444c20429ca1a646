// Package service runs the poll loop: it tails the remote event log, feeds
// new lines through dedup and the router, and persists the resulting state.
package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pzwatch/internal/adapters/notify"
	"github.com/okian/pzwatch/internal/adapters/remote"
	"github.com/okian/pzwatch/internal/adapters/repository"
	"github.com/okian/pzwatch/internal/domain/decoder"
	"github.com/okian/pzwatch/internal/domain/dedupe"
	"github.com/okian/pzwatch/internal/domain/players"
	"github.com/okian/pzwatch/pkg/logger"
	"github.com/okian/pzwatch/pkg/metrics"
)

// Tailer reads appended bytes from a log.
type Tailer interface {
	Tail(ctx context.Context, logID string, from uint64) (remote.Chunk, error)
}

// Tracker owns all mutable state and is driven by a single goroutine.
// Only View is safe to call concurrently.
type Tracker struct {
	reader Tailer
	repo   repository.Store
	sink   notify.Sink

	store   *players.Store
	window  *dedupe.Window
	router  *Router
	cursors map[string]uint64
	markers map[string]string
	// stateDirty covers cursors and markers; players track their own.
	stateDirty bool

	// Configuration
	logID             string
	pollInterval      time.Duration
	maxErrors         int
	backoffMultiplier int
	saveEvery         int
	dedupeSize        int
	skillPolicy       SkillPolicy
	skillMilestones   []int
	weeklySkills      []string
	location          *time.Location
	clock             func() time.Time
	sleep             func(ctx context.Context, d time.Duration) error

	// Loop state
	cycles   uint64
	failures int
	stats    Stats
	view     atomic.Pointer[View]

	logger logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithLogID sets the remote log path used as the cursor key.
func WithLogID(id string) Option {
	return func(t *Tracker) {
		if id != "" {
			t.logID = id
		}
	}
}

// WithPollInterval sets the sleep between cycles.
func WithPollInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.pollInterval = d
		}
	}
}

// WithBackoff sets how many consecutive failed cycles trigger a long sleep
// of poll interval times multiplier.
func WithBackoff(maxErrors, multiplier int) Option {
	return func(t *Tracker) {
		if maxErrors > 0 {
			t.maxErrors = maxErrors
		}
		if multiplier > 0 {
			t.backoffMultiplier = multiplier
		}
	}
}

// WithSaveEvery sets how many successful cycles pass between saves.
func WithSaveEvery(cycles int) Option {
	return func(t *Tracker) {
		if cycles > 0 {
			t.saveEvery = cycles
		}
	}
}

// WithDedupeSize sets the dedup window capacity.
func WithDedupeSize(size int) Option {
	return func(t *Tracker) {
		if size > 0 {
			t.dedupeSize = size
		}
	}
}

// WithSkillPolicy sets which level-ups are announced.
func WithSkillPolicy(policy SkillPolicy, milestones []int) Option {
	return func(t *Tracker) {
		if policy != "" {
			t.skillPolicy = policy
		}
		if milestones != nil {
			t.skillMilestones = milestones
		}
	}
}

// WithWeeklySkills sets the skills covered by weekly boards.
func WithWeeklySkills(skills []string) Option {
	return func(t *Tracker) {
		if skills != nil {
			t.weeklySkills = skills
		}
	}
}

// WithLocation sets the time zone for report triggers.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.location = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.clock = now
		}
	}
}

// WithSleep replaces the interruptible sleep between cycles.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(t *Tracker) {
		if sleep != nil {
			t.sleep = sleep
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New constructs a Tracker. Call Start before Run or RunCycle.
func New(reader Tailer, repo repository.Store, sink notify.Sink, opts ...Option) *Tracker {
	t := &Tracker{
		reader:            reader,
		repo:              repo,
		sink:              sink,
		logID:             "/Lua/discord_events.log",
		pollInterval:      10 * time.Second,
		maxErrors:         5,
		backoffMultiplier: 3,
		saveEvery:         20,
		dedupeSize:        dedupe.DefaultCapacity,
		skillPolicy:       SkillMilestones,
		skillMilestones:   []int{5, 10},
		weeklySkills:      DefaultWeeklySkills,
		location:          time.Local,
		clock:             time.Now,
		sleep:             sleepContext,
		cursors:           map[string]uint64{},
		markers:           map[string]string{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logger.Get().Named("tracker")
	}

	t.store = players.NewStore()
	t.window = dedupe.New(dedupe.WithCapacity(t.dedupeSize))
	t.router = NewRouter(t.store, sink, t.skillPolicy, t.skillMilestones, t.clock, t.logger.Named("router"))
	return t
}

// Start loads the saved snapshot. A corrupt snapshot is returned as an
// error so it is never overwritten.
func (t *Tracker) Start(ctx context.Context) error {
	snap, err := t.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	t.store.Restore(snap.Players)
	t.cursors = maps.Clone(snap.Cursors)
	t.markers = maps.Clone(snap.Markers)
	if t.cursors == nil {
		t.cursors = map[string]uint64{}
	}
	if t.markers == nil {
		t.markers = map[string]string{}
	}
	t.stateDirty = false
	t.stats = Stats{StartedAt: t.clock()}

	metrics.UpdateTrackedPlayers(t.store.Len())
	metrics.UpdateCursorOffset(t.logID, t.cursors[t.logID])
	t.logger.Info(ctx, "tracker started",
		logger.String("log", t.logID),
		logger.Uint64("offset", t.cursors[t.logID]),
		logger.Int("players", t.store.Len()),
		logger.Duration("pollInterval", t.pollInterval),
		logger.String("skillNotifications", string(t.skillPolicy)))
	t.publish()
	return nil
}

// Run polls until ctx is cancelled, then saves unsaved state.
func (t *Tracker) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		wait := t.pollInterval

		if err := t.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			t.failures++
			t.stats.FailedCycles++
			t.stats.LastError = err.Error()
			t.logger.Error(ctx, "poll cycle failed",
				logger.Int("consecutiveFailures", t.failures),
				logger.Error(err))
			if t.failures >= t.maxErrors {
				wait = t.pollInterval * time.Duration(t.backoffMultiplier)
				t.logger.Warn(ctx, "too many consecutive failures, backing off",
					logger.Int("failures", t.failures),
					logger.Duration("wait", wait))
				t.failures = 0
			}
		} else {
			t.failures = 0
			t.checkCalendar(ctx)
			t.cycles++
			if t.cycles%uint64(t.saveEvery) == 0 && t.Dirty() {
				_ = t.Save(ctx)
			}
		}
		metrics.UpdateConsecutiveFailures(t.failures)
		t.publish()

		if err := t.sleep(ctx, wait); err != nil {
			break
		}
	}

	t.logger.Info(context.Background(), "stopping tracker")
	return t.Flush(context.WithoutCancel(ctx))
}

// RunCycle performs one tail-and-process pass. Only transport failures are
// returned; bad lines are counted and skipped.
func (t *Tracker) RunCycle(ctx context.Context) error {
	start := time.Now()
	cycle := uuid.NewString()
	from := t.cursors[t.logID]

	chunk, err := t.reader.Tail(ctx, t.logID, from)
	if err != nil {
		metrics.RecordCycle(metrics.ResultFailure, time.Since(start))
		return err
	}
	t.stats.LastCycleAt = t.clock()

	switch {
	case chunk.Missing:
		t.logger.Debug(ctx, "log not found yet", logger.String("cycle", cycle), logger.String("log", t.logID))
	case chunk.Text != "":
		t.process(ctx, cycle, chunk.Text)
	}
	if chunk.Rotated {
		t.stats.Rotations++
	}

	if chunk.Offset != from {
		t.cursors[t.logID] = chunk.Offset
		t.stateDirty = true
		metrics.UpdateCursorOffset(t.logID, chunk.Offset)
		t.logger.Debug(ctx, "cursor advanced",
			logger.String("cycle", cycle),
			logger.Uint64("from", from),
			logger.Uint64("offset", chunk.Offset),
			logger.Bool("rotated", chunk.Rotated))
	}

	metrics.RecordCycle(metrics.ResultSuccess, time.Since(start))
	metrics.UpdateTrackedPlayers(t.store.Len())
	t.publish()
	return nil
}

// process feeds each line through decode, dedup and dispatch.
func (t *Tracker) process(ctx context.Context, cycle, text string) {
	for _, line := range decoder.Lines(text) {
		ev, err := decoder.Decode(line)
		if err != nil {
			reason := "malformed"
			if errors.Is(err, decoder.ErrUnknownKind) {
				reason = "unknown_kind"
			}
			t.stats.DecodeErrors++
			metrics.RecordDecodeError(reason)
			t.logger.Warn(ctx, "skipping undecodable line",
				logger.String("cycle", cycle),
				logger.String("line", decoder.Preview(line, 100)),
				logger.Error(err))
			continue
		}

		id := decoder.Identity(ev)
		if t.window.Seen(id) {
			t.stats.EventsDuplicate++
			metrics.RecordEventDuplicate()
			t.logger.Debug(ctx, "duplicate event skipped", logger.String("cycle", cycle), logger.String("id", id))
			continue
		}

		if err := t.router.Dispatch(ctx, ev); err != nil {
			t.stats.HandlerErrors++
			metrics.RecordHandlerError(string(ev.Kind))
			t.logger.Warn(ctx, "event rejected",
				logger.String("cycle", cycle),
				logger.String("kind", string(ev.Kind)),
				logger.String("id", id),
				logger.Error(err))
			continue
		}

		t.window.Record(id)
		t.stats.EventsProcessed++
		metrics.RecordEventProcessed(string(ev.Kind))
	}
}

// checkCalendar fires scheduled reports whose slot has not been marked yet.
func (t *Tracker) checkCalendar(ctx context.Context) {
	if t.store.Len() == 0 {
		return
	}
	now := t.clock().In(t.location)

	fired := false
	for _, r := range dueReports(now, t.weeklySkills) {
		if t.markers[r.schedule] == r.slot {
			continue
		}
		t.logger.Info(ctx, "sending scheduled leaderboards",
			logger.String("schedule", r.schedule),
			logger.String("slot", r.slot))
		for _, b := range r.boards {
			t.router.SendLeaderboard(ctx, b)
		}
		t.markers[r.schedule] = r.slot
		t.stateDirty = true
		t.stats.ReportsSent++
		metrics.RecordReportSent(r.schedule)
		fired = true
	}

	// Persist the marker now so a restart inside the trigger minute does not
	// send the same report again.
	if fired {
		_ = t.Save(ctx)
	}
}

// Dirty reports whether there is state not yet saved.
func (t *Tracker) Dirty() bool {
	return t.stateDirty || t.store.Dirty()
}

// Save writes the full snapshot. On failure the state stays dirty and the
// next scheduled save retries.
func (t *Tracker) Save(ctx context.Context) error {
	snap := repository.Snapshot{
		Players: t.store.Entries(),
		Cursors: maps.Clone(t.cursors),
		Markers: maps.Clone(t.markers),
	}
	if err := t.repo.Save(ctx, snap); err != nil {
		t.logger.Error(ctx, "saving state failed", logger.Error(err))
		return err
	}
	t.store.MarkClean()
	t.stateDirty = false
	t.stats.Saves++
	t.logger.Info(ctx, "state saved", logger.Int("players", len(snap.Players)))
	return nil
}

// Flush saves if there are unsaved changes.
func (t *Tracker) Flush(ctx context.Context) error {
	if !t.Dirty() {
		return nil
	}
	return t.Save(ctx)
}

// publish swaps in a fresh read-only view.
func (t *Tracker) publish() {
	stats := t.stats
	stats.ConsecutiveFailures = t.failures
	stats.Cycles = t.cycles
	stats.TrackedPlayers = t.store.Len()
	stats.DedupeEntries = t.window.Len()
	stats.UnsavedChanges = t.Dirty()

	t.view.Store(&View{
		Players:   t.store.Entries(),
		Cursors:   maps.Clone(t.cursors),
		Published: t.clock(),
		Stats:     stats,
	})
}

// View returns the latest published view. Safe for concurrent use.
func (t *Tracker) View() *View {
	if v := t.view.Load(); v != nil {
		return v
	}
	return &View{Cursors: map[string]uint64{}}
}

// GetStats returns tracker statistics for monitoring.
func (t *Tracker) GetStats() Stats {
	return t.View().Stats
}

// Store exposes the player store to tests and tools on the loop goroutine.
func (t *Tracker) Store() *players.Store {
	return t.store
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
