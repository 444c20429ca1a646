package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/okian/pzwatch/internal/adapters/notify"
	"github.com/okian/pzwatch/internal/domain/model"
	"github.com/okian/pzwatch/internal/domain/players"
	"github.com/okian/pzwatch/internal/domain/ranking"
	"github.com/okian/pzwatch/internal/domain/render"
	"github.com/okian/pzwatch/pkg/logger"
)

// SkillPolicy controls which level-ups are announced.
type SkillPolicy string

// Level-up notification policies.
const (
	SkillNone       SkillPolicy = "none"
	SkillMilestones SkillPolicy = "milestones"
	SkillAll        SkillPolicy = "all"
)

type handlerFunc func(ctx context.Context, ev model.RawEvent) error

// Router dispatches decoded events to the handler for their kind. Handlers
// validate the payload, mutate the player store, then notify.
type Router struct {
	store      *players.Store
	sink       notify.Sink
	policy     SkillPolicy
	milestones map[int]struct{}
	validate   *validator.Validate
	now        func() time.Time
	logger     logger.Logger
	handlers   map[model.Kind]handlerFunc
}

// NewRouter creates a Router over store. Notifications go to sink.
func NewRouter(store *players.Store, sink notify.Sink, policy SkillPolicy, milestones []int, now func() time.Time, l logger.Logger) *Router {
	if now == nil {
		now = time.Now
	}
	if l == nil {
		l = logger.Get().Named("router")
	}
	r := &Router{
		store:      store,
		sink:       sink,
		policy:     policy,
		milestones: make(map[int]struct{}, len(milestones)),
		validate:   validator.New(),
		now:        now,
		logger:     l,
	}
	for _, m := range milestones {
		r.milestones[m] = struct{}{}
	}
	r.handlers = map[model.Kind]handlerFunc{
		model.KindDeath:              r.handleDeath,
		model.KindCharacterCreated:   r.handleSpawn,
		model.KindLevelUp:            r.handleLevelUp,
		model.KindLogin:              r.handleLogin,
		model.KindSunrise:            r.handleSunrise,
		model.KindSunset:             r.handleSunset,
		model.KindDailySurvivors:     r.handleDailySurvivors,
		model.KindLeaderboardRequest: r.handleLeaderboardRequest,
	}
	return r
}

// Dispatch runs the handler for ev.Kind.
func (r *Router) Dispatch(ctx context.Context, ev model.RawEvent) error {
	h, ok := r.handlers[ev.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
	return h(ctx, ev)
}

// decode unmarshals and validates the payload of ev into T.
func decode[T any](r *Router, ev model.RawEvent) (T, error) {
	var v T
	if err := json.Unmarshal(ev.Payload, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, ev.Kind, err)
	}
	if err := r.validate.Struct(v); err != nil {
		return v, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, ev.Kind, err)
	}
	return v, nil
}

func (r *Router) handleDeath(ctx context.Context, ev model.RawEvent) error {
	d, err := decode[model.DeathData](r, ev)
	if err != nil {
		return err
	}
	rec := r.store.ApplyDeath(d)
	r.logger.Info(ctx, "player died",
		logger.String("player", d.Username),
		logger.String("survived", render.FormatHours(d.HoursSurvived)),
		logger.Int("deaths", int(rec.TotalDeaths)))
	r.notify(ctx, render.Death(d.Username, rec, d, r.now()))
	return nil
}

func (r *Router) handleSpawn(ctx context.Context, ev model.RawEvent) error {
	d, err := decode[model.SpawnData](r, ev)
	if err != nil {
		return err
	}
	now := r.now()
	rec := r.store.ApplyRespawn(d, now)
	r.logger.Info(ctx, "player respawned",
		logger.String("player", d.Username),
		logger.Int("character", int(rec.TotalRespawns)))
	r.notify(ctx, render.Respawn(d.Username, rec, now))
	return nil
}

func (r *Router) handleLevelUp(ctx context.Context, ev model.RawEvent) error {
	d, err := decode[model.LevelUpData](r, ev)
	if err != nil {
		return err
	}
	r.store.ApplyLevelUp(d)
	r.logger.Info(ctx, "player leveled up",
		logger.String("player", d.Username),
		logger.String("skill", d.Skill),
		logger.Int("level", d.Level))
	if r.announceLevel(d.Level) {
		r.notify(ctx, render.LevelUp(d, r.now()))
	}
	return nil
}

func (r *Router) announceLevel(level int) bool {
	switch r.policy {
	case SkillAll:
		return true
	case SkillMilestones:
		_, ok := r.milestones[level]
		return ok
	default:
		return false
	}
}

func (r *Router) handleLogin(ctx context.Context, ev model.RawEvent) error {
	d, err := decode[model.LoginData](r, ev)
	if err != nil {
		return err
	}
	r.store.ApplyLogin(d)
	r.logger.Info(ctx, "player logged in",
		logger.String("player", d.Username),
		logger.String("survived", render.FormatHours(d.HoursSurvived)))
	return nil
}

func (r *Router) handleSunrise(ctx context.Context, ev model.RawEvent) error {
	d, err := decode[model.DaylightData](r, ev)
	if err != nil {
		return err
	}
	r.logger.Info(ctx, "sunrise", logger.Int("day", d.GameDay+1))
	r.notify(ctx, render.Sunrise(d, r.now()))
	return nil
}

func (r *Router) handleSunset(ctx context.Context, ev model.RawEvent) error {
	d, err := decode[model.DaylightData](r, ev)
	if err != nil {
		return err
	}
	r.logger.Info(ctx, "sunset", logger.Int("day", d.GameDay+1))
	r.notify(ctx, render.Sunset(d, r.now()))
	return nil
}

func (r *Router) handleDailySurvivors(ctx context.Context, ev model.RawEvent) error {
	d, err := decode[model.SurvivorsData](r, ev)
	if err != nil {
		return err
	}
	r.logger.Info(ctx, "daily survivor report", logger.Int("survivors", d.SurvivorCount))
	if msg, ok := render.DailySurvivors(d, r.now()); ok {
		r.notify(ctx, msg)
	}
	return nil
}

func (r *Router) handleLeaderboardRequest(ctx context.Context, ev model.RawEvent) error {
	d, err := decode[model.LeaderboardRequest](r, ev)
	if err != nil {
		return err
	}
	board, ok := ranking.ParseBoard(d.Board)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBoard, d.Board)
	}
	r.logger.Info(ctx, "leaderboard requested", logger.String("board", board.String()))
	r.SendLeaderboard(ctx, board)
	return nil
}

// SendLeaderboard renders and sends board. Nothing is sent when no player
// qualifies. It reports whether a message was sent.
func (r *Router) SendLeaderboard(ctx context.Context, board ranking.Board) bool {
	if r.store.Len() == 0 {
		return false
	}
	msg, ok := render.Leaderboard(board, r.store.Entries(), r.now())
	if !ok {
		r.logger.Debug(ctx, "leaderboard empty, not sent", logger.String("board", board.String()))
		return false
	}
	r.notify(ctx, msg)
	return true
}

// notify delivers msg; failures are logged and dropped.
func (r *Router) notify(ctx context.Context, msg model.Message) {
	if r.sink == nil {
		return
	}
	if err := r.sink.Notify(ctx, msg); err != nil {
		r.logger.Warn(ctx, "notification failed",
			logger.String("title", msg.Title),
			logger.Error(err))
	}
}
