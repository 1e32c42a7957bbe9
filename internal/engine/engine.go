// Package engine answers streak, activity-calendar and achievement questions
// for a user. Reads are served from per-kind TTL caches; on a miss the
// engine tries the backend's optimized aggregate call first and composes
// the answer from discrete reads if that fails. Writes persist and then
// invalidate the cache entries they affect.
//
// All exported read operations are fail-soft: they never return an error
// to the caller. Failures are logged and reported through Result.Source.
package engine

import (
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sadopc/streakr/internal/clock"
	"github.com/sadopc/streakr/internal/ttlcache"
)

const (
	DefaultStreakTTL       = 5 * time.Minute
	DefaultActivityTTL     = 15 * time.Minute
	DefaultAchievementsTTL = 30 * time.Minute

	// historyDays is the trailing window of goal-reached dates the
	// fallback streak path reads, today included.
	historyDays = 30
)

// Engine is safe for concurrent use.
type Engine struct {
	backend Backend
	catalog Catalog
	clock   clock.Clock
	loc     *time.Location
	logger  *slog.Logger

	streaks      *ttlcache.Cache[*StreakSnapshot]
	activity     *ttlcache.Cache[[]DailyActivityRecord]
	achievements *ttlcache.Cache[[]Achievement]

	// flight is nil unless de-duplication of concurrent misses is enabled.
	flight *singleflight.Group
}

type options struct {
	clock           clock.Clock
	loc             *time.Location
	logger          *slog.Logger
	catalog         Catalog
	streakTTL       time.Duration
	activityTTL     time.Duration
	achievementsTTL time.Duration
	dedupe          bool
}

type Option func(*options)

func WithClock(c clock.Clock) Option { return func(o *options) { o.clock = c } }

// WithLocation sets the time zone that decides where "today" begins.
func WithLocation(loc *time.Location) Option { return func(o *options) { o.loc = loc } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithCatalog replaces the achievement catalog used when the backend has
// no optimized achievement call.
func WithCatalog(c Catalog) Option { return func(o *options) { o.catalog = c } }

// WithTTLs overrides the cache lifetimes. Zero values keep the default.
func WithTTLs(streak, activity, achievements time.Duration) Option {
	return func(o *options) {
		if streak > 0 {
			o.streakTTL = streak
		}
		if activity > 0 {
			o.activityTTL = activity
		}
		if achievements > 0 {
			o.achievementsTTL = achievements
		}
	}
}

// WithDedupe collapses concurrent cache misses for the same key into one
// backend fetch.
func WithDedupe(enabled bool) Option { return func(o *options) { o.dedupe = enabled } }

// New builds an engine over backend with fresh, empty caches.
func New(backend Backend, opts ...Option) *Engine {
	o := options{
		clock:           clock.Real(),
		loc:             time.Local,
		catalog:         DefaultCatalog(),
		streakTTL:       DefaultStreakTTL,
		activityTTL:     DefaultActivityTTL,
		achievementsTTL: DefaultAchievementsTTL,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	e := &Engine{
		backend:      backend,
		catalog:      o.catalog,
		clock:        o.clock,
		loc:          o.loc,
		logger:       o.logger,
		streaks:      ttlcache.New[*StreakSnapshot](o.streakTTL, o.clock),
		activity:     ttlcache.New[[]DailyActivityRecord](o.activityTTL, o.clock),
		achievements: ttlcache.New[[]Achievement](o.achievementsTTL, o.clock),
	}
	if o.dedupe {
		e.flight = &singleflight.Group{}
	}
	return e
}

// ClearAllCaches drops every cached entry of every kind.
func (e *Engine) ClearAllCaches() {
	e.streaks.InvalidateAll()
	e.activity.InvalidateAll()
	e.achievements.InvalidateAll()
}

// InvalidateUser drops everything cached for userID. Call it after the
// store's streak state changes underneath the engine, e.g. after a task
// completion is recorded.
func (e *Engine) InvalidateUser(userID string) {
	e.streaks.Invalidate(streakKey(userID))
	e.achievements.Invalidate(achievementsKey(userID))
	// May also catch a user whose id extends this one; harmless.
	e.activity.InvalidatePrefix(activityPrefix(userID))
}

// Location returns the engine's time zone.
func (e *Engine) Location() *time.Location { return e.loc }

// Today returns the current civil date in the engine's time zone.
func (e *Engine) Today() time.Time { return civil(e.clock.Now().In(e.loc)) }

func (e *Engine) do(key string, fn func() (any, error)) (any, error) {
	if e.flight == nil {
		return fn()
	}
	v, err, _ := e.flight.Do(key, fn)
	return v, err
}

func streakKey(userID string) string       { return "streak_" + userID }
func achievementsKey(userID string) string { return "achievements_" + userID }
func activityPrefix(userID string) string  { return "activity_" + userID + "_" }

func activityKey(userID string, year int, month time.Month) string {
	return activityPrefix(userID) + time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006_01")
}

// civil truncates t to its calendar date in t's own location.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from earlier to later.
func daysBetween(later, earlier time.Time) int {
	return int(civil(later).Sub(civil(earlier)).Hours() / 24)
}
