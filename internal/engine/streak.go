package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

type streakFetch struct {
	snapshot *StreakSnapshot
	source   Source
}

// GetUserStreak returns the user's streak snapshot. An empty userID is
// rejected without any I/O.
func (e *Engine) GetUserStreak(ctx context.Context, userID string) Result[*StreakSnapshot] {
	if userID == "" {
		return Result[*StreakSnapshot]{Source: SourceNone}
	}

	key := streakKey(userID)
	if s, ok := e.streaks.Get(key); ok {
		return Result[*StreakSnapshot]{Value: s.clone(), Source: SourceCache}
	}

	v, err := e.do(key, func() (any, error) {
		snapshot, source, err := e.fetchStreak(ctx, userID)
		if err != nil {
			return nil, err
		}
		e.streaks.Set(key, snapshot)
		return streakFetch{snapshot: snapshot, source: source}, nil
	})
	if err != nil {
		e.logger.Warn("streak fallback failed", "op", "get_user_streak", "user_id", userID, "error", err)
		return Result[*StreakSnapshot]{Source: SourceFailed, Err: err}
	}
	f := v.(streakFetch)
	return Result[*StreakSnapshot]{Value: f.snapshot.clone(), Source: f.source}
}

// fetchStreak runs the optimized call, then the fallback if needed, and
// derives the risk fields from whichever base fields it obtained.
func (e *Engine) fetchStreak(ctx context.Context, userID string) (*StreakSnapshot, Source, error) {
	today := e.Today()

	if agg, ok := e.backend.(StreakAggregator); ok {
		a, err := agg.StreakAggregate(ctx, userID, today)
		if err == nil && a != nil {
			s := &StreakSnapshot{
				CurrentStreak:       a.CurrentStreak,
				MaxStreak:           a.MaxStreak,
				LastActiveDate:      a.LastActiveDate,
				DailyGoal:           a.DailyGoal,
				IsGoalReached:       a.IsGoalReached,
				TasksCompletedToday: a.TasksCompletedToday,
			}
			derive(s, today)
			return s, SourceAggregate, nil
		}
		e.logAggregateMiss("streak", userID, err)
	}

	s, err := e.fallbackStreak(ctx, userID, today)
	if err != nil {
		return nil, SourceFailed, err
	}
	derive(s, today)
	return s, SourceFallback, nil
}

func (e *Engine) fallbackStreak(ctx context.Context, userID string, today time.Time) (*StreakSnapshot, error) {
	counters, err := e.backend.UserCounters(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read user counters: %w", err)
	}
	if counters == nil {
		return zeroSnapshot(), nil
	}

	s := &StreakSnapshot{
		CurrentStreak:  counters.StreakCount,
		MaxStreak:      counters.MaxStreak,
		LastActiveDate: counters.LastActiveDate,
		DailyGoal:      counters.DailyGoal,
	}

	act, err := e.backend.DailyActivity(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("read today's activity: %w", err)
	}
	if act != nil {
		s.TasksCompletedToday = act.TasksCompleted
		s.IsGoalReached = act.GoalReached
	}

	days, err := e.backend.GoalReachedDates(ctx, userID, today.AddDate(0, 0, -(historyDays-1)), today)
	if err != nil {
		return nil, fmt.Errorf("read goal history: %w", err)
	}
	s.CompletedDays = days
	return s, nil
}

func zeroSnapshot() *StreakSnapshot {
	return &StreakSnapshot{DailyGoal: 1, CompletedDays: []time.Time{}}
}

// derive fills StreakAtRisk and DaysMissed. A snapshot with no last active
// date has never kept a streak and is never at risk.
func derive(s *StreakSnapshot, today time.Time) {
	if s.DailyGoal < 1 {
		s.DailyGoal = 1
	}
	s.StreakAtRisk = false
	s.DaysMissed = 0
	if s.LastActiveDate == nil {
		return
	}

	since := daysBetween(today, *s.LastActiveDate)
	s.StreakAtRisk = !s.IsGoalReached && since == 1
	if !s.StreakAtRisk && since > 1 {
		s.DaysMissed = since - 1
	}
}

func (e *Engine) logAggregateMiss(kind, userID string, err error) {
	switch {
	case err == nil:
		e.logger.Debug("aggregate returned no record, using fallback", "kind", kind, "user_id", userID)
	case errors.Is(err, ErrUnavailable):
		e.logger.Debug("aggregate unavailable, using fallback", "kind", kind, "user_id", userID)
	default:
		e.logger.Debug("aggregate failed, using fallback", "kind", kind, "user_id", userID, "error", err)
	}
}

// CheckStreakRisk reports whether a non-zero streak will break at local
// midnight unless the user completes a task first.
func (e *Engine) CheckStreakRisk(ctx context.Context, userID string) StreakRisk {
	r := e.GetUserStreak(ctx, userID)
	if !r.Found() || r.Value.CurrentStreak == 0 || !r.Value.StreakAtRisk {
		return StreakRisk{}
	}

	hours := e.hoursUntilMidnight()
	return StreakRisk{
		AtRisk:         true,
		HoursRemaining: hours,
		Message: fmt.Sprintf("Don't break your %d day streak! Complete a task in the next %d %s.",
			r.Value.CurrentStreak, hours, plural(hours, "hour", "hours")),
	}
}

func (e *Engine) hoursUntilMidnight() int {
	now := e.clock.Now().In(e.loc)
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, e.loc)
	return int(math.Ceil(midnight.Sub(now).Hours()))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
