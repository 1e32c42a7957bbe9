package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/streakr/internal/engine"
)

// ErrAggregateUnavailable is returned by the aggregate reads while they are
// disabled.
var ErrAggregateUnavailable = fmt.Errorf("store: aggregate reads disabled: %w", engine.ErrUnavailable)

// StreakAggregate reads the streak counters and today's activity in one
// query. A user with no streak record gets the zeroed defaults.
func (s *Store) StreakAggregate(ctx context.Context, userID string, today time.Time) (*engine.StreakAggregate, error) {
	if !s.aggregates.Load() {
		return nil, ErrAggregateUnavailable
	}

	a := &engine.StreakAggregate{}
	var lastActive sql.NullString
	var goalReached int
	err := s.db.QueryRowContext(ctx, `
		SELECT s.streak_count, s.max_streak, s.last_active_date, s.daily_goal,
		       COALESCE(a.goal_reached, 0), COALESCE(a.tasks_completed, 0)
		FROM user_streaks s
		LEFT JOIN daily_activity a ON a.user_id = s.user_id AND a.date = ?
		WHERE s.user_id = ?`,
		formatDate(today), userID,
	).Scan(&a.CurrentStreak, &a.MaxStreak, &lastActive, &a.DailyGoal, &goalReached, &a.TasksCompletedToday)
	if errors.Is(err, sql.ErrNoRows) {
		return &engine.StreakAggregate{DailyGoal: 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("streak aggregate: %w", err)
	}
	a.IsGoalReached = goalReached == 1
	if a.LastActiveDate, err = parseNullDate(lastActive); err != nil {
		return nil, fmt.Errorf("streak aggregate: parse last_active_date: %w", err)
	}
	return a, nil
}

// UserCounters returns the persisted streak record, or nil if the user has
// none.
func (s *Store) UserCounters(ctx context.Context, userID string) (*engine.UserCounters, error) {
	c := &engine.UserCounters{}
	var lastActive sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT streak_count, max_streak, last_active_date, daily_goal FROM user_streaks WHERE user_id = ?`, userID,
	).Scan(&c.StreakCount, &c.MaxStreak, &lastActive, &c.DailyGoal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user counters %q: %w", userID, err)
	}
	if c.LastActiveDate, err = parseNullDate(lastActive); err != nil {
		return nil, fmt.Errorf("get user counters %q: parse last_active_date: %w", userID, err)
	}
	return c, nil
}

// SetDailyGoal stores a new daily goal, creating the streak record if the
// user has none yet.
func (s *Store) SetDailyGoal(ctx context.Context, userID string, goal int) error {
	if goal < 1 {
		return fmt.Errorf("set daily goal: goal must be at least 1, got %d", goal)
	}
	now := s.stamp()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_streaks (user_id, daily_goal, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET daily_goal = excluded.daily_goal, updated_at = excluded.updated_at`,
		userID, goal, now,
	)
	if err != nil {
		return fmt.Errorf("set daily goal: %w", err)
	}
	return nil
}
