package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/streakr/internal/engine"
)

// DailyActivity returns the user's record for day, or nil if there is none.
func (s *Store) DailyActivity(ctx context.Context, userID string, day time.Time) (*engine.DailyActivityRecord, error) {
	r := &engine.DailyActivityRecord{Date: day}
	var goalReached int
	err := s.db.QueryRowContext(ctx,
		`SELECT tasks_completed, goal_reached FROM daily_activity WHERE user_id = ? AND date = ?`,
		userID, formatDate(day),
	).Scan(&r.TasksCompleted, &goalReached)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily activity: %w", err)
	}
	r.GoalReached = goalReached == 1
	return r, nil
}

// ActivityRange lists the user's daily records with from <= date <= to,
// oldest first.
func (s *Store) ActivityRange(ctx context.Context, userID string, from, to time.Time) ([]engine.DailyActivityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, tasks_completed, goal_reached
		FROM daily_activity
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		userID, formatDate(from), formatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var records []engine.DailyActivityRecord
	for rows.Next() {
		var r engine.DailyActivityRecord
		var day string
		var goalReached int
		if err := rows.Scan(&day, &r.TasksCompleted, &goalReached); err != nil {
			return nil, err
		}
		if r.Date, err = parseDate(day); err != nil {
			return nil, fmt.Errorf("list activity: parse date %q: %w", day, err)
		}
		r.GoalReached = goalReached == 1
		records = append(records, r)
	}
	return records, rows.Err()
}

// GoalReachedDates lists the days in [from, to] on which the user met the
// daily goal, oldest first.
func (s *Store) GoalReachedDates(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date FROM daily_activity
		WHERE user_id = ? AND goal_reached = 1 AND date >= ? AND date <= ?
		ORDER BY date`,
		userID, formatDate(from), formatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list goal dates: %w", err)
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		t, err := parseDate(day)
		if err != nil {
			return nil, fmt.Errorf("list goal dates: parse date %q: %w", day, err)
		}
		dates = append(dates, t)
	}
	return dates, rows.Err()
}

// AchievementProgress returns the lifetime totals achievements measure.
func (s *Store) AchievementProgress(ctx context.Context, userID string) (*engine.Progress, error) {
	p := &engine.Progress{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(tasks_completed), 0),
		       COALESCE(SUM(goal_reached), 0),
		       COUNT(CASE WHEN tasks_completed > 0 THEN 1 END),
		       COALESCE((SELECT max_streak FROM user_streaks WHERE user_id = ?), 0)
		FROM daily_activity
		WHERE user_id = ?`,
		userID, userID,
	).Scan(&p.TasksCompleted, &p.GoalsReached, &p.ActiveDays, &p.MaxStreak)
	if err != nil {
		return nil, fmt.Errorf("achievement progress: %w", err)
	}
	return p, nil
}
