package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/streakr/internal/engine"
)

// RecordCompletion counts one completed task for userID on day and applies
// the streak transition when that completion meets the daily goal for the
// first time that day: the streak grows if the previous goal day was
// yesterday and restarts at 1 otherwise. Everything happens in one
// transaction.
func (s *Store) RecordCompletion(ctx context.Context, userID string, day time.Time) (*engine.DailyActivityRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("record completion: empty user id")
	}
	dayStr := formatDate(day)
	now := s.stamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("record completion: %w", err)
	}
	defer tx.Rollback()

	defaultGoal := 1
	var goalSetting string
	err = tx.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = 'default_daily_goal'`).Scan(&goalSetting)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record completion: read default goal: %w", err)
	}
	if g, err := strconv.Atoi(goalSetting); err == nil && g >= 1 {
		defaultGoal = g
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_streaks (user_id, daily_goal, updated_at) VALUES (?, ?, ?)`,
		userID, defaultGoal, now,
	); err != nil {
		return nil, fmt.Errorf("record completion: ensure streak row: %w", err)
	}

	var streak, maxStreak, goal int
	var lastActive sql.NullString
	if err := tx.QueryRowContext(ctx,
		`SELECT streak_count, max_streak, last_active_date, daily_goal FROM user_streaks WHERE user_id = ?`, userID,
	).Scan(&streak, &maxStreak, &lastActive, &goal); err != nil {
		return nil, fmt.Errorf("record completion: read streak: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily_activity (user_id, date, tasks_completed) VALUES (?, ?, 1)
		ON CONFLICT(user_id, date) DO UPDATE SET tasks_completed = tasks_completed + 1`,
		userID, dayStr,
	); err != nil {
		return nil, fmt.Errorf("record completion: bump activity: %w", err)
	}

	rec := &engine.DailyActivityRecord{Date: day}
	var reached int
	if err := tx.QueryRowContext(ctx,
		`SELECT tasks_completed, goal_reached FROM daily_activity WHERE user_id = ? AND date = ?`,
		userID, dayStr,
	).Scan(&rec.TasksCompleted, &reached); err != nil {
		return nil, fmt.Errorf("record completion: read activity: %w", err)
	}
	rec.GoalReached = reached == 1

	if !rec.GoalReached && rec.TasksCompleted >= goal {
		rec.GoalReached = true
		if _, err := tx.ExecContext(ctx,
			`UPDATE daily_activity SET goal_reached = 1 WHERE user_id = ? AND date = ?`, userID, dayStr,
		); err != nil {
			return nil, fmt.Errorf("record completion: mark goal: %w", err)
		}

		last, err := parseNullDate(lastActive)
		if err != nil {
			return nil, fmt.Errorf("record completion: parse last_active_date: %w", err)
		}
		streak = nextStreak(streak, last, day)
		if streak > maxStreak {
			maxStreak = streak
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE user_streaks SET streak_count = ?, max_streak = ?, last_active_date = ?, updated_at = ?
			WHERE user_id = ?`,
			streak, maxStreak, dayStr, now, userID,
		); err != nil {
			return nil, fmt.Errorf("record completion: update streak: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("record completion: commit: %w", err)
	}
	return rec, nil
}

func nextStreak(current int, lastActive *time.Time, day time.Time) int {
	if lastActive == nil {
		return 1
	}
	switch formatDate(*lastActive) {
	case formatDate(day):
		return current
	case formatDate(day.AddDate(0, 0, -1)):
		return current + 1
	}
	return 1
}
