package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/streakr/internal/engine"
)

// SeedAchievements inserts catalog definitions that are not stored yet.
// Existing rows are left untouched.
func (s *Store) SeedAchievements(ctx context.Context, list []engine.Achievement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}
	defer tx.Rollback()

	for i, a := range list {
		var required sql.NullInt64
		if a.RequiredValue != nil {
			required = sql.NullInt64{Int64: int64(*a.RequiredValue), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO achievements (id, name, description, category, required_value, reward, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Description, string(a.Category), required, a.Reward, i,
		)
		if err != nil {
			return fmt.Errorf("seed achievement %q: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// Achievements lists the stored catalog without unlock state, so a Store
// can stand in for engine.DefaultCatalog.
func (s *Store) Achievements(ctx context.Context) ([]engine.Achievement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, category, required_value, reward
		FROM achievements ORDER BY sort_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	list := []engine.Achievement{}
	for rows.Next() {
		var a engine.Achievement
		var category string
		var required sql.NullInt64
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &category, &required, &a.Reward); err != nil {
			return nil, err
		}
		a.Category = engine.Category(category)
		if required.Valid {
			v := int(required.Int64)
			a.RequiredValue = &v
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// AchievementPage lists the catalog joined with the user's unlocks and
// progress in one round trip. A zero query returns everything.
func (s *Store) AchievementPage(ctx context.Context, userID string, q engine.AchievementQuery) ([]engine.Achievement, error) {
	if !s.aggregates.Load() {
		return nil, ErrAggregateUnavailable
	}

	query := `
		WITH progress AS (
			SELECT COALESCE(SUM(tasks_completed), 0) AS tasks,
			       COALESCE(SUM(goal_reached), 0) AS goals,
			       COUNT(CASE WHEN tasks_completed > 0 THEN 1 END) AS days,
			       COALESCE((SELECT max_streak FROM user_streaks WHERE user_id = ?), 0) AS streak
			FROM daily_activity WHERE user_id = ?
		)
		SELECT a.id, a.name, a.description, a.category, a.required_value, a.reward, u.unlocked_at,
		       CASE a.category
		           WHEN 'tasks' THEN p.tasks
		           WHEN 'streaks' THEN p.streak
		           WHEN 'goals' THEN p.goals
		           ELSE p.days
		       END
		FROM achievements a
		CROSS JOIN progress p
		LEFT JOIN user_achievements u ON u.achievement_id = a.id AND u.user_id = ?`
	args := []any{userID, userID, userID}

	if q.Category != "" {
		query += ` WHERE a.category = ?`
		args = append(args, string(q.Category))
	}
	query += ` ORDER BY a.sort_order, a.id`
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, q.PageSize, (page-1)*q.PageSize)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("achievement page: %w", err)
	}
	defer rows.Close()

	list := []engine.Achievement{}
	for rows.Next() {
		var a engine.Achievement
		var category string
		var required sql.NullInt64
		var unlockedAt sql.NullString
		var current int
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &category, &required, &a.Reward, &unlockedAt, &current); err != nil {
			return nil, err
		}
		a.Category = engine.Category(category)
		if required.Valid {
			v := int(required.Int64)
			a.RequiredValue = &v
			a.CurrentValue = &current
		}
		if unlockedAt.Valid {
			t, err := time.Parse(time.RFC3339, unlockedAt.String)
			if err != nil {
				return nil, fmt.Errorf("achievement page: parse unlocked_at: %w", err)
			}
			a.IsUnlocked = true
			a.UnlockedAt = &t
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement page: %w", err)
	}
	if len(list) == 0 {
		// An unseeded catalog has nothing to join against; let the caller
		// fall back to its own catalog.
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM achievements`).Scan(&n); err != nil {
			return nil, fmt.Errorf("achievement page: %w", err)
		}
		if n == 0 {
			return nil, ErrAggregateUnavailable
		}
	}
	return list, nil
}

func (s *Store) HasUnlock(ctx context.Context, userID, achievementID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_achievements WHERE user_id = ? AND achievement_id = ?`,
		userID, achievementID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check unlock: %w", err)
	}
	return n > 0, nil
}

// InsertUnlock records an unlock. A second insert for the same pair is
// ignored, so the first unlock time is kept.
func (s *Store) InsertUnlock(ctx context.Context, userID, achievementID string, at time.Time) error {
	if strings.TrimSpace(achievementID) == "" {
		return fmt.Errorf("insert unlock: empty achievement id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_achievements (id, user_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, achievementID, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert unlock: %w", err)
	}
	return nil
}

func (s *Store) ListUnlocks(ctx context.Context, userID string) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT achievement_id, unlocked_at FROM user_achievements WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	defer rows.Close()

	unlocks := make(map[string]time.Time)
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("list unlocks: parse unlocked_at: %w", err)
		}
		unlocks[id] = t
	}
	return unlocks, rows.Err()
}
