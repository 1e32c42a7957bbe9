package engine

import "context"

// UpdateDailyGoal persists a new daily goal and invalidates the user's
// cached streak so the next read re-derives it. Activity and achievement
// caches are left alone.
func (e *Engine) UpdateDailyGoal(ctx context.Context, userID string, goal int) bool {
	if userID == "" || goal < 1 {
		return false
	}
	if err := e.backend.SetDailyGoal(ctx, userID, goal); err != nil {
		e.logger.Warn("daily goal update failed", "op", "update_daily_goal", "user_id", userID,
			"goal", goal, "error", err)
		return false
	}
	e.streaks.Invalidate(streakKey(userID))
	return true
}
