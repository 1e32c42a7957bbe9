package engine

import (
	"context"
	"fmt"
)

type achievementFetch struct {
	list   []Achievement
	source Source
}

// GetUserAchievements returns the slice of the user's achievements that q
// selects. The full set is cached per user; filtering and paging are
// applied to the cached set.
func (e *Engine) GetUserAchievements(ctx context.Context, userID string, q AchievementQuery) Result[[]Achievement] {
	if userID == "" {
		return Result[[]Achievement]{Value: []Achievement{}, Source: SourceNone}
	}

	all, source, err := e.loadAchievements(ctx, userID)
	if err != nil {
		e.logger.Warn("achievement fallback failed", "op", "get_user_achievements", "user_id", userID, "error", err)
		return Result[[]Achievement]{Value: []Achievement{}, Source: SourceFailed, Err: err}
	}
	return Result[[]Achievement]{Value: Page(all, q), Source: source}
}

func (e *Engine) loadAchievements(ctx context.Context, userID string) ([]Achievement, Source, error) {
	key := achievementsKey(userID)
	if list, ok := e.achievements.Get(key); ok {
		return list, SourceCache, nil
	}

	v, err := e.do(key, func() (any, error) {
		list, source, err := e.fetchAchievements(ctx, userID)
		if err != nil {
			return nil, err
		}
		e.achievements.Set(key, list)
		return achievementFetch{list: list, source: source}, nil
	})
	if err != nil {
		return nil, SourceFailed, err
	}
	f := v.(achievementFetch)
	return f.list, f.source, nil
}

func (e *Engine) fetchAchievements(ctx context.Context, userID string) ([]Achievement, Source, error) {
	if agg, ok := e.backend.(AchievementAggregator); ok {
		list, err := agg.AchievementPage(ctx, userID, AchievementQuery{})
		if err == nil {
			if list == nil {
				list = []Achievement{}
			}
			return list, SourceAggregate, nil
		}
		e.logAggregateMiss("achievements", userID, err)
	}

	list, err := e.catalog.Achievements(ctx)
	if err != nil {
		return nil, SourceFailed, fmt.Errorf("load catalog: %w", err)
	}
	unlocks, err := e.backend.ListUnlocks(ctx, userID)
	if err != nil {
		return nil, SourceFailed, fmt.Errorf("list unlocks: %w", err)
	}

	// Progress only decorates the list; a failure leaves CurrentValue unset.
	progress, err := e.backend.AchievementProgress(ctx, userID)
	if err != nil {
		e.logger.Debug("achievement progress unavailable", "user_id", userID, "error", err)
		progress = nil
	}

	for i := range list {
		a := &list[i]
		if at, ok := unlocks[a.ID]; ok {
			t := at
			a.IsUnlocked = true
			a.UnlockedAt = &t
		}
		if progress != nil && a.RequiredValue != nil {
			v := progress.Value(a.Category)
			a.CurrentValue = &v
		}
	}
	return list, SourceFallback, nil
}

// HasAchievement reports whether the user has unlocked achievementID. A
// cached achievement set answers without I/O; otherwise the unlock store
// is asked directly.
func (e *Engine) HasAchievement(ctx context.Context, userID, achievementID string) bool {
	if userID == "" || achievementID == "" {
		return false
	}
	if list, ok := e.achievements.Get(achievementsKey(userID)); ok {
		for _, a := range list {
			if a.ID == achievementID {
				return a.IsUnlocked
			}
		}
		return false
	}

	ok, err := e.backend.HasUnlock(ctx, userID, achievementID)
	if err != nil {
		e.logger.Warn("unlock lookup failed", "op", "has_achievement", "user_id", userID,
			"achievement_id", achievementID, "error", err)
		return false
	}
	return ok
}

// UnlockAchievement records that the user unlocked achievementID. It is
// idempotent: an existing unlock is reported as success without a write.
func (e *Engine) UnlockAchievement(ctx context.Context, userID, achievementID string) bool {
	if userID == "" || achievementID == "" {
		return false
	}

	exists, err := e.backend.HasUnlock(ctx, userID, achievementID)
	if err != nil {
		e.logger.Warn("unlock lookup failed", "op", "unlock_achievement", "user_id", userID,
			"achievement_id", achievementID, "error", err)
		return false
	}
	if exists {
		return true
	}

	if err := e.backend.InsertUnlock(ctx, userID, achievementID, e.clock.Now().UTC()); err != nil {
		e.logger.Warn("unlock insert failed", "op", "unlock_achievement", "user_id", userID,
			"achievement_id", achievementID, "error", err)
		return false
	}
	e.achievements.Invalidate(achievementsKey(userID))
	return true
}

// CheckMilestones unlocks every catalog achievement whose required value
// the user's progress has reached, returning the ids unlocked by this
// call.
func (e *Engine) CheckMilestones(ctx context.Context, userID string) []string {
	if userID == "" {
		return nil
	}

	progress, err := e.backend.AchievementProgress(ctx, userID)
	if err != nil {
		e.logger.Warn("progress read failed", "op", "check_milestones", "user_id", userID, "error", err)
		return nil
	}
	if progress == nil {
		return nil
	}
	catalog, err := e.catalog.Achievements(ctx)
	if err != nil {
		e.logger.Warn("catalog load failed", "op", "check_milestones", "user_id", userID, "error", err)
		return nil
	}
	unlocks, err := e.backend.ListUnlocks(ctx, userID)
	if err != nil {
		e.logger.Warn("unlock list failed", "op", "check_milestones", "user_id", userID, "error", err)
		return nil
	}

	var unlocked []string
	for _, a := range catalog {
		if a.RequiredValue == nil || progress.Value(a.Category) < *a.RequiredValue {
			continue
		}
		if _, ok := unlocks[a.ID]; ok {
			continue
		}
		if e.UnlockAchievement(ctx, userID, a.ID) {
			unlocked = append(unlocked, a.ID)
		}
	}
	return unlocked
}

// Page filters list by q.Category (when set) and returns page q.Page of
// q.PageSize items. Pages before the first are treated as the first.
func Page(list []Achievement, q AchievementQuery) []Achievement {
	out := make([]Achievement, 0, len(list))
	for _, a := range list {
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		out = append(out, cloneAchievement(a))
	}
	if q.PageSize <= 0 {
		return out
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * q.PageSize
	if start >= len(out) {
		return []Achievement{}
	}
	end := start + q.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end]
}

func cloneAchievement(a Achievement) Achievement {
	if a.UnlockedAt != nil {
		t := *a.UnlockedAt
		a.UnlockedAt = &t
	}
	if a.RequiredValue != nil {
		v := *a.RequiredValue
		a.RequiredValue = &v
	}
	if a.CurrentValue != nil {
		v := *a.CurrentValue
		a.CurrentValue = &v
	}
	return a
}
