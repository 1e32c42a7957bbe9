package engine

import (
	"context"
	"time"
)

// StreakReader provides the discrete reads the fallback streak path is
// composed of. Reads that find no record return nil and no error.
type StreakReader interface {
	UserCounters(ctx context.Context, userID string) (*UserCounters, error)
	DailyActivity(ctx context.Context, userID string, day time.Time) (*DailyActivityRecord, error)
	GoalReachedDates(ctx context.Context, userID string, from, to time.Time) ([]time.Time, error)
}

// ActivityReader returns activity records with from <= date <= to.
type ActivityReader interface {
	ActivityRange(ctx context.Context, userID string, from, to time.Time) ([]DailyActivityRecord, error)
}

// UnlockStore persists achievement unlock records keyed by
// (userID, achievementID).
type UnlockStore interface {
	HasUnlock(ctx context.Context, userID, achievementID string) (bool, error)
	InsertUnlock(ctx context.Context, userID, achievementID string, at time.Time) error
	ListUnlocks(ctx context.Context, userID string) (map[string]time.Time, error)
}

type GoalWriter interface {
	SetDailyGoal(ctx context.Context, userID string, goal int) error
}

type ProgressReader interface {
	AchievementProgress(ctx context.Context, userID string) (*Progress, error)
}

// Backend is the set of reads and writes the engine needs from the data
// store. A Backend may additionally implement StreakAggregator and
// AchievementAggregator to enable the optimized paths.
type Backend interface {
	StreakReader
	ActivityReader
	UnlockStore
	GoalWriter
	ProgressReader
}

// StreakAggregator is the optimized single-call streak read.
type StreakAggregator interface {
	StreakAggregate(ctx context.Context, userID string, today time.Time) (*StreakAggregate, error)
}

// AchievementAggregator is the optimized achievement read; it returns
// catalog entries already annotated with the user's unlock state.
type AchievementAggregator interface {
	AchievementPage(ctx context.Context, userID string, q AchievementQuery) ([]Achievement, error)
}
