package store

import "github.com/sadopc/streakr/internal/engine"

var (
	_ engine.Backend               = (*Store)(nil)
	_ engine.StreakAggregator      = (*Store)(nil)
	_ engine.AchievementAggregator = (*Store)(nil)
	_ engine.Catalog               = (*Store)(nil)
)
