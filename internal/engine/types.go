package engine

import (
	"errors"
	"time"
)

// ErrUnavailable is returned (possibly wrapped) by a backend whose
// optimized aggregate calls are not provisioned. The engine treats it as
// an expected condition and falls back quietly.
var ErrUnavailable = errors.New("optimized path unavailable")

// Dates in this package are civil dates carried as UTC midnight; only
// their year, month and day are meaningful.

// StreakSnapshot is the unified view of a user's streak, whichever
// retrieval path produced it.
type StreakSnapshot struct {
	CurrentStreak       int
	MaxStreak           int
	LastActiveDate      *time.Time
	DailyGoal           int
	IsGoalReached       bool
	TasksCompletedToday int
	StreakAtRisk        bool
	DaysMissed          int
	// CompletedDays is only populated by the fallback path.
	CompletedDays []time.Time
}

func (s *StreakSnapshot) clone() *StreakSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.LastActiveDate != nil {
		d := *s.LastActiveDate
		c.LastActiveDate = &d
	}
	c.CompletedDays = append(make([]time.Time, 0, len(s.CompletedDays)), s.CompletedDays...)
	return &c
}

// StreakRisk is the outcome of CheckStreakRisk.
type StreakRisk struct {
	AtRisk         bool
	HoursRemaining int
	Message        string
}

type DailyActivityRecord struct {
	Date           time.Time
	TasksCompleted int
	GoalReached    bool
}

type Category string

const (
	CategoryTasks      Category = "tasks"
	CategoryStreaks    Category = "streaks"
	CategoryGoals      Category = "goals"
	CategoryDedication Category = "dedication"
)

// Categories lists every achievement category in display order.
var Categories = []Category{CategoryTasks, CategoryStreaks, CategoryGoals, CategoryDedication}

// ParseCategory maps a string onto a known category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Achievement is a milestone with monotonic unlock state.
type Achievement struct {
	ID            string
	Name          string
	Description   string
	Category      Category
	IsUnlocked    bool
	UnlockedAt    *time.Time
	RequiredValue *int
	CurrentValue  *int
	Reward        string
}

// AchievementQuery selects a slice of a user's achievements. Page is
// 1-based; PageSize <= 0 returns everything that matches.
type AchievementQuery struct {
	Category Category
	Page     int
	PageSize int
}

// StreakAggregate is what the optimized streak call returns in a single
// round trip.
type StreakAggregate struct {
	CurrentStreak       int
	MaxStreak           int
	LastActiveDate      *time.Time
	DailyGoal           int
	IsGoalReached       bool
	TasksCompletedToday int
}

// UserCounters is the persisted per-user streak record.
type UserCounters struct {
	StreakCount    int
	MaxStreak      int
	LastActiveDate *time.Time
	DailyGoal      int
}

// Progress holds the lifetime totals achievements are measured against.
type Progress struct {
	TasksCompleted int
	MaxStreak      int
	GoalsReached   int
	ActiveDays     int
}

// Value returns the progress figure that applies to category c.
func (p Progress) Value(c Category) int {
	switch c {
	case CategoryTasks:
		return p.TasksCompleted
	case CategoryStreaks:
		return p.MaxStreak
	case CategoryGoals:
		return p.GoalsReached
	case CategoryDedication:
		return p.ActiveDays
	}
	return 0
}
