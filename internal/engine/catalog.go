package engine

import "context"

// Catalog supplies the achievement definitions used when the backend has
// no optimized achievement call. Definitions carry no unlock state; the
// engine annotates them per user.
type Catalog interface {
	Achievements(ctx context.Context) ([]Achievement, error)
}

// StaticCatalog is a fixed, in-process Catalog.
type StaticCatalog []Achievement

func (c StaticCatalog) Achievements(context.Context) ([]Achievement, error) {
	out := make([]Achievement, len(c))
	copy(out, c)
	return out, nil
}

func required(n int) *int { return &n }

// DefaultCatalog is the built-in set of milestones.
func DefaultCatalog() StaticCatalog {
	return StaticCatalog{
		{ID: "first_task", Name: "First Step", Description: "Complete your first task", Category: CategoryTasks, RequiredValue: required(1)},
		{ID: "tasks_10", Name: "Getting Things Done", Description: "Complete 10 tasks", Category: CategoryTasks, RequiredValue: required(10)},
		{ID: "tasks_50", Name: "Task Master", Description: "Complete 50 tasks", Category: CategoryTasks, RequiredValue: required(50)},
		{ID: "tasks_100", Name: "Centurion", Description: "Complete 100 tasks", Category: CategoryTasks, RequiredValue: required(100), Reward: "Centurion badge"},
		{ID: "streak_3", Name: "On Fire", Description: "Reach a 3 day streak", Category: CategoryStreaks, RequiredValue: required(3)},
		{ID: "streak_7", Name: "Week Warrior", Description: "Reach a 7 day streak", Category: CategoryStreaks, RequiredValue: required(7)},
		{ID: "streak_30", Name: "Monthly Master", Description: "Reach a 30 day streak", Category: CategoryStreaks, RequiredValue: required(30), Reward: "Gold flame"},
		{ID: "goal_first", Name: "Goal Getter", Description: "Reach your daily goal for the first time", Category: CategoryGoals, RequiredValue: required(1)},
		{ID: "goals_10", Name: "Consistent", Description: "Reach your daily goal on 10 days", Category: CategoryGoals, RequiredValue: required(10)},
		{ID: "active_14", Name: "Regular", Description: "Be active on 14 different days", Category: CategoryDedication, RequiredValue: required(14)},
		{ID: "active_100", Name: "Dedicated", Description: "Be active on 100 different days", Category: CategoryDedication, RequiredValue: required(100), Reward: "Dedication crown"},
	}
}
