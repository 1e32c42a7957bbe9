package engine

import "fmt"

// MotivationalMessage picks a short line of encouragement for s. The first
// matching rule wins: no data, at risk, no streak, goal reached, partial
// progress, then streak-length tiers.
func MotivationalMessage(s *StreakSnapshot) string {
	switch {
	case s == nil:
		return "Complete tasks to build your streak!"
	case s.StreakAtRisk:
		return fmt.Sprintf("Don't break your %d day streak! Complete a task today to keep it alive.", s.CurrentStreak)
	case s.CurrentStreak == 0:
		return "Start your streak today! Complete a task to get going."
	case s.IsGoalReached:
		return fmt.Sprintf("Great job! You hit today's goal. %d day streak and counting!", s.CurrentStreak)
	case s.TasksCompletedToday > 0:
		return fmt.Sprintf("Nice progress! %d of %d tasks done today.", s.TasksCompletedToday, s.DailyGoal)
	case s.CurrentStreak >= 30:
		return fmt.Sprintf("Incredible dedication! %d days and still going.", s.CurrentStreak)
	case s.CurrentStreak >= 7:
		return fmt.Sprintf("You're on a roll! Keep the %d day momentum going.", s.CurrentStreak)
	default:
		return fmt.Sprintf("Keep it up! You're on a %d day streak.", s.CurrentStreak)
	}
}
