package engine

import (
	"strings"
	"testing"
)

func TestMotivationalMessage(t *testing.T) {
	tests := []struct {
		name string
		s    *StreakSnapshot
		want string
	}{
		{"no data", nil, "Complete tasks to build your streak!"},
		{"at risk", &StreakSnapshot{StreakAtRisk: true, CurrentStreak: 5}, "Don't break your 5 day streak"},
		{"at risk beats goal reached", &StreakSnapshot{StreakAtRisk: true, IsGoalReached: true, CurrentStreak: 2}, "Don't break your 2 day streak"},
		{"no streak", &StreakSnapshot{CurrentStreak: 0, TasksCompletedToday: 1, DailyGoal: 3}, "Start your streak today"},
		{"goal reached", &StreakSnapshot{IsGoalReached: true, CurrentStreak: 7}, "Great job!"},
		{"goal reached names streak", &StreakSnapshot{IsGoalReached: true, CurrentStreak: 7}, "7 day streak"},
		{"partial progress", &StreakSnapshot{CurrentStreak: 40, TasksCompletedToday: 2, DailyGoal: 5}, "2 of 5 tasks"},
		{"dedication", &StreakSnapshot{CurrentStreak: 30}, "Incredible dedication"},
		{"momentum", &StreakSnapshot{CurrentStreak: 7}, "on a roll"},
		{"generic", &StreakSnapshot{CurrentStreak: 3}, "3 day streak"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MotivationalMessage(tt.s)
			if !strings.Contains(got, tt.want) {
				t.Fatalf("MotivationalMessage() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestMotivationalMessageExactDefault(t *testing.T) {
	if got := MotivationalMessage(nil); got != "Complete tasks to build your streak!" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, ok := ParseCategory(string(c))
		if !ok || got != c {
			t.Fatalf("ParseCategory(%q) = %q, %v", c, got, ok)
		}
	}
	if _, ok := ParseCategory("bogus"); ok {
		t.Fatal("unknown category should not parse")
	}
}

func TestProgressValue(t *testing.T) {
	p := Progress{TasksCompleted: 1, MaxStreak: 2, GoalsReached: 3, ActiveDays: 4}
	for c, want := range map[Category]int{
		CategoryTasks: 1, CategoryStreaks: 2, CategoryGoals: 3, CategoryDedication: 4, "other": 0,
	} {
		if got := p.Value(c); got != want {
			t.Errorf("Value(%s) = %d, want %d", c, got, want)
		}
	}
}
