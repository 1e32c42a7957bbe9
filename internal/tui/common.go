package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/streakr/internal/engine"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewCalendar
	viewAchievements
	viewSettings
)

var viewNames = []string{"Dashboard", "Calendar", "Achievements", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// completedMsg follows a recorded completion. unlocked holds the names of
// achievements the completion unlocked.
type completedMsg struct {
	record   *engine.DailyActivityRecord
	unlocked []string
}

type goalSavedMsg struct {
	goal int
}

// --- Helpers ---

// progressBar renders done/total as a fixed-width bar.
func progressBar(done, total, width int) string {
	if width < 1 || total < 1 {
		return ""
	}
	filled := done * width / total
	filled = max(0, min(filled, width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// monthStart returns the first day of the month containing t, in UTC.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
