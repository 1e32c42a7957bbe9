package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/engine"
	"github.com/sadopc/streakr/internal/store"
)

// historyDays is how many days the dashboard strip shows.
const historyDays = 30

type dashboardModel struct {
	engine *engine.Engine
	store  *store.Store
	userID string
	width  int
	height int

	streak  *engine.StreakSnapshot
	risk    engine.StreakRisk
	history map[string]bool // goal-reached days keyed by YYYY-MM-DD
	today   time.Time
	failed  bool
}

func newDashboardModel(e *engine.Engine, s *store.Store, userID string) dashboardModel {
	return dashboardModel{
		engine:  e,
		store:   s,
		userID:  userID,
		history: map[string]bool{},
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	streak  engine.Result[*engine.StreakSnapshot]
	risk    engine.StreakRisk
	history map[string]bool
	today   time.Time
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		today := d.engine.Today()
		return dashboardDataMsg{
			streak:  d.engine.GetUserStreak(ctx, d.userID),
			risk:    d.engine.CheckStreakRisk(ctx, d.userID),
			history: goalDays(ctx, d.engine, d.userID, today),
			today:   today,
		}
	}
}

// goalDays collects the goal-reached days of the last historyDays days from
// the activity calendar of this month and the previous one.
func goalDays(ctx context.Context, e *engine.Engine, userID string, today time.Time) map[string]bool {
	days := make(map[string]bool)
	first := today.AddDate(0, 0, -(historyDays - 1))
	for m := monthStart(first); !m.After(today); m = m.AddDate(0, 1, 0) {
		r := e.GetUserActivityCalendar(ctx, userID, m.Year(), m.Month())
		for _, rec := range r.Value {
			if rec.GoalReached && !rec.Date.Before(first) {
				days[rec.Date.Format("2006-01-02")] = true
			}
		}
	}
	return days
}

// complete records one task for today, then refreshes what the completion
// may have changed.
func (d dashboardModel) complete() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		rec, err := d.store.RecordCompletion(ctx, d.userID, d.engine.Today())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		d.engine.InvalidateUser(d.userID)

		ids := d.engine.CheckMilestones(ctx, d.userID)
		return completedMsg{record: rec, unlocked: achievementNames(ctx, d.engine, d.userID, ids)}
	}
}

func achievementNames(ctx context.Context, e *engine.Engine, userID string, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make(map[string]string)
	r := e.GetUserAchievements(ctx, userID, engine.AchievementQuery{})
	for _, a := range r.Value {
		names[a.ID] = a.Name
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := names[id]; ok && n != "" {
			out = append(out, n)
		} else {
			out = append(out, id)
		}
	}
	return out
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.streak = msg.streak.Value
		d.failed = msg.streak.Source == engine.SourceFailed
		d.risk = msg.risk
		d.history = msg.history
		d.today = msg.today
		return d, nil

	case tickMsg:
		// Hours remaining and "today" move with the clock.
		return d, d.loadData()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Complete):
			return d, d.complete()
		case key.Matches(msg, keys.Refresh):
			d.engine.InvalidateUser(d.userID)
			return d, d.loadData()
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderStreakPanel(contentWidth),
		d.renderTodayPanel(contentWidth),
		d.renderHistoryPanel(contentWidth),
	)
}

func (d dashboardModel) renderStreakPanel(w int) string {
	if d.failed {
		content := lipgloss.JoinVertical(lipgloss.Center,
			errorStyle.Width(w-6).Align(lipgloss.Center).Render("Streak data unavailable"),
			mutedStyle.Render("Press r to retry"),
		)
		return panelStyle.Width(w).Render(content)
	}

	s := d.streak
	if s == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading streak..."))
	}

	count := pluralize(s.CurrentStreak, "day", "days")
	var big, indicator string
	switch {
	case d.risk.AtRisk:
		big = streakAtRiskStyle.Width(w - 6).Render("🔥 " + count)
		indicator = warningStyle.Render("⚠  " + d.risk.Message)
	case s.CurrentStreak > 0:
		big = streakStyle.Width(w - 6).Render("🔥 " + count)
		indicator = successStyle.Render("●  ACTIVE")
	default:
		big = streakIdleStyle.Width(w - 6).Render(count)
		indicator = mutedStyle.Render("■  NO STREAK")
		if s.DaysMissed > 0 {
			indicator = mutedStyle.Render(fmt.Sprintf("■  %s missed", pluralize(s.DaysMissed, "day", "days")))
		}
	}

	best := subtitleStyle.Render("Best: " + pluralize(s.MaxStreak, "day", "days"))
	message := highlightStyle.Render(engine.MotivationalMessage(s))

	content := lipgloss.JoinVertical(lipgloss.Center, big, indicator, best, "", message)
	style := panelStyle
	if d.risk.AtRisk {
		style = activePanelStyle
	}
	return style.Width(w).Render(content)
}

func (d dashboardModel) renderTodayPanel(w int) string {
	title := titleStyle.Render("Today")
	s := d.streak
	if s == nil {
		return panelStyle.Width(w).Render(title)
	}

	goal := max(s.DailyGoal, 1)
	bar := progressBar(s.TasksCompletedToday, goal, min(40, max(w-30, 10)))
	counts := fmt.Sprintf("%d / %d tasks", s.TasksCompletedToday, goal)

	status := mutedStyle.Render("Press c to record a completed task")
	if s.IsGoalReached {
		status = successStyle.Render("✓ Daily goal reached")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		fmt.Sprintf("  %s  %s", highlightStyle.Render(bar), counts),
		"  "+status,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderHistoryPanel(w int) string {
	title := titleStyle.Render(fmt.Sprintf("Last %d days", historyDays))
	if d.today.IsZero() {
		return panelStyle.Width(w).Render(title)
	}

	var cells []string
	reached := 0
	for i := historyDays - 1; i >= 0; i-- {
		day := d.today.AddDate(0, 0, -i)
		if d.history[day.Format("2006-01-02")] {
			reached++
			cells = append(cells, goalDayStyle.Render("■"))
		} else {
			cells = append(cells, idleDayStyle.Render("·"))
		}
	}

	summary := mutedStyle.Render(fmt.Sprintf("goal reached on %d of %d days", reached, historyDays))
	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"  "+strings.Join(cells, " "),
		"  "+summary,
	)
	return panelStyle.Width(w).Render(content)
}
