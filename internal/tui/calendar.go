package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/engine"
)

type calendarModel struct {
	engine *engine.Engine
	userID string
	width  int
	height int

	month   time.Time // first day of the shown month
	records []engine.DailyActivityRecord
	failed  bool

	chart barchart.Model
}

func newCalendarModel(e *engine.Engine, userID string) calendarModel {
	return calendarModel{
		engine: e,
		userID: userID,
		month:  monthStart(e.Today()),
		chart:  barchart.New(60, 12),
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calendarDataMsg struct {
	month  time.Time
	result engine.Result[[]engine.DailyActivityRecord]
}

func (c calendarModel) refresh() tea.Cmd {
	month := c.month
	return func() tea.Msg {
		r := c.engine.GetUserActivityCalendar(context.Background(), c.userID, month.Year(), month.Month())
		return calendarDataMsg{month: month, result: r}
	}
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case calendarDataMsg:
		if !msg.month.Equal(c.month) {
			return c, nil // stale reply for a month we navigated away from
		}
		c.records = msg.result.Value
		c.failed = msg.result.Source == engine.SourceFailed
		c.buildChart()
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			c.month = c.month.AddDate(0, -1, 0)
			return c, c.refresh()
		case key.Matches(msg, keys.Right):
			next := c.month.AddDate(0, 1, 0)
			if next.After(c.engine.Today()) {
				return c, nil
			}
			c.month = next
			return c, c.refresh()
		case key.Matches(msg, keys.Refresh):
			c.engine.InvalidateUser(c.userID)
			return c, c.refresh()
		}
	}
	return c, nil
}

func (c calendarModel) lastDay() time.Time {
	return c.month.AddDate(0, 1, -1)
}

func (c *calendarModel) buildChart() {
	chartWidth := c.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if c.height > 30 {
		chartHeight = 16
	}

	c.chart = barchart.New(chartWidth, chartHeight)

	byDay := make(map[int]engine.DailyActivityRecord, len(c.records))
	for _, r := range c.records {
		byDay[r.Date.Day()] = r
	}

	// One bar per day of the month, including days with no record.
	var bars []barchart.BarData
	for d := 1; d <= c.lastDay().Day(); d++ {
		r, ok := byDay[d]
		style := idleDayStyle
		name := "no activity"
		if ok && r.GoalReached {
			style = goalDayStyle
			name = "goal reached"
		} else if ok && r.TasksCompleted > 0 {
			style = partialDayStyle
			name = "partial"
		}
		bars = append(bars, barchart.BarData{
			Label:  fmt.Sprintf("%d", d),
			Values: []barchart.BarValue{{
				Name:  name,
				Value: float64(r.TasksCompleted),
				Style: style,
			}},
		})
	}

	c.chart.PushAll(bars)
	c.chart.Draw()
}

// summary returns active days, goal days and total tasks for the month.
func (c calendarModel) summary() (active, goals, tasks int) {
	for _, r := range c.records {
		if r.TasksCompleted > 0 {
			active++
		}
		if r.GoalReached {
			goals++
		}
		tasks += r.TasksCompleted
	}
	return active, goals, tasks
}

func (c calendarModel) view() string {
	w := c.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Calendar"), "  ", highlightStyle.Render(c.month.Format("January 2006")),
	)

	var body string
	switch {
	case c.failed:
		body = errorStyle.Render("  Activity unavailable for this month")
	case len(c.records) == 0:
		body = mutedStyle.Render("  No activity this month")
	default:
		active, goals, tasks := c.summary()
		body = lipgloss.JoinVertical(lipgloss.Left,
			c.chart.View(),
			"",
			c.renderLegend(),
			"",
			fmt.Sprintf("  %s active  ·  %s goal reached  ·  %s completed",
				highlightStyle.Render(pluralize(active, "day", "days")),
				successStyle.Render(pluralize(goals, "day", "days")),
				highlightStyle.Render(pluralize(tasks, "task", "tasks")),
			),
			"",
			c.renderGrid(),
		)
	}

	nav := mutedStyle.Render("  ←/→: month  r: refresh")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (c calendarModel) renderLegend() string {
	items := []string{
		goalDayStyle.Render("●") + " goal reached",
		partialDayStyle.Render("●") + " partial",
	}
	return "  " + strings.Join(items, "  ")
}

// renderGrid draws a Monday-first month grid with goal days highlighted.
func (c calendarModel) renderGrid() string {
	byDay := make(map[int]engine.DailyActivityRecord, len(c.records))
	for _, r := range c.records {
		byDay[r.Date.Day()] = r
	}

	rows := []string{mutedStyle.Render("  Mo Tu We Th Fr Sa Su")}
	offset := (int(c.month.Weekday()) + 6) % 7
	line := "  " + strings.Repeat("   ", offset)
	col := offset
	for d := 1; d <= c.lastDay().Day(); d++ {
		cell := fmt.Sprintf("%2d", d)
		if r, ok := byDay[d]; ok && r.GoalReached {
			cell = goalDayStyle.Render(cell)
		} else if ok && r.TasksCompleted > 0 {
			cell = partialDayStyle.Render(cell)
		} else {
			cell = mutedStyle.Render(cell)
		}
		line += cell + " "
		col++
		if col == 7 {
			rows = append(rows, strings.TrimRight(line, " "))
			line, col = "  ", 0
		}
	}
	if col > 0 {
		rows = append(rows, strings.TrimRight(line, " "))
	}
	return strings.Join(rows, "\n")
}
