package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/streakr/internal/engine"
)

const achievementsPageSize = 6

// categoryTabs lists the filter tabs; the empty category means all.
var categoryTabs = append([]engine.Category{""}, engine.Categories...)

type achievementsModel struct {
	engine *engine.Engine
	userID string
	width  int
	height int

	category int // index into categoryTabs
	page     int // 1-based
	all      []engine.Achievement
	failed   bool
}

func newAchievementsModel(e *engine.Engine, userID string) achievementsModel {
	return achievementsModel{engine: e, userID: userID, page: 1}
}

func (a *achievementsModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type achievementsDataMsg struct {
	result engine.Result[[]engine.Achievement]
}

// refresh loads the full list once; filtering and paging run locally over
// it with engine.Page.
func (a achievementsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		r := a.engine.GetUserAchievements(context.Background(), a.userID, engine.AchievementQuery{})
		return achievementsDataMsg{result: r}
	}
}

func (a achievementsModel) query() engine.AchievementQuery {
	return engine.AchievementQuery{
		Category: categoryTabs[a.category],
		Page:     a.page,
		PageSize: achievementsPageSize,
	}
}

func (a achievementsModel) filtered() []engine.Achievement {
	return engine.Page(a.all, engine.AchievementQuery{Category: categoryTabs[a.category]})
}

func (a achievementsModel) pageCount() int {
	n := len(a.filtered())
	return max(1, (n+achievementsPageSize-1)/achievementsPageSize)
}

func (a achievementsModel) update(msg tea.Msg) (achievementsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case achievementsDataMsg:
		a.all = msg.result.Value
		a.failed = msg.result.Source == engine.SourceFailed
		a.page = min(a.page, a.pageCount())
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			a.category = (a.category + len(categoryTabs) - 1) % len(categoryTabs)
			a.page = 1
		case key.Matches(msg, keys.Right):
			a.category = (a.category + 1) % len(categoryTabs)
			a.page = 1
		case key.Matches(msg, keys.PrevPage):
			if a.page > 1 {
				a.page--
			}
		case key.Matches(msg, keys.NextPage):
			if a.page < a.pageCount() {
				a.page++
			}
		case key.Matches(msg, keys.Refresh):
			a.engine.InvalidateUser(a.userID)
			return a, a.refresh()
		}
	}
	return a, nil
}

func (a achievementsModel) view() string {
	w := a.width - 4

	var tabs []string
	for i, c := range categoryTabs {
		name := "All"
		if c != "" {
			name = strings.ToUpper(string(c[:1])) + string(c[1:])
		}
		if i == a.category {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	unlocked := 0
	for _, ach := range a.all {
		if ach.IsUnlocked {
			unlocked++
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Achievements"), "  ",
		highlightStyle.Render(fmt.Sprintf("%d/%d unlocked", unlocked, len(a.all))),
	)

	var rows []string
	switch {
	case a.failed:
		rows = append(rows, errorStyle.Render("  Achievements unavailable"))
	default:
		page := engine.Page(a.all, a.query())
		if len(page) == 0 {
			rows = append(rows, mutedStyle.Render("  Nothing here yet"))
		}
		for _, ach := range page {
			rows = append(rows, a.renderAchievement(ach, w))
		}
	}

	pager := mutedStyle.Render(fmt.Sprintf("  page %d/%d  ←/→: category  [/]: page", a.page, a.pageCount()))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		header, lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), "",
		strings.Join(rows, "\n"), "", pager,
	))
}

func (a achievementsModel) renderAchievement(ach engine.Achievement, w int) string {
	mark := mutedStyle.Render("○")
	name := lockedStyle.Render(ach.Name)
	if ach.IsUnlocked {
		mark = unlockedStyle.Render("✓")
		name = unlockedStyle.Render(ach.Name)
	}

	var detail string
	switch {
	case ach.IsUnlocked && ach.UnlockedAt != nil:
		detail = successStyle.Render("unlocked " + humanize.Time(*ach.UnlockedAt))
	case ach.RequiredValue != nil && ach.CurrentValue != nil:
		cur := min(*ach.CurrentValue, *ach.RequiredValue)
		detail = fmt.Sprintf("%s %s",
			highlightStyle.Render(progressBar(cur, *ach.RequiredValue, 12)),
			mutedStyle.Render(fmt.Sprintf("%s / %s", humanize.Comma(int64(cur)), humanize.Comma(int64(*ach.RequiredValue)))),
		)
	case ach.RequiredValue != nil:
		detail = mutedStyle.Render("needs " + humanize.Comma(int64(*ach.RequiredValue)))
	}

	lines := []string{fmt.Sprintf("  %s %s  %s", mark, name, detail)}
	desc := ach.Description
	if ach.Reward != "" {
		desc += "  · reward: " + ach.Reward
	}
	if desc != "" {
		lines = append(lines, mutedStyle.Width(max(w-8, 10)).Render("    "+desc))
	}
	return strings.Join(lines, "\n")
}
