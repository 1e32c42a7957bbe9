// Package tui is the Bubble Tea front end over the streak engine.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/engine"
	"github.com/sadopc/streakr/internal/export"
	"github.com/sadopc/streakr/internal/store"
)

var exportFormats = []string{"Calendar CSV", "Calendar JSON", "Achievements JSON"}

// App is the root Bubble Tea model.
type App struct {
	engine *engine.Engine
	store  *store.Store
	userID string
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard    dashboardModel
	calendar     calendarModel
	achievements achievementsModel
	settings     settingsModel

	help          help.Model
	status        string
	statusIsError bool

	// exportDir is where exports are written; the home directory by default.
	exportDir string
}

func NewApp(e *engine.Engine, s *store.Store, userID string) App {
	h := help.New()
	h.ShowAll = false

	dir, err := os.UserHomeDir()
	if err != nil {
		dir = "."
	}

	return App{
		engine:       e,
		store:        s,
		userID:       userID,
		activeView:   viewDashboard,
		dashboard:    newDashboardModel(e, s, userID),
		calendar:     newCalendarModel(e, userID),
		achievements: newAchievementsModel(e, userID),
		settings:     newSettingsModel(e, s, userID),
		help:         h,
		exportDir:    dir,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.Init(),
		tickCmd(),
	)
}

// tickCmd refreshes the dashboard once a minute so the risk countdown and
// the current day stay correct.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.achievements.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, a.refreshCurrentView()

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Complete):
			// Completing a task works from every view.
			return a, a.dashboard.complete()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewCalendar
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewAchievements
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, tea.Batch(tickCmd(), cmd)

	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil

	case calendarDataMsg:
		a.calendar, _ = a.calendar.update(msg)
		return a, nil

	case achievementsDataMsg:
		a.achievements, _ = a.achievements.update(msg)
		return a, nil

	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil

	case statusMsg:
		a.status = msg.text
		a.statusIsError = msg.isError
		return a, nil

	case completedMsg:
		a.setStatus(completionStatus(msg), false)
		return a, a.refreshAfterChange()

	case goalSavedMsg:
		a.setStatus(fmt.Sprintf("Daily goal set to %s", pluralize(msg.goal, "task", "tasks")), false)
		return a, a.refreshAfterChange()

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusIsError = isError
}

func completionStatus(msg completedMsg) string {
	text := fmt.Sprintf("Task recorded (%s today)", pluralize(msg.record.TasksCompleted, "task", "tasks"))
	if msg.record.GoalReached {
		text += ", goal reached"
	}
	if len(msg.unlocked) > 0 {
		text += ". Unlocked: " + strings.Join(msg.unlocked, ", ")
	}
	return text
}

// refreshAfterChange reloads the dashboard and the active view after a
// write.
func (a App) refreshAfterChange() tea.Cmd {
	cmds := []tea.Cmd{a.dashboard.loadData()}
	if a.activeView != viewDashboard {
		cmds = append(cmds, a.refreshCurrentView())
	}
	return tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewAchievements:
		a.achievements, cmd = a.achievements.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	return a.activeView == viewSettings && a.settings.formActive
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewCalendar:
		return a.calendar.refresh()
	case viewAchievements:
		return a.achievements.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewAchievements:
		content = a.achievements.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := brandStyle.Render("streakr")
	user := mutedStyle.Render(" " + a.userID)
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(user) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, user, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := statusBarStyle
		if a.statusIsError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Streak indicator in footer
	streakInfo := ""
	if s := a.dashboard.streak; s != nil && s.CurrentStreak > 0 {
		streakInfo = accentStyle.Render(fmt.Sprintf(" 🔥 %d", s.CurrentStreak))
		if a.dashboard.risk.AtRisk {
			streakInfo = warningStyle.Render(fmt.Sprintf(" ⚠ %d", s.CurrentStreak))
		}
	}

	left := footerStyle.Render(helpView)
	right := streakInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the calendar month shown in the calendar view, or the
// full achievement list, to exportDir.
func (a App) doExport(format int) tea.Cmd {
	month := a.calendar.month
	return func() tea.Msg {
		ctx := context.Background()
		monthStr := month.Format("2006-01")

		var path string
		switch format {
		case 0, 1:
			r := a.engine.GetUserActivityCalendar(ctx, a.userID, month.Year(), month.Month())
			if r.Source == engine.SourceFailed {
				return statusMsg{text: fmt.Sprintf("Export error: %v", r.Err), isError: true}
			}
			if format == 0 {
				path = filepath.Join(a.exportDir, fmt.Sprintf("streakr-%s-%s.csv", a.userID, monthStr))
				if err := export.CalendarCSV(r.Value, path); err != nil {
					return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
				}
			} else {
				path = filepath.Join(a.exportDir, fmt.Sprintf("streakr-%s-%s.json", a.userID, monthStr))
				if err := export.CalendarJSON(a.userID, month, r.Value, path); err != nil {
					return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
				}
			}
		default:
			r := a.engine.GetUserAchievements(ctx, a.userID, engine.AchievementQuery{})
			if r.Source == engine.SourceFailed {
				return statusMsg{text: fmt.Sprintf("Export error: %v", r.Err), isError: true}
			}
			path = filepath.Join(a.exportDir, fmt.Sprintf("streakr-%s-achievements.json", a.userID))
			if err := export.AchievementsJSON(a.userID, r.Value, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
