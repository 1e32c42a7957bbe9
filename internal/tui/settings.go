package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/streakr/internal/engine"
	"github.com/sadopc/streakr/internal/store"
)

type settingsModel struct {
	engine *engine.Engine
	store  *store.Store
	userID string
	width  int
	height int

	dailyGoal  int
	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	goalInput        *string
	defaultGoalInput *string
}

func newSettingsModel(e *engine.Engine, s *store.Store, userID string) settingsModel {
	g, dg := "", ""
	return settingsModel{
		engine:           e,
		store:            s,
		userID:           userID,
		goalInput:        &g,
		defaultGoalInput: &dg,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	dailyGoal int
	settings  []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		msg := settingsDataMsg{dailyGoal: 1}
		if r := s.engine.GetUserStreak(ctx, s.userID); r.Found() {
			msg.dailyGoal = r.Value.DailyGoal
		}
		msg.settings, _ = s.store.GetAllSettings(ctx)
		return msg
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.dailyGoal = msg.dailyGoal
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func validateGoal(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return errors.New("enter a whole number")
	}
	if n < 1 {
		return errors.New("goal must be at least 1")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.goalInput = strconv.Itoa(max(s.dailyGoal, 1))
	*s.defaultGoalInput = s.getVal("default_daily_goal", "1")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (tasks per day)").
				Description("Applies to " + s.userID).
				Value(s.goalInput).
				Validate(validateGoal),
			huh.NewInput().Title("Default goal for new users").
				Value(s.defaultGoalInput).
				Validate(validateGoal),
		).Title("Goals"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save()
	}

	return s, cmd
}

// save persists the form values. The user's goal goes through the engine so
// the cached streak is invalidated.
func (s settingsModel) save() tea.Cmd {
	goal, _ := strconv.Atoi(strings.TrimSpace(*s.goalInput))
	defaultGoal, _ := strconv.Atoi(strings.TrimSpace(*s.defaultGoalInput))
	return func() tea.Msg {
		ctx := context.Background()
		if err := s.store.SetDefaultDailyGoal(ctx, defaultGoal); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if !s.engine.UpdateDailyGoal(ctx, s.userID, goal) {
			return statusMsg{text: "Could not update daily goal", isError: true}
		}
		return goalSavedMsg{goal: goal}
	}
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(context.Background(), k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	rows = append(rows, settingRow("user", s.userID))
	rows = append(rows, settingRow("daily_goal", pluralize(max(s.dailyGoal, 1), "task", "tasks")))
	rows = append(rows, settingRow("timezone", s.engine.Location().String()))
	for _, setting := range s.settings {
		rows = append(rows, settingRow(setting.Key, formatSettingValue(setting.Key, setting.Value)))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit goals"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(k, v string) string {
	label := lipgloss.NewStyle().Width(24).Render(k)
	return fmt.Sprintf("  %s %s", label, highlightStyle.Render(v))
}

func formatSettingValue(k, v string) string {
	if k == "default_daily_goal" {
		if n, err := strconv.Atoi(v); err == nil {
			return pluralize(n, "task", "tasks")
		}
	}
	return v
}
