package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Warm tones carry the streak; green marks a kept goal. Each color
// has a light and a dark terminal variant.
var (
	colorFlame  = lipgloss.AdaptiveColor{Light: "#D9480F", Dark: "#FF7A33"}
	colorEmber  = lipgloss.AdaptiveColor{Light: "#E8590C", Dark: "#FFB347"}
	colorKept   = lipgloss.AdaptiveColor{Light: "#2B8A3E", Dark: "#51CF66"}
	colorAlarm  = lipgloss.AdaptiveColor{Light: "#C92A2A", Dark: "#FF6B6B"}
	colorAsh    = lipgloss.AdaptiveColor{Light: "#868E96", Dark: "#6C7086"}
	colorSmoke  = lipgloss.AdaptiveColor{Light: "#DEE2E6", Dark: "#3B3F51"}
	colorText   = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#E6E1CF"}
	colorSpark  = lipgloss.AdaptiveColor{Light: "#1971C2", Dark: "#74C0FC"}
	colorSunken = lipgloss.AdaptiveColor{Light: "#F08C00", Dark: "#FCC419"}
)

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFlame)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorFlame).
			Border(lipgloss.ThickBorder(), false, false, true, false).
			BorderForeground(colorFlame).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorAsh).
				Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSmoke).
			Padding(0, 1)

	// activePanelStyle frames the panel that needs attention: a live streak
	// or an open dialog.
	activePanelStyle = panelStyle.BorderForeground(colorEmber)
)

// Streak counter, by state.
var (
	streakStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorFlame).Align(lipgloss.Center)
	streakAtRiskStyle = streakStyle.Foreground(colorSunken)
	streakIdleStyle   = streakStyle.Foreground(colorAsh)
)

// Day cells in the calendar grid, bar chart and history strip.
var (
	goalDayStyle    = lipgloss.NewStyle().Foreground(colorKept)
	partialDayStyle = lipgloss.NewStyle().Foreground(colorEmber)
	idleDayStyle    = lipgloss.NewStyle().Foreground(colorSmoke)
)

// Achievement rows.
var (
	unlockedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorKept)
	lockedStyle   = lipgloss.NewStyle().Foreground(colorText)
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	subtitleStyle  = lipgloss.NewStyle().Foreground(colorAsh)
	accentStyle    = lipgloss.NewStyle().Foreground(colorFlame)
	successStyle   = lipgloss.NewStyle().Foreground(colorKept)
	warningStyle   = lipgloss.NewStyle().Foreground(colorSunken)
	errorStyle     = lipgloss.NewStyle().Foreground(colorAlarm)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorAsh)
	highlightStyle = lipgloss.NewStyle().Foreground(colorSpark)

	headerStyle    = lipgloss.NewStyle().Padding(0, 1)
	footerStyle    = mutedStyle.Padding(0, 1)
	statusBarStyle = mutedStyle

	selectedItemStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFlame)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorText)
)
